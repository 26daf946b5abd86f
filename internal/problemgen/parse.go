package problemgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// ParseResult is one backend response after decoding and schema checks.
// Err is set when the response is unusable; Candidate is then empty.
type ParseResult struct {
	Candidate question.Candidate
	Raw       json.RawMessage
	Err       error
}

// OK reports whether a candidate was decoded.
func (p ParseResult) OK() bool { return p.Err == nil }

var errEmptyResponse = errors.New("empty response")

// Parse decodes raw into a candidate and validates it against the schema
// of its declared type. A missing type defaults to requested; type aliases
// are rewritten to their canonical tag.
func Parse(raw json.RawMessage, requested questiontype.Tag) ParseResult {
	body := stripCodeFence(raw)
	if len(body) == 0 {
		return ParseResult{Raw: raw, Err: errEmptyResponse}
	}

	var c question.Candidate
	if err := json.Unmarshal(body, &c); err != nil {
		return ParseResult{Raw: raw, Err: fmt.Errorf("decode candidate: %w", err)}
	}

	tag := requested
	if c.Type == "" {
		c.Type = string(requested)
	} else if t, ok := questiontype.ParseTag(c.Type); ok {
		c.Type = string(t)
		tag = t
	}

	canonical, err := json.Marshal(c)
	if err != nil {
		return ParseResult{Raw: raw, Err: fmt.Errorf("encode candidate: %w", err)}
	}
	if err := llm.ValidateJSON(SchemaFor(tag), canonical); err != nil {
		return ParseResult{Raw: raw, Err: err}
	}
	return ParseResult{Candidate: c, Raw: raw}
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
