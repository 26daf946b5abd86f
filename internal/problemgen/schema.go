package problemgen

import (
	"maps"

	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/questiontype"
)

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

func minItems(n int, desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"minItems":    n,
		"description": desc,
	}
}

var pairList = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"left":  map[string]any{"type": "string"},
			"right": map[string]any{"type": "string"},
		},
		"required":             []any{"left", "right"},
		"additionalProperties": false,
	},
}

// baseProperties are shared by every question type. correct_answer is
// optional and untyped: its shape depends on the type and a missing answer
// is repaired rather than rejected.
func baseProperties(tag questiontype.Tag) map[string]any {
	return map[string]any{
		"id": map[string]any{"type": "string"},
		"type": map[string]any{
			"type":        "string",
			"enum":        []any{string(tag)},
			"description": "The question type",
		},
		"question": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "The question prompt shown to the learner, in plain text",
		},
		"topic": map[string]any{
			"type":        "string",
			"description": "Short topic label naming the skill practiced",
		},
		"correct_answer": map[string]any{
			"description": "The correct answer; its shape depends on the question type",
		},
		"options":     stringList,
		"items":       stringList,
		"categories":  stringList,
		"pairs":       pairList,
		"visual":      map[string]any{"type": "string", "description": "Text description of an image or scene"},
		"hint":        map[string]any{"type": "string", "description": "A short scaffolding hint"},
		"explanation": map[string]any{"type": "string", "description": "Worked solution, age-appropriate"},
	}
}

// typeShape lists the per-type overrides: extra required fields and
// tighter property definitions.
type typeShape struct {
	required   []string
	properties map[string]any
}

var typeShapes = map[questiontype.Tag]typeShape{
	questiontype.MultipleChoice: {
		required:   []string{"options"},
		properties: map[string]any{"options": minItems(2, "Answer options; correct_answer is the 0-based index of the right one")},
	},
	questiontype.VisualIdentification: {
		required: []string{"options", "visual"},
		properties: map[string]any{
			"options": minItems(2, "Answer options; correct_answer is the 0-based index of the right one"),
		},
	},
	questiontype.Ordering: {
		required:   []string{"items"},
		properties: map[string]any{"items": minItems(2, "Items to put in order")},
	},
	questiontype.Classification: {
		required: []string{"items", "categories"},
		properties: map[string]any{
			"items":      minItems(1, "Items to sort"),
			"categories": minItems(2, "Categories to sort items into"),
		},
	},
	questiontype.Matching: {
		required: []string{"pairs"},
	},
	questiontype.DiagramLabeling: {
		required: []string{"pairs", "visual"},
	},
}

var schemas = buildSchemas()

func buildSchemas() map[questiontype.Tag]*llm.Schema {
	out := make(map[questiontype.Tag]*llm.Schema, len(questiontype.All()))
	for _, tag := range questiontype.All() {
		props := baseProperties(tag)
		required := []any{"type", "question"}
		if shape, ok := typeShapes[tag]; ok {
			maps.Copy(props, shape.properties)
			for _, r := range shape.required {
				required = append(required, r)
			}
		}
		out[tag] = &llm.Schema{
			Name:        "question-" + string(tag),
			Description: "A single " + tag.DisplayName() + " practice question",
			Definition: map[string]any{
				"type":                 "object",
				"properties":           props,
				"required":             required,
				"additionalProperties": false,
			},
		}
	}
	return out
}

// SchemaFor returns the response schema for tag, or nil for unknown tags.
func SchemaFor(tag questiontype.Tag) *llm.Schema {
	return schemas[tag]
}
