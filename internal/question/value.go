package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind describes which representation a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindText
	KindBool
	KindList
	KindPairs
)

// Value is a type-dependent answer: an option index or number, free text,
// a boolean, an ordered list, or a set of key/value pairs (matching,
// classification, diagram labels). The zero Value is empty.
type Value struct {
	kind  Kind
	num   float64
	text  string
	b     bool
	list  []string
	pairs map[string]string
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Int(i int) Value        { return Value{kind: KindNumber, num: float64(i)} }
func Text(s string) Value    { return Value{kind: KindText, text: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...)}
}

func Pairs(m map[string]string) Value {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindPairs, pairs: cp}
}

// Kind returns the representation held by v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v carries no answer at all.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindNone:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	case KindList:
		return len(v.list) == 0
	case KindPairs:
		return len(v.pairs) == 0
	default:
		return false
	}
}

// Number returns the numeric value. Text that parses as a number is accepted.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		return f, err == nil
	}
	return 0, false
}

// Index returns v as a whole-number option index.
func (v Value) Index() (int, bool) {
	f, ok := v.Number()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean value. Text "true"/"false" (any case) is accepted.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindText:
		switch strings.ToLower(strings.TrimSpace(v.text)) {
		case "true", "t", "yes":
			return true, true
		case "false", "f", "no":
			return false, true
		}
	}
	return false, false
}

// List returns a copy of the ordered items.
func (v Value) List() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

// Pairs returns a copy of the key/value pairs.
func (v Value) Pairs() (map[string]string, bool) {
	if v.kind != KindPairs {
		return nil, false
	}
	cp := make(map[string]string, len(v.pairs))
	for k, val := range v.pairs {
		cp[k] = val
	}
	return cp, true
}

// String renders v for display. Pairs are sorted by key.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return strings.Join(v.list, ", ")
	case KindPairs:
		keys := make([]string, 0, len(v.pairs))
		for k := range v.pairs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " -> " + v.pairs[k]
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindPairs:
		if len(v.pairs) != len(o.pairs) {
			return false
		}
		for k, val := range v.pairs {
			if ov, ok := o.pairs[k]; !ok || ov != val {
				return false
			}
		}
		return true
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindPairs:
		return json.Marshal(v.pairs)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// fromAny converts a decoded JSON value. Arrays of {left,right} objects are
// read as pairs; other arrays are stringified element-wise.
func fromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return Number(x), nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case map[string]any:
		m := make(map[string]string, len(x))
		for k, val := range x {
			m[k] = scalarString(val)
		}
		return Pairs(m), nil
	case []any:
		if m, ok := pairObjects(x); ok {
			return Pairs(m), nil
		}
		items := make([]string, len(x))
		for i, el := range x {
			items[i] = scalarString(el)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported answer value of type %T", raw)
	}
}

func pairObjects(arr []any) (map[string]string, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	m := make(map[string]string, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, false
		}
		left, lok := obj["left"]
		right, rok := obj["right"]
		if !lok || !rok {
			return nil, false
		}
		m[scalarString(left)] = scalarString(right)
	}
	return m, true
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// ParseValue interprets user input: valid JSON is decoded as such, anything
// else is taken as text.
func ParseValue(s string) Value {
	var v Value
	if err := json.Unmarshal([]byte(s), &v); err == nil && v.kind != KindNone {
		return v
	}
	return Text(s)
}
