package scoring

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind tags a submitted value. Entry data is decoded from JSON, so only
// strings, numbers, booleans and null can appear.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a tagged union over the types a submitted answer can take.
// Keeping the tag explicit keeps numeric/string comparison rules out of
// reflection and interface juggling.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

func Null() Value            { return Value{Kind: KindNull} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Boolean(b bool) Value   { return Value{Kind: KindBool, Bool: b} }

// FromJSON converts a value decoded by encoding/json into a Value.
// Unsupported shapes (arrays, objects) come back as their JSON text so
// validation can reject them with a readable reason.
func FromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case float64:
		return Number(t)
	case bool:
		return Boolean(t)
	case json.Number:
		if n, err := t.Float64(); err == nil {
			return Number(n)
		}
		return String(t.String())
	default:
		b, _ := json.Marshal(v)
		return String(string(b))
	}
}

// DataFromJSON converts a decoded JSON object (field id -> raw value)
// into a typed data map.
func DataFromJSON(raw map[string]any) map[string]Value {
	data := make(map[string]Value, len(raw))
	for k, v := range raw {
		data[k] = FromJSON(v)
	}
	return data
}

// IsEmpty reports whether the value counts as missing for a required
// field: null, or a string that is blank after trimming.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.Str) == ""
	default:
		return false
	}
}

// Text renders the value for textual comparison and display.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// AsNumber tries to interpret the value as a number.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// AsBool tries to interpret the value as a boolean. Accepted string
// forms: true/false/1/0 (case-insensitive); numbers must be exactly 0 or 1.
func (v Value) AsBool() (bool, bool) {
	switch v.Kind {
	case KindBool:
		return v.Bool, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	case KindNumber:
		if v.Num == 1 {
			return true, true
		}
		if v.Num == 0 {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// Raw returns the plain Go value, for echoing answers back in responses.
func (v Value) Raw() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}
