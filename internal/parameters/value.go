package parameters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Kind is the runtime variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a parameter value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value counts as unset: null or "".
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// AsString returns the string payload; ok is false for other kinds.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number payload; ok is false for other kinds.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsArray returns the array items; ok is false for other kinds.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object fields; ok is false for other kinds.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, fv := range v.obj {
			ov, ok := o.obj[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// FromInterface converts a decoded JSON/YAML tree or a plain Go value.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return Number(n), nil
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = String(s)
		}
		return Array(items...), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			converted, err := FromInterface(item)
			if err != nil {
				return Null(), fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = converted
		}
		return Array(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			converted, err := FromInterface(item)
			if err != nil {
				return Null(), fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = converted
		}
		return Object(fields), nil
	default:
		return Null(), fmt.Errorf("unsupported value type %T", raw)
	}
}

// Interface converts the value back into plain Go types.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	converted, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = converted
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	converted, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = converted
	return nil
}

// String renders the value for logs.
func (v Value) String() string {
	if v.kind == KindString {
		return v.str
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

// Format renders the value for display according to the declared type.
func (v Value) Format(t Type) string {
	if v.kind == KindNull {
		return ""
	}
	if t.IsNumeric() {
		if n, ok := v.toNumber(); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return v.String()
	}
	switch t {
	case TypeBoolean:
		return strconv.FormatBool(v.truthy())
	case TypeArray:
		if v.kind != KindArray {
			return v.String()
		}
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case TypeObject:
		data, err := json.Marshal(v)
		if err != nil {
			return v.String()
		}
		return string(data)
	case TypeString, TypeCoordinate, TypeTool, TypeMaterial:
		return v.String()
	default:
		return v.String()
	}
}

// ParseValue converts text input into a Value of the declared type.
// Numeric types read the leading number ("12.5 mm" is 12.5) and fall back to
// 0 when there is none. Unparseable objects become {}.
func ParseValue(text string, t Type) Value {
	if t.IsNumeric() {
		n, _ := ParseNumber(text)
		return Number(n)
	}
	switch t {
	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1", "yes", "是":
			return Bool(true)
		}
		return Bool(false)
	case TypeArray:
		if strings.TrimSpace(text) == "" {
			return Array()
		}
		parts := strings.Split(text, ",")
		items := make([]Value, len(parts))
		for i, part := range parts {
			items[i] = String(strings.TrimSpace(part))
		}
		return Array(items...)
	case TypeObject:
		if strings.TrimSpace(text) == "" {
			return Object(nil)
		}
		var parsed Value
		if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed.kind != KindObject {
			return Object(nil)
		}
		return parsed
	case TypeString, TypeCoordinate, TypeTool, TypeMaterial:
		return String(text)
	default:
		return String(text)
	}
}

// ParseNumber reads the decimal number text starts with, after leading
// whitespace, and ignores the rest: "5mm" is 5, "-.5e2deg" is -50.
// ok is false when text does not start with a finite number.
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := leadingNumberLen(s)
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingNumberLen returns the length of the longest prefix of s of the form
// [+-] digits [. digits] [(e|E) [+-] digits], with at least one digit before
// the exponent.
func leadingNumberLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := digitsAt(s, i)
	i += intDigits
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = digitsAt(s, i+1)
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if d := digitsAt(s, j); d > 0 {
			i = j + d
		}
	}
	return i
}

func digitsAt(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		n++
	}
	return n
}

func (v Value) truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindArray, KindObject:
		return true
	}
	return false
}

func (v Value) toNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return n, err == nil
	}
	return 0, false
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
