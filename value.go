package fastjson

import (
	"fmt"
	"strconv"
)

// Type is the type of a parsed JSON value, extending mcvoid-json's Type
// enum with Big for the arbitrary-precision-decimal fallback spec.md's
// big path requires.
type Type int

// Possible JSON value types.
const (
	Null Type = iota
	Number
	Integer
	Big
	String
	Boolean
	Array
	Object
	numTypes
	typeUnknown Type = -1
)

var typeStrings = [numTypes]string{
	"<null>",
	"<number>",
	"<integer>",
	"<bigdecimal>",
	"<string>",
	"<boolean>",
	"<array>",
	"<object>",
}

// String returns a human-readable name for t.
func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "<unknown>"
	}
	return typeStrings[t]
}

// pair is an ordered object member. Object members keep insertion order
// (a strictly stronger guarantee than spec.md §8 requires, kept because
// the teacher's []pair representation gives it for free).
type pair struct {
	key string
	val *Value
}

// Value is a parsed JSON value, the tree-delegate's output node.
type Value struct {
	jsonType Type

	numberValue  float64
	integerValue int64
	bigValue     string
	stringValue  string
	booleanValue bool
	arrayValue   []*Value
	objectValue  []pair

	// className carries the value of options.CreateID's target key when
	// present, for a caller-supplied ObjectFactory to act on (spec.md's
	// "object construction policy" out-of-scope hook, see DESIGN.md).
	className string

	// custom holds the container Options.ObjectFactory/ArrayFactory built
	// for this node, when one of those hooks is set. nil otherwise.
	custom interface{}
}

// Custom returns the caller-supplied container Options.ObjectFactory or
// ArrayFactory built for this node (via a type assertion to the concrete
// type the caller's factory returns), or nil if neither hook was set
// while this value was parsed.
func (v *Value) Custom() interface{} {
	if v == nil {
		return nil
	}
	return v.custom
}

// Type returns the value's Type.
func (v *Value) Type() Type {
	if v == nil {
		return typeUnknown
	}
	if v.jsonType >= 0 && v.jsonType < numTypes {
		return v.jsonType
	}
	return typeUnknown
}

// ClassName returns the create-ID tag recorded on this value, or "" if
// none was recorded.
func (v *Value) ClassName() string {
	if v == nil {
		return ""
	}
	return v.className
}

// AsNull reports whether v is JSON null.
func (v *Value) AsNull() (struct{}, error) {
	if v.Type() == Null {
		return struct{}{}, nil
	}
	return struct{}{}, fmt.Errorf("%w: value not null: %v", ErrType, v)
}

// AsNumber extracts a float64, accepting either Number or Integer.
func (v *Value) AsNumber() (float64, error) {
	switch v.Type() {
	case Integer:
		return float64(v.integerValue), nil
	case Number:
		return v.numberValue, nil
	}
	return 0, fmt.Errorf("%w: value not a valid number: %v", ErrType, v)
}

// AsInteger extracts an int64. Will not convert a fractional Number.
func (v *Value) AsInteger() (int64, error) {
	if v.Type() == Integer {
		return v.integerValue, nil
	}
	return 0, fmt.Errorf("%w: value not a valid integer: %v", ErrType, v)
}

// AsBigDecimal extracts the verbatim decimal text of an overflowed
// numeric literal.
func (v *Value) AsBigDecimal() (string, error) {
	if v.Type() == Big {
		return v.bigValue, nil
	}
	return "", fmt.Errorf("%w: value not a valid bigdecimal: %v", ErrType, v)
}

// AsString extracts a string value.
func (v *Value) AsString() (string, error) {
	if v.Type() == String {
		return v.stringValue, nil
	}
	return "", fmt.Errorf("%w: value not a valid string: %v", ErrType, v)
}

// AsBoolean extracts a boolean value.
func (v *Value) AsBoolean() (bool, error) {
	if v.Type() == Boolean {
		return v.booleanValue, nil
	}
	return false, fmt.Errorf("%w: value not a valid boolean: %v", ErrType, v)
}

// AsArray extracts the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v.Type() == Array {
		return v.arrayValue, nil
	}
	return nil, fmt.Errorf("%w: value not a valid array: %v", ErrType, v)
}

// AsObject extracts the object as a map, losing key order.
func (v *Value) AsObject() (map[string]*Value, error) {
	if v.Type() == Object {
		m := make(map[string]*Value, len(v.objectValue))
		for _, p := range v.objectValue {
			m[p.key] = p.val
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: value not a valid object: %v", ErrType, v)
}

// Keys returns the object's keys in original insertion order.
func (v *Value) Keys() []string {
	if v.Type() != Object {
		return nil
	}
	keys := make([]string, len(v.objectValue))
	for i, p := range v.objectValue {
		keys[i] = p.key
	}
	return keys
}

// String renders a debug representation. NOT valid JSON — use Marshal for
// that.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.jsonType {
	case Null:
		return "null"
	case Integer:
		return strconv.FormatInt(v.integerValue, 10)
	case Number:
		return strconv.FormatFloat(v.numberValue, 'g', -1, 64)
	case Big:
		return v.bigValue
	case String:
		return strconv.Quote(v.stringValue)
	case Boolean:
		if v.booleanValue {
			return "true"
		}
		return "false"
	case Array:
		s := "["
		for i, val := range v.arrayValue {
			if i > 0 {
				s += ", "
			}
			s += val.String()
		}
		return s + "]"
	case Object:
		s := "{"
		for i, p := range v.objectValue {
			if i > 0 {
				s += ", "
			}
			s += strconv.Quote(p.key) + ": " + p.val.String()
		}
		return s + "}"
	}
	return "<unknown>"
}

// Index is a fluent array accessor returning an empty Value (never nil)
// for an out-of-range or non-array access.
func (v *Value) Index(i int) *Value {
	if v.Type() != Array || i < 0 || i >= len(v.arrayValue) {
		return &Value{}
	}
	return v.arrayValue[i]
}

// Key is a fluent object accessor returning an empty Value (never nil)
// when the key is absent or v is not an object.
func (v *Value) Key(k string) *Value {
	if v.Type() != Object {
		return &Value{}
	}
	for _, p := range v.objectValue {
		if p.key == k {
			return p.val
		}
	}
	return &Value{}
}
