package fastjson

import (
	"fmt"
	"strconv"

	"github.com/mcvoid/fastjson/internal/buffer"
	"github.com/mcvoid/fastjson/internal/escape"
	"github.com/mcvoid/fastjson/internal/numeric"
)

// Encodable lets a caller's own type stream itself through a Serializer
// instead of going through the *Value tree, the hook ModeCustom
// dispatches to — the Go shape of original_source/ext/oj's dump_custom.c
// per-class callback table.
type Encodable interface {
	EncodeFastJSON(s *Serializer) error
}

type serializerFrame struct {
	isObject   bool
	count      int  // members/elements already written, for comma placement
	afterKey   bool // true for the single value immediately following WriteKey
}

// Serializer is the low-level event sink Marshal/MarshalValue drive, and
// that an Encodable's EncodeFastJSON method may also drive directly.
// Mirrors spec.md §4.4's output buffer plus §4.2's escape scanner, bound
// together with the dialect/indent policy from Options.
type Serializer struct {
	buf     buffer.Buffer
	esc     escape.Scanner
	scratch []byte
	opts    Options
	stack   []serializerFrame
	cycles  *IdentityMap
}

// NewSerializer builds a Serializer for opts. The zero-value
// buffer.Buffer is ready to use, so no further setup is needed before
// writing.
func NewSerializer(opts Options) *Serializer {
	s := &Serializer{esc: escape.Scanner{Mode: escape.Mode(opts.EscapeMode)}, opts: opts}
	if opts.DetectCycles {
		s.cycles = NewIdentityMap()
	}
	return s
}

// Bytes returns the serialized output accumulated so far. The returned
// slice aliases the Serializer's internal buffer.
func (s *Serializer) Bytes() []byte {
	return s.buf.Bytes()
}

func (s *Serializer) top() *serializerFrame {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

// beforeValue writes the separator (comma, optional indent) a value or
// key needs before it, based on the enclosing container's element count.
func (s *Serializer) beforeValue() {
	f := s.top()
	if f == nil {
		return
	}
	if f.afterKey {
		// The value immediately following WriteKey sits right after its
		// colon on the same line — no comma, no indent.
		f.afterKey = false
		return
	}
	if f.count > 0 {
		s.buf.WriteByte(',')
	}
	f.count++
	s.newlineIndent(len(s.stack))
}

func (s *Serializer) newlineIndent(depth int) {
	if s.opts.Indent <= 0 && s.opts.IndentString == "" {
		return
	}
	s.buf.WriteByte('\n')
	unit := s.opts.IndentString
	if unit == "" {
		for i := 0; i < s.opts.Indent; i++ {
			unit += " "
		}
	}
	for i := 0; i < depth; i++ {
		s.buf.WriteString(unit)
	}
}

// BeginObject opens a JSON object.
func (s *Serializer) BeginObject() {
	s.beforeValue()
	s.buf.WriteByte('{')
	s.stack = append(s.stack, serializerFrame{isObject: true})
}

// EndObject closes the innermost open object.
func (s *Serializer) EndObject() {
	f := *s.top()
	s.stack = s.stack[:len(s.stack)-1]
	if f.count > 0 {
		s.newlineIndent(len(s.stack))
	}
	s.buf.WriteByte('}')
}

// BeginArray opens a JSON array.
func (s *Serializer) BeginArray() {
	s.beforeValue()
	s.buf.WriteByte('[')
	s.stack = append(s.stack, serializerFrame{isObject: false})
}

// EndArray closes the innermost open array.
func (s *Serializer) EndArray() {
	f := *s.top()
	s.stack = s.stack[:len(s.stack)-1]
	if f.count > 0 {
		s.newlineIndent(len(s.stack))
	}
	s.buf.WriteByte(']')
}

// WriteKey writes an object member key, including its trailing colon.
// The key occupies the comma/indent position a list item would; the
// value written immediately after it (via any Write* call) is exempted
// from that treatment by beforeValue's afterKey check.
func (s *Serializer) WriteKey(key string) {
	s.beforeValue()
	s.writeQuoted(key)
	s.buf.WriteByte(':')
	if s.opts.Indent > 0 || s.opts.IndentString != "" {
		s.buf.WriteByte(' ')
	}
	s.top().afterKey = true
}

func (s *Serializer) writeQuoted(v string) {
	vb := []byte(v)
	s.buf.Reserve(s.esc.EscapedLen(vb) + 2)
	s.buf.WriteByte('"')
	s.scratch = s.esc.AppendEscaped(s.scratch[:0], vb)
	s.buf.Write(s.scratch)
	s.buf.WriteByte('"')
}

// WriteString writes a JSON string value, escaped per Options.EscapeMode.
func (s *Serializer) WriteString(v string) {
	s.beforeValue()
	s.writeQuoted(v)
}

// WriteNull writes the null literal.
func (s *Serializer) WriteNull() {
	s.beforeValue()
	s.buf.WriteString("null")
}

// WriteBool writes a boolean literal.
func (s *Serializer) WriteBool(v bool) {
	s.beforeValue()
	if v {
		s.buf.WriteString("true")
	} else {
		s.buf.WriteString("false")
	}
}

// WriteInt writes an integer literal using the two-digit peeling
// formatter from internal/numeric.
func (s *Serializer) WriteInt(v int64) {
	s.beforeValue()
	if s.opts.IntegerAsStringRange != 0 && (v >= s.opts.IntegerAsStringRange || v <= -s.opts.IntegerAsStringRange) {
		s.writeQuoted(strconv.FormatInt(v, 10))
		return
	}
	s.buf.Write(numeric.FormatInt(v))
}

// WriteBigDecimal writes a verbatim big-decimal literal, unquoted.
// WriteString writes the same text as a quoted JSON string instead.
func (s *Serializer) WriteBigDecimal(text string) {
	s.beforeValue()
	s.buf.WriteString(text)
}

// WriteFloat writes a floating point literal, honoring Options.NaN for
// non-finite values, Options.FloatPrecision for finite ones, and
// Options.Mode's Rails dialect (always an explicit decimal point).
func (s *Serializer) WriteFloat(v float64) error {
	if numeric.IsNonFinite(v) {
		text, ok := numeric.FormatNonFinite(v, s.opts.NaN)
		if !ok {
			return fmt.Errorf("%w: non-finite float with NaN policy Raise", ErrEncodingPolicy)
		}
		s.beforeValue()
		s.buf.WriteString(text)
		return nil
	}
	s.beforeValue()
	var out []byte
	if s.opts.FloatPrecision > 0 {
		out = numeric.FormatFloatPrecision(v, s.opts.FloatPrecision)
	} else {
		out = numeric.FormatFloat(v)
	}
	if s.opts.Mode == ModeRails {
		hasDot := false
		for _, c := range out {
			if c == '.' || c == 'e' || c == 'E' {
				hasDot = true
				break
			}
		}
		if !hasDot {
			out = append(out, '.', '0')
		}
	}
	s.buf.Write(out)
	return nil
}

// WriteValue serializes a parsed *Value tree.
func (s *Serializer) WriteValue(v *Value) error {
	switch v.Type() {
	case Null, typeUnknown:
		s.WriteNull()
	case Boolean:
		s.WriteBool(v.booleanValue)
	case Integer:
		s.WriteInt(v.integerValue)
	case Number:
		return s.WriteFloat(v.numberValue)
	case Big:
		s.WriteBigDecimal(v.bigValue)
	case String:
		s.WriteString(v.stringValue)
	case Array:
		s.BeginArray()
		for _, elem := range v.arrayValue {
			if err := s.WriteValue(elem); err != nil {
				return err
			}
		}
		s.EndArray()
	case Object:
		s.BeginObject()
		for _, p := range v.objectValue {
			s.WriteKey(p.key)
			if err := s.WriteValue(p.val); err != nil {
				return err
			}
		}
		s.EndObject()
	}
	return nil
}

// MarshalValue serializes a parsed *Value tree to JSON text under opts.
func MarshalValue(v *Value, opts Options) ([]byte, error) {
	s := NewSerializer(opts)
	if err := s.WriteValue(v); err != nil {
		return nil, err
	}
	out := make([]byte, s.buf.Len())
	copy(out, s.Bytes())
	return out, nil
}

// Marshal serializes an arbitrary Go value to JSON text under opts. A
// *Value goes through MarshalValue; an Encodable drives the Serializer
// itself; anything else goes through the generic reflective encoder in
// reflect_encode.go. ModeStrict rejects anything that isn't a JSON
// primitive, a *Value, or Encodable; ModeCompat and ModeCustom encode Go
// containers but reject a type no encoder recognizes; ModeNull (like
// ModeObject and ModeRails) renders such a type as null instead of
// erroring.
func Marshal(x interface{}, opts Options) ([]byte, error) {
	s := NewSerializer(opts)
	if err := s.encodeAny(x); err != nil {
		return nil, err
	}
	out := make([]byte, s.buf.Len())
	copy(out, s.Bytes())
	return out, nil
}
