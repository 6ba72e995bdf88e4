package fastjson

import (
	"math"
	"strings"
	"testing"
	"unsafe"
)

// eventRecorder captures the event trace a Delegate receives, in the
// terse verb form spec.md §8's scenario table uses, so a scenario's
// expected trace can be compared directly against a string join.
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) add(s string) bool {
	r.events = append(r.events, s)
	return false
}

func (r *eventRecorder) OpenObject() bool   { return r.add("open_object") }
func (r *eventRecorder) CloseObject() bool  { return r.add("close_object") }
func (r *eventRecorder) OpenArray() bool    { return r.add("open_array") }
func (r *eventRecorder) CloseArray() bool   { return r.add("close_array") }
func (r *eventRecorder) Null() bool         { return r.add("add_null") }
func (r *eventRecorder) Bool(v bool) bool {
	if v {
		return r.add("add_true")
	}
	return r.add("add_false")
}
func (r *eventRecorder) Int(v int64) bool     { return r.add("add_int") }
func (r *eventRecorder) Float(v float64) bool { return r.add("add_float") }
func (r *eventRecorder) Big(v string) bool    { return r.add("add_big") }
func (r *eventRecorder) Str(v []byte) bool    { return r.add("add_str") }
func (r *eventRecorder) Key(v []byte) bool    { return r.add("push_key") }

func TestScenarioEmptyArray(t *testing.T) {
	r := &eventRecorder{}
	if err := ParseInto([]byte(`[]`), r, DefaultOptions()); err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := "open_array; close_array"
	if got := strings.Join(r.events, "; "); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestScenarioObjectWithMixedMembers(t *testing.T) {
	r := &eventRecorder{}
	if err := ParseInto([]byte(`{"a":1,"b":[true,null]}`), r, DefaultOptions()); err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := "open_object; push_key; add_int; push_key; open_array; add_true; add_null; close_array; close_object"
	if got := strings.Join(r.events, "; "); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestScenarioMultiByteUnicodeEscape(t *testing.T) {
	// \x5c is a backslash: the input holds the six-byte escape for é.
	v, err := Parse([]byte("\"a\x5cu00e9b\""), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	s, _ := v.AsString()
	if s != "aéb" {
		t.Errorf("expected aéb got %q", s)
	}
	if []byte(s)[1] != 0xC3 || []byte(s)[2] != 0xA9 {
		t.Errorf("expected two-byte UTF-8 encoding of é, got % x", []byte(s))
	}
}

func TestScenarioNegativeFloatWithExponent(t *testing.T) {
	v, err := Parse([]byte(`-0.5e2`), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	f, _ := v.AsNumber()
	if f != -50.0 {
		t.Errorf("expected -50.0 got %v", f)
	}
}

func TestScenarioTwentyDigitIntegerGoesBig(t *testing.T) {
	v, err := Parse([]byte(`12345678901234567890`), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if v.Type() != Big {
		t.Fatalf("expected Big got %v", v.Type())
	}
	text, _ := v.AsBigDecimal()
	if text != "12345678901234567890" {
		t.Errorf("expected verbatim digits got %q", text)
	}
}

func TestScenarioMissingCommaStopsAfterFirstElement(t *testing.T) {
	r := &eventRecorder{}
	err := ParseInto([]byte(`[1 2]`), r, DefaultOptions())
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	want := "open_array; add_int"
	if got := strings.Join(r.events, "; "); got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestScenarioSurrogatePairEmoji(t *testing.T) {
	// \x5c is a backslash: the input holds a high/low surrogate escape pair.
	v, err := Parse([]byte("\"\x5cuD83D\x5cuDE00\""), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	s, _ := v.AsString()
	want := []byte{0xF0, 0x9F, 0x98, 0x80}
	if string(want) != s {
		t.Errorf("expected %x got % x", want, []byte(s))
	}
}

func TestScenarioXSSSafeSerialization(t *testing.T) {
	v := &Value{jsonType: Object, objectValue: []pair{
		{"k", &Value{jsonType: String, stringValue: "</x>"}},
	}}
	opts := DefaultOptions()
	opts.EscapeMode = EscapeXSSSafe
	opts.Indent = 0
	out, err := MarshalValue(v, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := `{"k": "</x>"}`
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

func TestKeyInterningSharesHandle(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheKeys = true
	v, err := Parse([]byte(`[{"name": 1}, {"name": 2}]`), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	k1 := v.Index(0).Keys()[0]
	k2 := v.Index(1).Keys()[0]
	if len(k1) == 0 || k1 != k2 {
		t.Fatalf("expected both keys to read back equal, got %q and %q", k1, k2)
	}
	if unsafe.StringData(k1) != unsafe.StringData(k2) {
		t.Errorf("expected both keys to share one interned string, got distinct backing arrays")
	}
}

func TestIntegerClassificationBoundaries(t *testing.T) {
	for _, test := range []struct {
		input    string
		wantType Type
	}{
		{"9007199254740992", Integer},  // 2^53
		{"-9007199254740992", Integer}, // -2^53
		{"123456789012345678901234567890123456789012345678901234567890", Big},
	} {
		v, err := Parse([]byte(test.input), DefaultOptions())
		if err != nil {
			t.Fatalf("%s: expected no error got %v", test.input, err)
		}
		if v.Type() != test.wantType {
			t.Errorf("%s: expected %v got %v", test.input, test.wantType, v.Type())
		}
	}
}

func TestFloatOverflowToInfinityUnderHugePolicy(t *testing.T) {
	opts := DefaultOptions()
	v, err := Parse([]byte(`1.0e309`), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	f, _ := v.AsNumber()
	if !math.IsInf(f, 1) {
		t.Errorf("expected +Inf got %v", f)
	}

	opts.NaN = NaNHuge
	out, err := MarshalValue(v, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if len(out) == 0 {
		t.Errorf("expected a non-empty huge-sentinel rendering")
	}
}

func TestDepthLimitBoundary(t *testing.T) {
	exact := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	if _, err := Parse([]byte(exact), DefaultOptions()); err != nil {
		t.Errorf("expected MaxDepth opens to parse, got %v", err)
	}

	tooDeep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	if _, err := Parse([]byte(tooDeep), DefaultOptions()); err == nil {
		t.Errorf("expected MaxDepth+1 opens to fail")
	}
}

func TestRoundTripContainersPreserveKeySets(t *testing.T) {
	input := `{"a": [1, 2, {"b": true, "c": [null, "x"]}], "d": -3.25}`
	v, err := Parse([]byte(input), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	out, err := MarshalValue(v, DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	v2, err := Parse(out, DefaultOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !Equal(v, v2) {
		t.Errorf("expected structural equality between %v and %v", v, v2)
	}
}

func TestSerializeIdempotentUnderFixedOptions(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "b": [true, "x", null]}`), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	opts := DefaultOptions()
	out1, err := MarshalValue(v, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	v2, err := Parse(out1, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	out2, err := MarshalValue(v2, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(out1) != string(out2) {
		t.Errorf("expected idempotent serialization, got %q then %q", out1, out2)
	}
}
