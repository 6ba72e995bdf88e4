package fastjson

import (
	"strings"
	"testing"
)

func TestSerializerWriteValueCompact(t *testing.T) {
	v := &Value{jsonType: Object, objectValue: []pair{
		{"a", &Value{jsonType: Integer, integerValue: 1}},
		{"b", &Value{jsonType: Array, arrayValue: []*Value{
			{jsonType: Boolean, booleanValue: true},
			{},
		}}},
	}}
	out, err := MarshalValue(v, DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := `{"a":1,"b":[true,null]}`
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

func TestSerializerIndent(t *testing.T) {
	v := &Value{jsonType: Array, arrayValue: []*Value{
		{jsonType: Integer, integerValue: 1},
		{jsonType: Integer, integerValue: 2},
	}}
	opts := DefaultOptions()
	opts.Indent = 2
	out, err := MarshalValue(v, opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := "[\n  1,\n  2\n]"
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	for _, input := range []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-7`,
		`3.5`,
		`"hello world"`,
		`[]`,
		`{}`,
		`[1, 2, [3, 4], {"a": true}]`,
		`{"a": 1, "b": {"c": [1, 2, 3]}}`,
	} {
		t.Run(input, func(t *testing.T) {
			v, err := Parse([]byte(input), DefaultOptions())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			out, err := MarshalValue(v, DefaultOptions())
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			v2, err := Parse(out, DefaultOptions())
			if err != nil {
				t.Fatalf("reparse %q: %v", out, err)
			}
			if !Equal(v, v2) {
				t.Errorf("round trip mismatch: %v vs %v", v, v2)
			}
		})
	}
}

func TestSerializerXSSSafeEscaping(t *testing.T) {
	opts := DefaultOptions()
	opts.EscapeMode = EscapeXSSSafe
	out, err := Marshal("</script><script>alert(1)</script>", opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if strings.Contains(string(out), "</script>") {
		t.Errorf("expected </script> to be escaped, got %s", out)
	}
}

func TestSerializerNaNPolicyRaise(t *testing.T) {
	opts := DefaultOptions()
	opts.NaN = NaNRaise
	s := NewSerializer(opts)
	err := s.WriteFloat(nan())
	if err == nil {
		t.Fatalf("expected an error for NaN under NaNRaise")
	}
}

func TestSerializerNaNPolicyWord(t *testing.T) {
	opts := DefaultOptions()
	opts.NaN = NaNWord
	s := NewSerializer(opts)
	if err := s.WriteFloat(nan()); err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(s.Bytes()) != "NaN" {
		t.Errorf("expected NaN literal got %s", s.Bytes())
	}
}

func TestSerializerNaNPolicyNull(t *testing.T) {
	opts := DefaultOptions()
	opts.NaN = NaNNull
	s := NewSerializer(opts)
	if err := s.WriteFloat(nan()); err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(s.Bytes()) != "null" {
		t.Errorf("expected null got %s", s.Bytes())
	}
}

func TestSerializerRailsModeAlwaysHasDecimalPoint(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeRails
	out, err := Marshal(float64(5), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(out) != "5.0" {
		t.Errorf("expected 5.0 got %s", out)
	}
}

func TestSerializerIntegerAsStringRange(t *testing.T) {
	opts := DefaultOptions()
	opts.IntegerAsStringRange = 1000
	out, err := Marshal(int64(123456789), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(out) != `"123456789"` {
		t.Errorf("expected quoted string got %s", out)
	}

	out, err = Marshal(int64(5), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(out) != "5" {
		t.Errorf("expected bare integer got %s", out)
	}
}

func TestMarshalReflectiveStruct(t *testing.T) {
	type inner struct {
		C bool `json:"c"`
	}
	type outer struct {
		A int    `json:"a"`
		B string `json:"b,omitempty"`
		D inner  `json:"d"`
		E string `json:"-"`
	}
	out, err := Marshal(outer{A: 1, D: inner{C: true}, E: "hidden"}, DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := `{"a":1,"d":{"c":true}}`
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

func TestMarshalReflectiveMapSortsKeys(t *testing.T) {
	out, err := Marshal(map[string]int{"z": 1, "a": 2, "m": 3}, DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	want := `{"a":2,"m":3,"z":1}`
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

func TestMarshalModeStrictRejectsUnrecognized(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeStrict
	if _, err := Marshal(make(chan int), opts); err == nil {
		t.Errorf("expected an error for an unrecognized type under ModeStrict")
	}
}

func TestMarshalModeNullRendersUnrecognizedAsNull(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeNull
	out, err := Marshal(make(chan int), opts)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if string(out) != "null" {
		t.Errorf("expected null got %s", out)
	}
}

type cyclicNode struct {
	Next *cyclicNode `json:"next"`
}

func TestMarshalDetectCyclesCatchesSelfReference(t *testing.T) {
	opts := DefaultOptions()
	opts.DetectCycles = true
	n := &cyclicNode{}
	n.Next = n
	if _, err := Marshal(n, opts); err == nil {
		t.Errorf("expected a cycle error")
	}
}

func TestMarshalDetectCyclesAllowsSharedNonCyclicPointer(t *testing.T) {
	opts := DefaultOptions()
	opts.DetectCycles = true
	shared := &cyclicNode{}
	type pair struct {
		A *cyclicNode `json:"a"`
		B *cyclicNode `json:"b"`
	}
	out, err := Marshal(pair{A: shared, B: shared}, opts)
	if err != nil {
		t.Fatalf("expected no error for a shared but acyclic pointer, got %v", err)
	}
	want := `{"a":{"next":null},"b":{"next":null}}`
	if string(out) != want {
		t.Errorf("expected %q got %q", want, out)
	}
}

// nan returns a float64 NaN for test use without importing math directly
// into this file's test-table style.
func nan() float64 {
	var zero float64
	return zero / zero
}
