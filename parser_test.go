package fastjson

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestParseValidDocuments(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected *Value
	}{
		{`null`, &Value{jsonType: Null}},
		{`true`, &Value{jsonType: Boolean, booleanValue: true}},
		{`false`, &Value{jsonType: Boolean, booleanValue: false}},
		{`42`, &Value{jsonType: Integer, integerValue: 42}},
		{`-42`, &Value{jsonType: Integer, integerValue: -42}},
		{`0`, &Value{jsonType: Integer, integerValue: 0}},
		{`3.5`, &Value{jsonType: Number, numberValue: 3.5}},
		{`-0.5e2`, &Value{jsonType: Number, numberValue: -50}},
		{`"hello"`, &Value{jsonType: String, stringValue: "hello"}},
		{`"a\nb\tc\"d"`, &Value{jsonType: String, stringValue: "a\nb\tc\"d"}},
		{`"é"`, &Value{jsonType: String, stringValue: "é"}},
		{`"😀"`, &Value{jsonType: String, stringValue: "\U0001F600"}},
		{`[]`, &Value{jsonType: Array, arrayValue: []*Value{}}},
		{`[1, 2, 3]`, &Value{jsonType: Array, arrayValue: []*Value{
			{jsonType: Integer, integerValue: 1},
			{jsonType: Integer, integerValue: 2},
			{jsonType: Integer, integerValue: 3},
		}}},
		{`{}`, &Value{jsonType: Object, objectValue: []pair{}}},
		{`{"a": 1, "b": 2}`, &Value{jsonType: Object, objectValue: []pair{
			{"a", &Value{jsonType: Integer, integerValue: 1}},
			{"b", &Value{jsonType: Integer, integerValue: 2}},
		}}},
		{"  \n\t [1]  \n", &Value{jsonType: Array, arrayValue: []*Value{
			{jsonType: Integer, integerValue: 1},
		}}},
	} {
		t.Run(test.input, func(t *testing.T) {
			v, err := Parse([]byte(test.input), DefaultOptions())
			if err != nil {
				t.Fatalf("expected no error got %v", err)
			}
			if !Equal(v, test.expected) {
				t.Errorf("expected %v got %v", test.expected, v)
			}
		})
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		``,
		`{`,
		`[`,
		`[1,]`,
		`{"a":1,}`,
		`{"a" 1}`,
		`{a: 1}`,
		`[1 2]`,
		`01`,
		`1.`,
		`.1`,
		`1e`,
		`tru`,
		`"unterminated`,
		"\"control\x01char\"",
		`"bad\escape"`,
		`[1, 2`,
		`nul`,
	} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			if _, err := Parse([]byte(input), DefaultOptions()); err == nil {
				t.Errorf("expected a syntax error, got none")
			}
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	input := ""
	for i := 0; i < MaxDepth+1; i++ {
		input += "["
	}
	_, err := Parse([]byte(input), DefaultOptions())
	if !errors.Is(err, ErrDepth) {
		t.Errorf("expected ErrDepth got %v", err)
	}
}

func TestParseBareScalarPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowBareScalars = true
	if _, err := Parse([]byte(`42`), opts); err != nil {
		t.Errorf("expected bare scalar to parse, got %v", err)
	}

	opts.AllowBareScalars = false
	if _, err := Parse([]byte(`42`), opts); err == nil {
		t.Errorf("expected an error with bare scalars disabled")
	}
	if _, err := Parse([]byte(`[42]`), opts); err != nil {
		t.Errorf("expected containers to still parse, got %v", err)
	}
}

func TestParseOverflowGoesBig(t *testing.T) {
	v, err := Parse([]byte(`123456789012345678901234567890`), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if v.Type() != Big {
		t.Fatalf("expected Big got %v", v.Type())
	}
	text, _ := v.AsBigDecimal()
	if text != "123456789012345678901234567890" {
		t.Errorf("expected verbatim digits got %q", text)
	}
}

func TestParseNaNAndInfinityTolerance(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowNaN = true
	for _, test := range []struct {
		input string
		check func(f float64) bool
	}{
		{"NaN", math.IsNaN},
		{"Infinity", func(f float64) bool { return math.IsInf(f, 1) }},
		{"-Infinity", func(f float64) bool { return math.IsInf(f, -1) }},
	} {
		v, err := Parse([]byte(test.input), opts)
		if err != nil {
			t.Fatalf("%s: expected no error got %v", test.input, err)
		}
		f, _ := v.AsNumber()
		if !test.check(f) {
			t.Errorf("%s: unexpected value %v", test.input, f)
		}
	}

	opts.AllowNaN = false
	if _, err := Parse([]byte("NaN"), opts); err == nil {
		t.Errorf("expected NaN literal to be rejected when AllowNaN is false")
	}
}

func TestParseCancellation(t *testing.T) {
	calls := 0
	d := &stoppingDelegate{stopAfter: 2, calls: &calls}
	err := ParseInto([]byte(`[1, 2, 3, 4, 5]`), d, DefaultOptions())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 events delivered before stopping, got %d", calls)
	}
}

// stoppingDelegate is a minimal Delegate that asks the parser to stop
// after a fixed number of events, used to test spec.md §5's cancellation
// contract.
type stoppingDelegate struct {
	stopAfter int
	calls     *int
}

func (d *stoppingDelegate) tick() bool {
	*d.calls++
	return *d.calls >= d.stopAfter
}

func (d *stoppingDelegate) OpenObject() bool   { return d.tick() }
func (d *stoppingDelegate) CloseObject() bool  { return d.tick() }
func (d *stoppingDelegate) OpenArray() bool    { return d.tick() }
func (d *stoppingDelegate) CloseArray() bool   { return d.tick() }
func (d *stoppingDelegate) Null() bool         { return d.tick() }
func (d *stoppingDelegate) Bool(bool) bool     { return d.tick() }
func (d *stoppingDelegate) Int(int64) bool     { return d.tick() }
func (d *stoppingDelegate) Float(float64) bool { return d.tick() }
func (d *stoppingDelegate) Big(string) bool    { return d.tick() }
func (d *stoppingDelegate) Str([]byte) bool    { return d.tick() }
func (d *stoppingDelegate) Key([]byte) bool    { return d.tick() }

func TestValidate(t *testing.T) {
	if err := Validate([]byte(`{"a": [1, 2, true, null]}`), DefaultOptions()); err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if err := Validate([]byte(`{"a": }`), DefaultOptions()); err == nil {
		t.Errorf("expected a syntax error got none")
	}
}

func TestPathTrackingDelegate(t *testing.T) {
	var paths [][]string
	inner := &recordingDelegate{
		onScalar: func(pd *PathTrackingDelegate) {
			strs := make([]string, len(pd.Path()))
			for i, e := range pd.Path() {
				strs[i] = e.String()
			}
			paths = append(paths, strs)
		},
	}
	pd := NewPathTrackingDelegate(inner)
	inner.tracker = pd
	if err := ParseInto([]byte(`{"a": [1, 2], "b": {"c": true}}`), pd, DefaultOptions()); err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 scalar events, got %d: %v", len(paths), paths)
	}
}

// recordingDelegate calls onScalar after every scalar event, letting the
// test inspect the PathTrackingDelegate wrapping it.
type recordingDelegate struct {
	NopDelegate
	tracker  *PathTrackingDelegate
	onScalar func(*PathTrackingDelegate)
}

func (d *recordingDelegate) Int(int64) bool     { d.onScalar(d.tracker); return false }
func (d *recordingDelegate) Bool(bool) bool     { d.onScalar(d.tracker); return false }
func (d *recordingDelegate) Float(float64) bool { d.onScalar(d.tracker); return false }
