// Package fastjson is a high-throughput JSON parser and serializer: a
// table-driven byte state machine, a lane-batched escape scanner, a
// string intern cache, and an arbitrary-precision fallback for numeric
// literals too wide for a 64-bit integer mantissa. The design follows
// mcvoid-json's single-package, table-driven Parser, generalized to the
// fuller grammar, delegate set, and serializer dialects described in
// SPEC_FULL.md.
package fastjson

import (
	"fmt"
	"io"
)

// ParseInto runs the parser over data, dispatching events to d. Use this
// directly for the Validate delegate (NopDelegate), a custom SAJ-style
// handler, DebugDelegate, or a PathTrackingDelegate wrapping any of
// those.
func ParseInto(data []byte, d Delegate, opts Options) error {
	return NewParser(opts, d).Run(data)
}

// Parse parses data into a *Value tree (the Tree-build delegate of
// spec.md §4.6).
func Parse(data []byte, opts Options) (*Value, error) {
	td := newTreeDelegate(opts)
	if err := NewParser(opts, td).Run(data); err != nil {
		return nil, err
	}
	if !td.done {
		return nil, newParseError(1, 1, ErrSyntax, "no value parsed")
	}
	return td.root, nil
}

// ParseReader reads r to completion and parses the result. Streaming
// parse (parsing as bytes arrive, without buffering the whole document)
// is out of scope per spec.md's Non-goals; this is the complete-slice
// form spec.md §5 allows, fed from an io.Reader for convenience.
func ParseReader(r io.Reader, opts Options) (*Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newParseError(0, 0, ErrIO, err.Error())
	}
	return Parse(data, opts)
}

// MarshalTo serializes x to w under opts. The full output is assembled
// in memory first (Options doesn't expose true incremental streaming,
// matching the complete-buffer Serializer design in serializer.go) and
// then written to w in one call.
func MarshalTo(w io.Writer, x interface{}, opts Options) error {
	out, err := Marshal(x, opts)
	if err != nil {
		return err
	}
	if _, err = w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Equal reports whether two parsed values represent the same JSON data,
// ignoring object member order.
func Equal(a, b *Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case Null:
		return true
	case Boolean:
		return a.booleanValue == b.booleanValue
	case Integer:
		return a.integerValue == b.integerValue
	case Number:
		return a.numberValue == b.numberValue
	case Big:
		return a.bigValue == b.bigValue
	case String:
		return a.stringValue == b.stringValue
	case Array:
		if len(a.arrayValue) != len(b.arrayValue) {
			return false
		}
		for i := range a.arrayValue {
			if !Equal(a.arrayValue[i], b.arrayValue[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.objectValue) != len(b.objectValue) {
			return false
		}
		for _, p := range a.objectValue {
			if !Equal(p.val, b.Key(p.key)) {
				return false
			}
		}
		return true
	}
	return false
}

