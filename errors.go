package fastjson

import (
	"errors"
	"fmt"
)

// Sentinel errors for the eight error kinds spec.md's error-handling
// design names. Every error returned by Parse/ParseInto/Marshal/MarshalTo
// wraps exactly one of these: parse failures as a *ParseError (see its
// Unwrap), everything else via fmt.Errorf("%w: ...", ...), the same
// pattern mcvoid-json's json.go uses for ErrType/ErrParse.
var (
	// ErrSyntax reports input that does not match the JSON grammar.
	ErrSyntax = errors.New("syntax error")
	// ErrUnicode reports malformed UTF-8, a lone surrogate, or a bad
	// \u escape.
	ErrUnicode = errors.New("unicode error")
	// ErrNumberRange reports a decimal exponent beyond the supported
	// bound.
	ErrNumberRange = errors.New("number range error")
	// ErrDepth reports container nesting beyond MaxDepth.
	ErrDepth = errors.New("depth exceeded")
	// ErrEncodingPolicy reports a non-finite float encountered while
	// NaN policy is Raise, or a non-string/symbol key in strict mode.
	ErrEncodingPolicy = errors.New("encoding policy error")
	// ErrIO reports a read/write failure on a stream.
	ErrIO = errors.New("io error")
	// ErrType reports a value of a kind the current mode refuses to
	// serialize, or an accessor mismatch on a parsed Value.
	ErrType = errors.New("type error")
	// ErrCancelled reports a delegate that asked the parser to stop.
	ErrCancelled = errors.New("cancelled")
)

// ParseError carries the byte position of a parse failure alongside the
// sentinel it wraps, matching spec.md §7's "line and column of the
// offending byte are included."
type ParseError struct {
	Line   int
	Column int
	Kind   error
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Msg)
}

// Unwrap exposes the wrapped sentinel so errors.Is(err, fastjson.ErrSyntax)
// works against a returned *ParseError.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newParseError(line, col int, kind error, msg string) *ParseError {
	return &ParseError{Line: line, Column: col, Kind: kind, Msg: msg}
}
