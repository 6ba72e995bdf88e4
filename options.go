package fastjson

import (
	"sync"

	"github.com/mcvoid/fastjson/internal/escape"
	"github.com/mcvoid/fastjson/internal/numeric"
)

// Mode selects a serializer dialect and the parser's treatment of class
// tags, per spec.md §6. The six dialects are grounded on
// original_source/ext/oj's dump_strict.c/dump_compat.c/dump_rails.c/
// dump_custom.c plus the plain "null" and "object" modes oj also exposes.
type Mode int

const (
	// ModeObject is the tree-building default: parse into Value, emit
	// Value back out.
	ModeObject Mode = iota
	// ModeStrict emits JSON primitives, *Value trees and Encodables;
	// a Go slice, array, map, struct or any unrecognized type is a Type
	// error (a map with non-string keys an EncodingPolicy error).
	ModeStrict
	// ModeNull renders anything the serializer doesn't recognize as
	// JSON null instead of erroring.
	ModeNull
	// ModeCompat encodes Go slices, arrays, maps and structs
	// reflectively (where ModeStrict rejects them) and reports a Type
	// error for any unrecognized type. Non-finite floats follow
	// Options.NaN exactly as in every other mode; ModeCompat adds no
	// NaN/Infinity handling of its own. It is not a byte-for-byte match
	// to any specific external library.
	ModeCompat
	// ModeRails quotes keys the same as strict but always renders
	// floats with an explicit decimal point (5.0, never 5).
	ModeRails
	// ModeCustom encodes like ModeObject (Encodables through their own
	// hook, which every mode honours; Go containers reflectively) but
	// reports a Type error for an unrecognized type instead of null.
	ModeCustom
)

// EscapeMode selects which escape.Mode table the serializer's scanner
// uses.
type EscapeMode int

const (
	EscapeJSON              = EscapeMode(escape.JSON)
	EscapeSlashEscaped      = EscapeMode(escape.JSONSlashEscaped)
	EscapeASCII             = EscapeMode(escape.ASCIIOnly)
	EscapeXSSSafe           = EscapeMode(escape.XSSSafe)
	EscapeUnicodeXSSSafe    = EscapeMode(escape.UnicodeXSSSafe)
	EscapeNewlinePreserving = EscapeMode(escape.NewlinePreserving)
)

// TimeFormat selects how time-like Encodables render, per spec.md §6.
// Time formatting itself is out of this module's scope (spec.md §1
// Explicitly out of scope); this is the hook a caller's Encodable
// implementation can consult.
type TimeFormat int

const (
	TimeUnix TimeFormat = iota
	TimeUnixWithOffset
	TimeXMLSchema
	TimeHostDefault
)

// BigDecimalLoad selects how fractional literals that would lose
// precision as a float64 are represented once parsed.
type BigDecimalLoad int

const (
	// BigDecimalAuto emits Float unless the literal overflowed the
	// fast mantissa path, in which case it emits Big regardless.
	BigDecimalAuto BigDecimalLoad = iota
	// BigDecimalFloat always emits Float, accepting precision loss.
	BigDecimalFloat
	// BigDecimalBigDec always emits Big (arbitrary-precision decimal
	// text) for any literal carrying fraction digits or a non-zero
	// exponent value (1e0 still emits Int).
	BigDecimalBigDec
)

// NaNPolicy is numeric.NaNPolicy re-exported under the Options' field
// name spec.md uses.
type NaNPolicy = numeric.NaNPolicy

const (
	NaNRaise = numeric.NaNRaise
	NaNWord  = numeric.NaNWord
	NaNNull  = numeric.NaNNull
	NaNHuge  = numeric.NaNHuge
)

// Options mirrors spec.md §6 field for field.
type Options struct {
	// Indent: 0 means compact output; >=1 and IndentString == "" means
	// that many spaces per level; a non-empty IndentString is used
	// verbatim per level instead.
	Indent       int
	IndentString string

	Mode       Mode
	EscapeMode EscapeMode
	TimeFormat TimeFormat

	BigDecimalLoad BigDecimalLoad
	NaN            NaNPolicy

	AllowNaN            bool // tolerate NaN/Infinity literals while parsing
	AllowInvalidUnicode bool
	AllowBareScalars    bool // tolerate a non-document top-level scalar

	OmitNil  bool
	CreateID string // object key that triggers class-tag propagation

	// ObjectFactory/ArrayFactory, when set, make the tree delegate also
	// build a caller-supplied container alongside the built-in *Value
	// tree: on each object/array close it calls the factory, feeds it
	// every member/element via Set/Append, and attaches the result to the
	// closed node, retrievable via Value.Custom(). Left nil, Value.Custom
	// returns nil and only the built-in tree is built (spec.md's
	// hash_class/array_class options, reduced to the hook point spec.md's
	// Design Notes call for).
	ObjectFactory func() MutableObject
	ArrayFactory  func() MutableArray

	CacheKeys    bool
	CacheStrings int // byte-length threshold at or below which string values are interned too; 0 disables

	FloatPrecision       int // 0..20, 0 means use the default shortest-safe formatter
	IntegerAsStringRange int64

	// DetectCycles makes Marshal track pointer identity through nested Go
	// values via an IdentityMap, turning a self-referential structure into
	// an ErrType error instead of unbounded recursion. Off by default
	// since it costs a map entry per pointer visited even on acyclic
	// input.
	DetectCycles bool
}

// MutableObject is the minimal interface a caller-supplied object
// container must satisfy for Options.ObjectFactory.
type MutableObject interface {
	Set(key string, v *Value)
}

// MutableArray is the minimal interface a caller-supplied array container
// must satisfy for Options.ArrayFactory.
type MutableArray interface {
	Append(v *Value)
}

// DefaultOptions returns the process-wide default Options, matching
// spec.md's "default_options()".
func DefaultOptions() Options {
	defaultOptionsOnce.Do(initDefaultOptions)
	defaultOptionsMu.RLock()
	defer defaultOptionsMu.RUnlock()
	return defaultOptions
}

// SetDefaultOptions replaces the process-wide default Options, matching
// spec.md's "set_default_options(...)". Per spec.md §9 Design Notes, the
// global is a lazily initialized process-singleton guarded by sync.Once,
// with this explicit setter for testability rather than a bare package
// variable.
func SetDefaultOptions(o Options) {
	defaultOptionsOnce.Do(func() {}) // ensure init has happened so it isn't clobbered by a later Do
	defaultOptionsMu.Lock()
	defer defaultOptionsMu.Unlock()
	defaultOptions = o
}

var (
	defaultOptionsOnce sync.Once
	defaultOptionsMu   sync.RWMutex
	defaultOptions     Options
)

func initDefaultOptions() {
	defaultOptionsMu.Lock()
	defer defaultOptionsMu.Unlock()
	defaultOptions = Options{
		Mode:             ModeObject,
		EscapeMode:       EscapeJSON,
		NaN:              NaNRaise,
		CacheKeys:        true,
		CacheStrings:     0,
		AllowBareScalars: true,
		FloatPrecision:   0,
	}
}
