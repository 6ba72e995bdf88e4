package fastjson

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mcvoid/fastjson/internal/numeric"
)

// MaxDepth is the deepest container nesting the parser accepts, per
// spec.md §3.
const MaxDepth = 1024

// Delegate receives the parser's event stream, in the exact order the
// input implies (depth-first, left-to-right). Every method returns a
// "stop" bool; returning true cancels the parse the way spec.md §5
// describes ("the delegate may return a stop indicator from any
// callback"). Concrete delegates provided: NopDelegate (§4.6 Validate),
// PathTrackingDelegate (wraps any Delegate, which itself serves as the
// streaming handler, and records the key/index path), the tree delegate
// built internally by Parse, and DebugDelegate. No delegate passes the
// current object key as an extra argument to a value callback.
type Delegate interface {
	OpenObject() (stop bool)
	CloseObject() (stop bool)
	OpenArray() (stop bool)
	CloseArray() (stop bool)
	Null() (stop bool)
	Bool(v bool) (stop bool)
	Int(v int64) (stop bool)
	Float(v float64) (stop bool)
	Big(text string) (stop bool)
	Str(v []byte) (stop bool)
	Key(v []byte) (stop bool)
}

// containerKind tags a stack frame as an array or an object.
type containerKind byte

const (
	kindArray  containerKind = 'a'
	kindObject containerKind = 'o'
)

// outerClass classifies a byte for the structural dispatch table —
// spec.md's value_map/comma_map/key1_map/key_map/colon_map/after_map
// collapsed into one table parameterized by outerState, since spec.md's
// six tables share the same column alphabet and differ only in which
// columns are legal.
type outerClass int8

const (
	ocSpace outerClass = iota
	ocNewline
	ocWhite
	ocLBrace
	ocRBrace
	ocLBracket
	ocRBracket
	ocColon
	ocComma
	ocQuote
	ocMinus
	ocZero
	ocDigit19
	ocLowT
	ocLowF
	ocLowN
	ocCapN
	ocCapI
	ocEtc
	ocEof
	numOuterClasses
)

var outerClassOf [256]outerClass

func init() {
	for i := range outerClassOf {
		outerClassOf[i] = ocEtc
	}
	outerClassOf[' '] = ocSpace
	outerClassOf['\n'] = ocNewline
	outerClassOf['\t'] = ocWhite
	outerClassOf['\r'] = ocWhite
	outerClassOf['{'] = ocLBrace
	outerClassOf['}'] = ocRBrace
	outerClassOf['['] = ocLBracket
	outerClassOf[']'] = ocRBracket
	outerClassOf[':'] = ocColon
	outerClassOf[','] = ocComma
	outerClassOf['"'] = ocQuote
	outerClassOf['-'] = ocMinus
	outerClassOf['0'] = ocZero
	for c := '1'; c <= '9'; c++ {
		outerClassOf[c] = ocDigit19
	}
	outerClassOf['t'] = ocLowT
	outerClassOf['f'] = ocLowF
	outerClassOf['n'] = ocLowN
	outerClassOf['N'] = ocCapN
	outerClassOf['I'] = ocCapI
}

func classify(data []byte, i int) outerClass {
	if i >= len(data) {
		return ocEof
	}
	return outerClassOf[data[i]]
}

// outerState is one of spec.md §4.1's value-expected table states.
type outerState int8

const (
	// osValue expects a value: top-level initial position, right after
	// a colon, or right after a comma inside an array.
	osValue outerState = iota
	// osArrayOpen is the position right after '[': a value or an
	// immediate ']' (empty array) is legal.
	osArrayOpen
	// osObjectOpen is the position right after '{': a key or an
	// immediate '}' (empty object) is legal.
	osObjectOpen
	// osObjectKey expects a key after a comma inside an object.
	// Trailing commas are not supported, so unlike osObjectOpen no
	// immediate '}' is legal here.
	osObjectKey
	// osColon expects ':'.
	osColon
	// osAfterValue follows a completed value: a comma, the container's
	// matching close, or (at top level) only trailing whitespace/EOF is
	// legal.
	osAfterValue
	numOuterStates
)

// action is what the structural table cell prescribes. Zero (aErr) is
// the zero value so an unfilled table cell is automatically an error.
type action int8

const (
	aErr action = iota
	aSkipSpace
	aSkipNewline
	aOpenArray
	aOpenObject
	aCloseArray
	aCloseObject
	aColon
	aComma
	aQuoteValue
	aQuoteKey
	aMinus
	aZero
	aDigit
	aTrue
	aFalse
	aNull
	aNaN
	aInfinity
	aEOFAfterValue
)

var outerTable [numOuterStates][numOuterClasses]action

func setRow(state outerState, overrides map[outerClass]action) {
	for c := outerClass(0); c < numOuterClasses; c++ {
		if a, ok := overrides[c]; ok {
			outerTable[state][c] = a
		}
	}
}

func init() {
	valueStarters := map[outerClass]action{
		ocSpace: aSkipSpace, ocNewline: aSkipNewline, ocWhite: aSkipSpace,
		ocLBrace: aOpenObject, ocLBracket: aOpenArray, ocQuote: aQuoteValue,
		ocMinus: aMinus, ocZero: aZero, ocDigit19: aDigit,
		ocLowT: aTrue, ocLowF: aFalse, ocLowN: aNull,
		ocCapN: aNaN, ocCapI: aInfinity,
	}
	setRow(osValue, valueStarters)

	arrayOpen := map[outerClass]action{}
	for k, v := range valueStarters {
		arrayOpen[k] = v
	}
	arrayOpen[ocRBracket] = aCloseArray
	setRow(osArrayOpen, arrayOpen)

	setRow(osObjectOpen, map[outerClass]action{
		ocSpace: aSkipSpace, ocNewline: aSkipNewline, ocWhite: aSkipSpace,
		ocQuote: aQuoteKey, ocRBrace: aCloseObject,
	})

	setRow(osObjectKey, map[outerClass]action{
		ocSpace: aSkipSpace, ocNewline: aSkipNewline, ocWhite: aSkipSpace,
		ocQuote: aQuoteKey,
	})

	setRow(osColon, map[outerClass]action{
		ocSpace: aSkipSpace, ocNewline: aSkipNewline, ocWhite: aSkipSpace,
		ocColon: aColon,
	})

	setRow(osAfterValue, map[outerClass]action{
		ocSpace: aSkipSpace, ocNewline: aSkipNewline, ocWhite: aSkipSpace,
		ocComma: aComma, ocRBracket: aCloseArray, ocRBrace: aCloseObject,
		ocEof: aEOFAfterValue,
	})
}

// Parser runs the table-driven byte state machine described in spec.md
// §4.1 over a complete input slice, dispatching events to a Delegate.
// This is the complete-slice-only form spec.md §5 says an implementation
// without streaming needs may use.
type Parser struct {
	outer outerState

	depth  int
	kindOf [MaxDepth]containerKind

	num      numeric.Accumulator
	scratch  []byte
	line     int
	col      int
	opts     Options
	delegate Delegate

	topScalarSeen    bool
	topContainerSeen bool
}

// NewParser builds a Parser bound to opts and d. A Parser instance is not
// safe to share across goroutines mid-parse, per spec.md §5.
func NewParser(opts Options, d Delegate) *Parser {
	return &Parser{opts: opts, delegate: d, line: 1, col: 1}
}

func (p *Parser) errorf(kind error, format string, args ...interface{}) error {
	return newParseError(p.line, p.col, kind, fmt.Sprintf(format, args...))
}

func (p *Parser) advance(n int) {
	p.col += n
}

func (p *Parser) newline() {
	p.line++
	p.col = 1
}

func (p *Parser) push(k containerKind) error {
	if p.depth >= MaxDepth {
		return p.errorf(ErrDepth, "container nesting exceeds %d", MaxDepth)
	}
	p.kindOf[p.depth] = k
	p.depth++
	return nil
}

func (p *Parser) pop(expect containerKind) error {
	if p.depth == 0 || p.kindOf[p.depth-1] != expect {
		return p.errorf(ErrSyntax, "unmatched closing %q", closeCharFor(expect))
	}
	p.depth--
	return nil
}

func closeCharFor(k containerKind) byte {
	if k == kindArray {
		return ']'
	}
	return '}'
}

// errStop is returned internally to unwind once a delegate asks to stop;
// it wraps ErrCancelled, and Run returns it to the caller as is.
var errStop = fmt.Errorf("%w", ErrCancelled)

func checkStop(stop bool) error {
	if stop {
		return errStop
	}
	return nil
}

// Run parses data to completion, or to the first error. Once Run returns
// a non-nil error the Parser must not be reused, per spec.md §7.
func (p *Parser) Run(data []byte) error {
	i := 0
	for {
		cls := classify(data, i)
		act := outerTable[p.outer][cls]
		next, consumed, err := p.dispatch(data, i, act)
		if err != nil {
			return err
		}
		i += consumed
		p.outer = next
		if cls == ocEof {
			return nil
		}
	}
}

// dispatch executes the side effect for one structural action, returning
// the next outer state and how many bytes of data were consumed. Number,
// string, and keyword literals are scanned in their own tight loops
// (scanNumber/scanString/scanKeyword) rather than folded into the outer
// table, since their internal grammar (leading-zero rule, escape
// handling, UTF-8 validation, mantissa overflow) doesn't share the outer
// table's column alphabet — see DESIGN.md for the rationale.
func (p *Parser) dispatch(data []byte, i int, act action) (outerState, int, error) {
	switch act {
	case aErr:
		return p.outer, 0, p.unexpectedByteError(data, i)

	case aSkipSpace:
		p.advance(1)
		return p.outer, 1, nil

	case aSkipNewline:
		p.newline()
		return p.outer, 1, nil

	case aOpenArray:
		p.advance(1)
		if err := p.push(kindArray); err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.OpenArray()); err != nil {
			return p.outer, 0, err
		}
		return osArrayOpen, 1, nil

	case aOpenObject:
		p.advance(1)
		if err := p.push(kindObject); err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.OpenObject()); err != nil {
			return p.outer, 0, err
		}
		return osObjectOpen, 1, nil

	case aCloseArray:
		p.advance(1)
		if err := p.pop(kindArray); err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.CloseArray()); err != nil {
			return p.outer, 0, err
		}
		return osAfterValue, 1, nil

	case aCloseObject:
		p.advance(1)
		if err := p.pop(kindObject); err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.CloseObject()); err != nil {
			return p.outer, 0, err
		}
		return osAfterValue, 1, nil

	case aColon:
		p.advance(1)
		return osValue, 1, nil

	case aComma:
		p.advance(1)
		if p.depth == 0 {
			return p.outer, 1, p.errorf(ErrSyntax, "comma outside any container")
		}
		switch p.kindOf[p.depth-1] {
		case kindArray:
			return osValue, 1, nil
		case kindObject:
			return osObjectKey, 1, nil
		}
		return p.outer, 1, p.errorf(ErrSyntax, "comma outside any container")

	case aQuoteValue:
		content, newI, err := p.scanString(data, i+1)
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Str(content)); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aQuoteKey:
		content, newI, err := p.scanString(data, i+1)
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Key(content)); err != nil {
			return p.outer, 0, err
		}
		return osColon, newI - i, nil

	case aMinus:
		if p.opts.AllowNaN && classify(data, i+1) == ocCapI {
			newI, err := p.scanKeyword(data, i+1, "Infinity")
			if err != nil {
				return p.outer, 0, err
			}
			if err := checkStop(p.delegate.Float(negInf())); err != nil {
				return p.outer, 0, err
			}
			return p.afterCompletingValue(), newI - i, nil
		}
		newI, err := p.scanNumber(data, i)
		if err != nil {
			return p.outer, 0, err
		}
		if err := p.emitNumber(); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aZero, aDigit:
		newI, err := p.scanNumber(data, i)
		if err != nil {
			return p.outer, 0, err
		}
		if err := p.emitNumber(); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aTrue:
		newI, err := p.scanKeyword(data, i, "true")
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Bool(true)); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aFalse:
		newI, err := p.scanKeyword(data, i, "false")
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Bool(false)); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aNull:
		newI, err := p.scanKeyword(data, i, "null")
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Null()); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aNaN:
		if !p.opts.AllowNaN {
			return p.outer, 0, p.unexpectedByteError(data, i)
		}
		newI, err := p.scanKeyword(data, i, "NaN")
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Float(nan())); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aInfinity:
		if !p.opts.AllowNaN {
			return p.outer, 0, p.unexpectedByteError(data, i)
		}
		newI, err := p.scanKeyword(data, i, "Infinity")
		if err != nil {
			return p.outer, 0, err
		}
		if err := checkStop(p.delegate.Float(posInf())); err != nil {
			return p.outer, 0, err
		}
		return p.afterCompletingValue(), newI - i, nil

	case aEOFAfterValue:
		if p.depth != 0 {
			return p.outer, 0, p.errorf(ErrSyntax, "unexpected end of input inside open container")
		}
		if p.topScalarSeen && !p.opts.AllowBareScalars {
			return p.outer, 0, p.errorf(ErrSyntax, "bare top-level scalars are not enabled")
		}
		return p.outer, 0, nil
	}
	return p.outer, 0, p.errorf(ErrSyntax, "unreachable action %d", act)
}

func (p *Parser) unexpectedByteError(data []byte, i int) error {
	if i >= len(data) {
		return p.errorf(ErrSyntax, "unexpected end of input")
	}
	return p.errorf(ErrSyntax, "unexpected character %q", data[i])
}

// afterCompletingValue records that a scalar (not a container close —
// those go straight to osAfterValue) completed at top level, for the
// bare-scalar policy check at EOF, and returns the outer state that
// follows it.
func (p *Parser) afterCompletingValue() outerState {
	if p.depth == 0 {
		p.topScalarSeen = true
	}
	return osAfterValue
}

func negInf() float64 { return math.Inf(-1) }
func posInf() float64 { return math.Inf(1) }
func nan() float64    { return math.NaN() }

// emitNumber dispatches the just-scanned p.num accumulator to the right
// delegate callback: Int for a plain integer literal, Big for one that
// overflowed the fast mantissa path (unless BigDecimalLoad is
// BigDecimalFloat) or that BigDecimalBigDec forces, Float otherwise.
func (p *Parser) emitNumber() error {
	defer p.num.Reset()
	if p.num.Overflowed() && p.opts.BigDecimalLoad == BigDecimalFloat {
		// The mantissa stopped accumulating at the overflow, so the float
		// is read from the verbatim text instead; out-of-range text yields
		// +-Inf or 0 as strconv.ParseFloat reports it.
		f, _ := strconv.ParseFloat(p.num.Text(), 64)
		return checkStop(p.delegate.Float(f))
	}
	if p.num.Overflowed() || p.opts.BigDecimalLoad == BigDecimalBigDec && !p.num.IsInteger() {
		// Confirm the verbatim text is actually loadable as an
		// arbitrary-precision decimal before handing it to the delegate
		// as one; the emitted text itself stays the verbatim source
		// (more precise than anything math/big's fixed 256-bit
		// precision would round-trip back out).
		if _, ok := p.num.BigFloat(); !ok {
			return p.errorf(ErrNumberRange, "numeric literal %q is not representable as an arbitrary-precision decimal", p.num.Text())
		}
		return checkStop(p.delegate.Big(p.num.Text()))
	}
	if p.num.IsInteger() && p.opts.BigDecimalLoad != BigDecimalFloat {
		return checkStop(p.delegate.Int(p.num.Int()))
	}
	return checkStop(p.delegate.Float(p.num.Float()))
}

// scanNumber consumes one JSON number literal starting at data[i],
// feeding each digit to p.num, and returns the index just past it.
// Grounded on spec.md §4.3's number grammar: optional '-', then either a
// single '0' or a 1-9 digit run (no extra leading zeros), an optional
// '.' fraction requiring at least one digit, and an optional e/E
// exponent with an optional sign requiring at least one digit.
func (p *Parser) scanNumber(data []byte, i int) (int, error) {
	p.num.Reset()
	start := i
	if i < len(data) && data[i] == '-' {
		p.num.Negative()
		i++
	}
	if i >= len(data) || (data[i] < '0' || data[i] > '9') {
		return i, p.errorf(ErrSyntax, "expected digit after '-'")
	}
	if data[i] == '0' {
		p.num.AddDigit('0')
		i++
		if i < len(data) && data[i] >= '0' && data[i] <= '9' {
			return i, p.errorf(ErrSyntax, "leading zero not allowed")
		}
	} else {
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			p.num.AddDigit(data[i])
			i++
		}
	}
	if i < len(data) && data[i] == '.' {
		i++
		if i >= len(data) || data[i] < '0' || data[i] > '9' {
			return i, p.errorf(ErrSyntax, "expected digit after '.'")
		}
		p.num.StartFraction()
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			p.num.AddFractionDigit(data[i])
			i++
		}
	}
	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		i++
		neg := false
		if i < len(data) && (data[i] == '+' || data[i] == '-') {
			neg = data[i] == '-'
			i++
		}
		if i >= len(data) || data[i] < '0' || data[i] > '9' {
			return i, p.errorf(ErrSyntax, "expected digit in exponent")
		}
		p.num.StartExponent(neg)
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			p.num.AddExponentDigit(data[i])
			i++
		}
	}
	p.advance(i - start)
	if !p.num.ExponentInRange() {
		return i, p.errorf(ErrNumberRange, "exponent out of range")
	}
	return i, nil
}

// scanKeyword matches literal starting at data[i], including the byte
// already classified by the outer table. The whole slice is resident in
// memory (spec.md's complete-slice-only form), so there is no need for
// mcvoid-json's incremental per-character keyword sub-states: a single
// bounds-checked compare suffices.
func (p *Parser) scanKeyword(data []byte, i int, literal string) (int, error) {
	end := i + len(literal)
	if end > len(data) || string(data[i:end]) != literal {
		return i, p.errorf(ErrSyntax, "invalid literal, expected %q", literal)
	}
	p.advance(len(literal))
	return end, nil
}

// scanString consumes a JSON string body starting right after its
// opening quote, decoding escapes (including \uXXXX surrogate pairs) and
// validating embedded UTF-8, and returns the decoded bytes (owned by
// p.scratch, valid until the next scanString call) and the index just
// past the closing quote. Grounded on spec.md §4.1's string_map/esc_map/
// u_map/utf_map chain and original_source/ext/oj's read_str/unicode
// handling in parser.c.
func (p *Parser) scanString(data []byte, i int) ([]byte, int, error) {
	p.scratch = p.scratch[:0]
	start := i
	for {
		if i >= len(data) {
			return nil, i, p.errorf(ErrSyntax, "unterminated string")
		}
		c := data[i]
		switch {
		case c == '"':
			p.advance(i + 1 - start)
			return p.scratch, i + 1, nil

		case c == '\\':
			if i+1 >= len(data) {
				return nil, i, p.errorf(ErrSyntax, "unterminated escape")
			}
			esc := data[i+1]
			switch esc {
			case '"', '\\', '/':
				p.scratch = append(p.scratch, esc)
				i += 2
			case 'b':
				p.scratch = append(p.scratch, '\b')
				i += 2
			case 'f':
				p.scratch = append(p.scratch, '\f')
				i += 2
			case 'n':
				p.scratch = append(p.scratch, '\n')
				i += 2
			case 'r':
				p.scratch = append(p.scratch, '\r')
				i += 2
			case 't':
				p.scratch = append(p.scratch, '\t')
				i += 2
			case 'u':
				unit, newI, err := p.scanHex4(data, i+2)
				if err != nil {
					return nil, i, err
				}
				i = newI
				r := rune(unit)
				if utf16.IsSurrogate(r) {
					if i+1 >= len(data) || data[i] != '\\' || data[i+1] != 'u' {
						if p.opts.AllowInvalidUnicode {
							p.scratch = utf8.AppendRune(p.scratch, utf8.RuneError)
							continue
						}
						return nil, i, p.errorf(ErrUnicode, "unpaired surrogate")
					}
					lowUnit, newI2, err := p.scanHex4(data, i+2)
					if err != nil {
						return nil, i, err
					}
					combined := utf16.DecodeRune(r, rune(lowUnit))
					if combined == utf8.RuneError && !p.opts.AllowInvalidUnicode {
						return nil, i, p.errorf(ErrUnicode, "invalid surrogate pair")
					}
					p.scratch = utf8.AppendRune(p.scratch, combined)
					i = newI2
				} else {
					p.scratch = utf8.AppendRune(p.scratch, r)
				}
			default:
				return nil, i, p.errorf(ErrSyntax, "invalid escape character %q", esc)
			}

		case c < 0x20:
			return nil, i, p.errorf(ErrSyntax, "control character in string")

		case c < 0x80:
			p.scratch = append(p.scratch, c)
			i++

		default:
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size <= 1 {
				if !p.opts.AllowInvalidUnicode {
					return nil, i, p.errorf(ErrUnicode, "invalid UTF-8 byte sequence")
				}
				p.scratch = utf8.AppendRune(p.scratch, utf8.RuneError)
				i++
				continue
			}
			p.scratch = append(p.scratch, data[i:i+size]...)
			i += size
		}
	}
}

// scanHex4 reads exactly four hex digits starting at data[i] and returns
// their value plus the index just past them.
func (p *Parser) scanHex4(data []byte, i int) (uint16, int, error) {
	if i+4 > len(data) {
		return 0, i, p.errorf(ErrUnicode, "truncated \\u escape")
	}
	var v uint16
	for j := 0; j < 4; j++ {
		c := data[i+j]
		var d uint16
		switch {
		case c >= '0' && c <= '9':
			d = uint16(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint16(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint16(c-'A') + 10
		default:
			return 0, i, p.errorf(ErrUnicode, "invalid hex digit in \\u escape")
		}
		v = v<<4 | d
	}
	return v, i + 4, nil
}
