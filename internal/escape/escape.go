// Package escape implements the string encode/escape engine: per-mode
// 256-byte action tables driving a 16-byte lane scan with a scalar
// byte-loop fallback, plus the UTF-8 decode needed to turn a multi-byte
// scalar into a single \uXXXX (or surrogate-pair) escape.
//
// The six action tables are ports of oj's dump.c *_friendly_chars tables
// (newline_friendly_chars, hibit_friendly_chars, slash_friendly_chars,
// ascii_friendly_chars, xss_friendly_chars, hixss_friendly_chars), kept
// here as plain Go data rather than per-mode branches in the scanner, per
// spec.md's design note "multiple escape tables as data, not code."
package escape

import (
	"unicode/utf8"

	"github.com/klauspost/cpuid/v2"
)

// Action is the per-byte classification a Mode's table assigns.
type Action byte

const (
	// Copy means the byte is written through unescaped.
	Copy Action = '1'
	// TwoChar means the byte is written as a two-character escape such
	// as \n or \t.
	TwoChar Action = '2'
	// Unicode means the byte starts (or is) a scalar that must be
	// escaped as \uXXXX, decoding multi-byte UTF-8 first.
	Unicode Action = '3'
	// Control means the byte must be escaped as \u00XX.
	Control Action = '6'
)

// Mode selects which 256-byte action table the scanner consults.
type Mode int

const (
	// JSON is the plain RFC 8259 escape policy: control characters and
	// the two structural characters are escaped, everything else
	// (including raw multi-byte UTF-8) is copied through.
	JSON Mode = iota
	// JSONSlashEscaped additionally escapes '/' as "\/".
	JSONSlashEscaped
	// ASCIIOnly escapes every non-ASCII scalar as \uXXXX (or a
	// surrogate pair above U+FFFF), producing pure-ASCII output.
	ASCIIOnly
	// XSSSafe additionally escapes '<', '>', and '&' as \u00XX.
	XSSSafe
	// UnicodeXSSSafe combines ASCIIOnly and XSSSafe.
	UnicodeXSSSafe
	// NewlinePreserving is the JSON policy but copies raw '\n' bytes
	// through as a literal newline instead of "\n".
	NewlinePreserving
)

// twoCharEscapes maps bytes classified TwoChar to their escape letter.
var twoCharEscapes = [256]byte{
	'"':  '"',
	'\\': '\\',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'/':  '/',
}

// baseTable builds the common control-character/quote/backslash policy
// shared by every mode (oj's hibit_friendly_chars), onto which each mode
// layers its own overrides.
func baseTable() [256]Action {
	var t [256]Action
	for i := range t {
		t[i] = Copy
	}
	for i := 0; i < 0x20; i++ {
		t[i] = Control
	}
	t['\b'] = TwoChar
	t['\f'] = TwoChar
	t['\n'] = TwoChar
	t['\r'] = TwoChar
	t['\t'] = TwoChar
	t['"'] = TwoChar
	t['\\'] = TwoChar
	return t
}

func withOverrides(base [256]Action, overrides map[int]Action) [256]Action {
	t := base
	for b, a := range overrides {
		t[b] = a
	}
	return t
}

func escapeAllHighBit(t [256]Action) [256]Action {
	for i := 0x80; i < 0x100; i++ {
		t[i] = Unicode
	}
	t[0x7f] = Control
	return t
}

var tables = func() map[Mode][256]Action {
	base := baseTable()
	m := map[Mode][256]Action{
		JSON:              base,
		JSONSlashEscaped:  withOverrides(base, map[int]Action{'/': TwoChar}),
		NewlinePreserving: withOverrides(base, map[int]Action{'\n': Copy}),
		XSSSafe:           withOverrides(base, map[int]Action{'<': Unicode, '>': Unicode, '&': Unicode}),
	}
	m[ASCIIOnly] = escapeAllHighBit(base)
	m[UnicodeXSSSafe] = escapeAllHighBit(m[XSSSafe])
	return m
}()

func lookup(mode Mode) *[256]Action {
	t := tables[mode]
	return &t
}

// laneWidth is the chunk size the batched scan processes at a time. A
// real SIMD backend loads this many bytes into a vector register; this
// pure-Go implementation scans the same width a byte at a time, so the
// branch structure (batch-all-copy-or-fall-back) matches spec.md's design
// even though the lane body itself is portable.
const laneWidth = 16

// hasWideLanes reports whether the host CPU exposes a SIMD feature level
// a native backend could vectorize the scan with (SSE4.2 on amd64, ASIMD
// on arm64). Detected once via cpuid, mirroring minio-simdjson-go's
// cpuid.CPU.Supports(...) gate for its own stage1/stage2 backend.
var hasWideLanes = cpuid.CPU.Supports(cpuid.SSE42) || cpuid.CPU.Supports(cpuid.ASIMD)

// HasWideLanes reports the detected SIMD capability level, exposed for
// tests and diagnostics.
func HasWideLanes() bool {
	return hasWideLanes
}

// Scanner escapes string content according to Mode, appending the result
// (without surrounding quotes) to dst.
type Scanner struct {
	Mode Mode
}

// EscapedLen computes the exact output length escaping src would produce,
// used to Reserve the output buffer once per string instead of growing
// incrementally. Non-ASCII scalars are charged their worst-case width
// (6 bytes, or 12 for a surrogate pair) under Unicode-escaping modes.
func (s Scanner) EscapedLen(src []byte) int {
	table := lookup(s.Mode)
	n := 0
	for i := 0; i < len(src); {
		c := src[i]
		switch table[c] {
		case Copy:
			n++
			i++
		case TwoChar:
			n += 2
			i++
		case Control:
			n += 6
			i++
		case Unicode:
			r, size := utf8.DecodeRune(src[i:])
			if r == utf8.RuneError && size <= 1 {
				n += 6
				i++
				continue
			}
			if r > 0xFFFF {
				n += 12
			} else {
				n += 6
			}
			i += size
		default:
			n++
			i++
		}
	}
	return n
}

// AppendEscaped appends the escaped form of src to dst and returns the
// extended slice.
func (s Scanner) AppendEscaped(dst, src []byte) []byte {
	table := lookup(s.Mode)

	i := 0
	n := len(src)
	for hasWideLanes && i+laneWidth <= n {
		if allCopy(table, src[i:i+laneWidth]) {
			dst = append(dst, src[i:i+laneWidth]...)
			i += laneWidth
			continue
		}
		dst, i = appendOne(dst, table, src, i)
	}
	for i < n {
		dst, i = appendOne(dst, table, src, i)
	}
	return dst
}

// allCopy reports whether every byte in a laneWidth-sized window is
// classified Copy, the fast-path check a lane scan performs before
// falling back to the scalar loop.
func allCopy(table *[256]Action, lane []byte) bool {
	for _, c := range lane {
		if table[c] != Copy {
			return false
		}
	}
	return true
}

func appendOne(dst []byte, table *[256]Action, src []byte, i int) ([]byte, int) {
	c := src[i]
	switch table[c] {
	case Copy:
		return append(dst, c), i + 1
	case TwoChar:
		return append(dst, '\\', twoCharEscapes[c]), i + 1
	case Control:
		return appendControl(dst, c), i + 1
	case Unicode:
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return appendControl(dst, c), i + 1
		}
		return AppendEscapedRune(dst, r), i + size
	default:
		return append(dst, c), i + 1
	}
}

func appendControl(dst []byte, c byte) []byte {
	return append(dst, '\\', 'u', '0', '0', hexDigit(c>>4), hexDigit(c&0xF))
}

const hexChars = "0123456789abcdef"

func hexDigit(n byte) byte {
	return hexChars[n&0xF]
}

// AppendEscapedRune appends a decoded Unicode scalar value as a single
// \uXXXX escape, or as a surrogate pair above U+FFFF.
func AppendEscapedRune(dst []byte, r rune) []byte {
	if r > 0xFFFF {
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		dst = appendUEscape(dst, uint16(hi))
		dst = appendUEscape(dst, uint16(lo))
		return dst
	}
	return appendUEscape(dst, uint16(r))
}

func appendUEscape(dst []byte, v uint16) []byte {
	return append(dst, '\\', 'u', hexDigit(byte(v>>12)), hexDigit(byte(v>>8)), hexDigit(byte(v>>4)), hexDigit(byte(v)))
}
