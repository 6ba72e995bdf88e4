// Package numeric implements the JSON numeric-literal accumulator, the
// mantissa-overflow-driven big-decimal fallback, and the formatter used on
// the serialize side. It is a direct port of the accumulation strategy in
// oj's parser.c (VAL_NEG/NUM_DIGIT/NUM_FRAC/EXP_DIGIT) and the formatting
// strategy in oj's dump.c (digits_table, the 0001/9999 round-off probe).
package numeric

import (
	"math"
	"math/big"
	"strconv"
)

// maxExp bounds the accumulated decimal exponent, mirroring oj's MAX_EXP.
const maxExp = 4932

// pow10Table covers powers of ten for |k| <= maxPow, built by repeated
// multiplication (exact up to 1e22, +Inf past the float64 range) instead
// of calling math.Pow for the common case. Beyond maxPow, Pow is used.
const maxPow = 400

var pow10Table [maxPow + 1]float64

func init() {
	v := 1.0
	for i := 0; i <= maxPow; i++ {
		pow10Table[i] = v
		v *= 10
	}
}

func pow10(k int) float64 {
	if k < 0 {
		if -k <= maxPow {
			return 1 / pow10Table[-k]
		}
		return math.Pow(10, float64(k))
	}
	if k <= maxPow {
		return pow10Table[k]
	}
	return math.Pow(10, float64(k))
}

// Accumulator builds up a JSON numeric literal byte by byte. The zero
// value is ready to use.
type Accumulator struct {
	mantissa    int64
	negative    bool
	shift       int // digits seen after the decimal point
	exp         int
	expNegative bool
	overflow    bool
	text        []byte // verbatim source text, kept once overflow is set
	anyDigit    bool
}

// Reset prepares the accumulator for a fresh literal.
func (a *Accumulator) Reset() {
	*a = Accumulator{text: a.text[:0]}
}

// Negative marks the literal as starting with a minus sign.
func (a *Accumulator) Negative() {
	a.negative = true
	a.text = append(a.text, '-')
}

// AddDigit folds one mantissa digit (0-9) into the accumulator, switching
// to the overflow/big path if the multiply would not fit in an int64.
func (a *Accumulator) AddDigit(d byte) {
	a.text = append(a.text, d)
	a.anyDigit = true
	if a.overflow {
		return
	}
	digit := int64(d - '0')
	// Detect overflow of mantissa*10 + digit before it happens, with a
	// division bound so the product never wraps; the magnitude of
	// math.MinInt64 exceeds MaxInt64, so it is routed through this path
	// too rather than risking an undefined sign flip (spec.md's Open
	// Question 1).
	if a.mantissa > (math.MaxInt64-digit)/10 {
		a.overflow = true
		return
	}
	a.mantissa = a.mantissa*10 + digit
}

// StartFraction records the decimal point.
func (a *Accumulator) StartFraction() {
	a.text = append(a.text, '.')
}

// AddFractionDigit folds one post-decimal-point digit.
func (a *Accumulator) AddFractionDigit(d byte) {
	a.text = append(a.text, d)
	if !a.overflow {
		if a.mantissa > (math.MaxInt64-int64(d-'0'))/10 {
			a.overflow = true
			return
		}
		a.mantissa = a.mantissa*10 + int64(d-'0')
		a.shift++
	}
}

// StartExponent records the e/E marker.
func (a *Accumulator) StartExponent(neg bool) {
	a.text = append(a.text, 'e')
	if neg {
		a.text = append(a.text, '-')
	}
	a.expNegative = neg
}

// AddExponentDigit folds one exponent digit.
func (a *Accumulator) AddExponentDigit(d byte) {
	a.text = append(a.text, d)
	if a.exp < maxExp {
		a.exp = a.exp*10 + int(d-'0')
	}
}

// ExponentInRange reports whether the accumulated exponent is within the
// supported bound; callers surface NumberRange otherwise.
func (a *Accumulator) ExponentInRange() bool {
	return a.exp <= maxExp
}

// IsInteger reports whether the literal has no fraction digits and a
// zero exponent value (so 1e0 counts), and never overflowed — the case
// spec.md requires to emit add_int.
func (a *Accumulator) IsInteger() bool {
	return !a.overflow && a.shift == 0 && a.exp == 0
}

// Overflowed reports whether the mantissa exceeded 64 bits, in which case
// the big-decimal path applies.
func (a *Accumulator) Overflowed() bool {
	return a.overflow
}

// Int returns the accumulated value as an int64. Only valid when
// IsInteger is true.
func (a *Accumulator) Int() int64 {
	if a.negative {
		return -a.mantissa
	}
	return a.mantissa
}

// Float computes mantissa x 10^-shift x 10^(+-exp) using the precomputed
// power table, falling back to math.Pow beyond it.
func (a *Accumulator) Float() float64 {
	f := float64(a.mantissa)
	k := -a.shift
	if a.expNegative {
		k -= a.exp
	} else {
		k += a.exp
	}
	f *= pow10(k)
	if a.negative {
		f = -f
	}
	return f
}

// Text returns the verbatim source text accumulated so far (used for the
// big-decimal path).
func (a *Accumulator) Text() string {
	return string(a.text)
}

// BigFloat parses the verbatim text as an arbitrary-precision decimal via
// math/big, for the bigdecimal_load=bigdec option.
func (a *Accumulator) BigFloat() (*big.Float, bool) {
	f, ok := new(big.Float).SetPrec(256).SetString(a.Text())
	return f, ok
}

// digitsTable is oj's digits_table: two decimal digits per 2-byte slot,
// indexed by n*2, used to peel two digits per loop iteration.
const digitsTable = "" +
	"00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// FormatInt renders an int64 the way oj_longlong_to_string does: peeling
// two digits at a time out of the digitsTable rather than calling
// strconv once per digit.
func FormatInt(n int64) []byte {
	if n == 0 {
		return []byte{'0'}
	}
	neg := n < 0
	u := uint64(n)
	if neg {
		u = -u
	}
	var buf [24]byte
	i := len(buf)
	for u >= 100 {
		idx := (u % 100) * 2
		i -= 2
		buf[i] = digitsTable[idx]
		buf[i+1] = digitsTable[idx+1]
		u /= 100
	}
	if u < 10 {
		i--
		buf[i] = byte(u) + '0'
	} else {
		i -= 2
		buf[i] = digitsTable[u*2]
		buf[i+1] = digitsTable[u*2+1]
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return append([]byte(nil), buf[i:]...)
}

// NaNPolicy selects how non-finite floats are rendered on output.
type NaNPolicy int

const (
	// NaNRaise reports an EncodingPolicy error (the caller surfaces it).
	NaNRaise NaNPolicy = iota
	// NaNWord emits the literal words NaN/Infinity/-Infinity.
	NaNWord
	// NaNNull emits the JSON literal null.
	NaNNull
	// NaNHuge emits a sentinel huge-exponent number, matching oj's
	// historical default for non-finite floats in strict mode.
	NaNHuge
)

// IsNonFinite reports whether d is NaN or +-Inf.
func IsNonFinite(d float64) bool {
	return math.IsNaN(d) || math.IsInf(d, 0)
}

// FormatNonFinite renders d per policy. ok is false for NaNRaise, meaning
// the caller must surface an EncodingPolicy error instead of writing text.
func FormatNonFinite(d float64, policy NaNPolicy) (text string, ok bool) {
	switch policy {
	case NaNRaise:
		return "", false
	case NaNWord:
		switch {
		case math.IsNaN(d):
			return "NaN", true
		case math.IsInf(d, 1):
			return "Infinity", true
		default:
			return "-Infinity", true
		}
	case NaNNull:
		return "null", true
	case NaNHuge:
		switch {
		case math.IsNaN(d):
			return "null", true
		case math.IsInf(d, 1):
			return "1.0e+1000", true
		default:
			return "-1.0e+1000", true
		}
	}
	return "", false
}

// FormatFloat renders d the way oj_dump_float does: an integral shortcut
// for whole numbers, otherwise 16-significant-digit formatting with a
// round-trip safety net for the 0001/9999 round-off tail.
func FormatFloat(d float64) []byte {
	if d == 0 {
		if math.Signbit(d) {
			return []byte("-0.0")
		}
		return []byte("0.0")
	}
	if i := int64(d); float64(i) == d && !IsNonFinite(d) {
		return []byte(strconv.FormatFloat(d, 'f', 1, 64))
	}
	buf := strconv.AppendFloat(nil, d, 'g', 16, 64)
	if len(buf) >= 4 {
		tail := buf[len(buf)-4:]
		if string(tail) == "0001" || string(tail) == "9999" {
			// Round-off detected at the last digit: fall back to Go's
			// canonical shortest-round-trip formatter, exactly as oj
			// falls back to the runtime's own float-to-string.
			buf = strconv.AppendFloat(nil, d, 'g', -1, 64)
		}
	}
	return ensureDecimalPoint(buf)
}

// FormatFloatPrecision renders d truncated/rounded to precision fractional
// digits (1..20), the fixed-precision path Options.FloatPrecision selects
// instead of FormatFloat's shortest-round-trip default.
func FormatFloatPrecision(d float64, precision int) []byte {
	buf := strconv.AppendFloat(nil, d, 'f', precision, 64)
	return ensureDecimalPoint(buf)
}

// ensureDecimalPoint guarantees the rendered float contains a '.' or an
// exponent marker, so "5" never round-trips to an integer downstream.
func ensureDecimalPoint(buf []byte) []byte {
	for _, c := range buf {
		if c == '.' || c == 'e' || c == 'E' || c == 'n' || c == 'N' {
			return buf
		}
	}
	return append(buf, '.', '0')
}
