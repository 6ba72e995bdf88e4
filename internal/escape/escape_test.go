package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func escapeString(mode Mode, s string) string {
	sc := Scanner{Mode: mode}
	return string(sc.AppendEscaped(nil, []byte(s)))
}

func TestJSONModeCopiesRawUTF8(t *testing.T) {
	assert.Equal(t, "a\xC3\xA9b", escapeString(JSON, "a\xC3\xA9b"))
}

func TestJSONModeEscapesControlAndQuote(t *testing.T) {
	assert.Equal(t, `a\nb\tc\"d`, escapeString(JSON, "a\nb\tc\"d"))
}

func TestJSONSlashEscapedEscapesSlash(t *testing.T) {
	assert.Equal(t, `\/x`, escapeString(JSONSlashEscaped, "/x"))
	assert.Equal(t, "/x", escapeString(JSON, "/x"))
}

func TestASCIIOnlyEscapesMultiByteUTF8(t *testing.T) {
	assert.Equal(t, `\u00e9`, escapeString(ASCIIOnly, "é"))
}

func TestASCIIOnlyEscapesSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE
	assert.Equal(t, `\ud83d\ude00`, escapeString(ASCIIOnly, "\U0001F600"))
}

func TestXSSSafeEscapesAngleBracketsAndAmp(t *testing.T) {
	assert.Equal(t, `\u003c/x\u003e`, escapeString(XSSSafe, "</x>"))
	assert.Equal(t, `a\u0026b`, escapeString(XSSSafe, "a&b"))
}

func TestNewlinePreservingKeepsRawNewline(t *testing.T) {
	assert.Equal(t, "a\nb", escapeString(NewlinePreserving, "a\nb"))
}

func TestEscapedLenMatchesActualOutput(t *testing.T) {
	inputs := []string{
		"plain ascii",
		"a\nb\tc\"d\\e",
		"a\xC3\xA9b",
		"\U0001F600 emoji",
		"</x>&y",
		string(make([]byte, 40)), // a lane-width-spanning run of control bytes
	}
	for _, mode := range []Mode{JSON, JSONSlashEscaped, ASCIIOnly, XSSSafe, UnicodeXSSSafe, NewlinePreserving} {
		for _, in := range inputs {
			sc := Scanner{Mode: mode}
			want := sc.EscapedLen([]byte(in))
			got := len(sc.AppendEscaped(nil, []byte(in)))
			assert.Equal(t, want, got, "mode=%v input=%q", mode, in)
		}
	}
}

func TestLaneBoundarySpanningAllCopyRun(t *testing.T) {
	in := make([]byte, 33)
	for i := range in {
		in[i] = 'x'
	}
	out := escapeString(JSON, string(in))
	assert.Equal(t, string(in), out)
}
