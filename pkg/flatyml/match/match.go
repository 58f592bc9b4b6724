// Package match extracts key/value assignments from flat YAML-like text.
//
// Two assignment shapes are recognized:
//
//	key: -123
//	key: "some value"
//
// Keys are made of ASCII letters, digits and underscores and must open a
// line or follow a space or tab. Quoted values may contain the same characters plus spaces.
// A value must be followed by whitespace, a comment or the end of the line,
// so several assignments may share a line and a trailing "# ..." comment is
// allowed. Anything else (comment text, blank lines, floats, booleans,
// unquoted strings, nested structure) is skipped without error.
package match

import (
	"bytes"
	"regexp"

	"github.com/randalmurphal/flatyml/pkg/flatyml/index"
)

const (
	keyGroup   = 1
	valueGroup = 2
	stringAlt  = 3
)

var (
	intPattern = regexp.MustCompile(
		`(?m)\b([A-Za-z0-9_]+)[ \t]*:[ \t]*(-?[0-9]+)(?:[ \t]|\r?$)`)
	stringPattern = regexp.MustCompile(
		`(?m)\b([A-Za-z0-9_]+)[ \t]*:[ \t]*"([A-Za-z0-9_ ]*)"(?:[ \t]|\r?$)`)

	// linePattern accepts either shape; group 2 holds an integer and
	// group 3 a quoted string.
	linePattern = regexp.MustCompile(
		`(?m)\b([A-Za-z0-9_]+)[ \t]*:[ \t]*(?:(-?[0-9]+)|"([A-Za-z0-9_ ]*)")(?:[ \t]|\r?$)`)
)

// Match is one recognized assignment.
type Match struct {
	Key  string
	Raw  string // value text, without quotes
	Kind index.Kind
	Line int // 1-based line number in the scanned buffer
}

// Value converts the raw text according to Kind.
func (m Match) Value() index.Value {
	if m.Kind == index.KindInt {
		return index.IntValue(ParseInt(m.Raw))
	}
	return index.StringValue(m.Raw)
}

// Scan returns every non-overlapping assignment of the given kind, left to right.
func Scan(buf []byte, kind index.Kind) []Match {
	re := intPattern
	if kind == index.KindString {
		re = stringPattern
	}

	lines := newLineCounter(buf)
	var out []Match
	for _, loc := range re.FindAllSubmatchIndex(blankComments(buf), -1) {
		if !keyBoundary(buf, loc[0]) {
			continue
		}
		out = append(out, Match{
			Key:  string(buf[loc[2*keyGroup]:loc[2*keyGroup+1]]),
			Raw:  string(buf[loc[2*valueGroup]:loc[2*valueGroup+1]]),
			Kind: kind,
			Line: lines.at(loc[0]),
		})
	}
	return out
}

// TwoPass returns all integer assignments in document order followed by
// all string assignments in document order.
func TwoPass(buf []byte) []Match {
	return append(Scan(buf, index.KindInt), Scan(buf, index.KindString)...)
}

// SinglePass returns every assignment of either kind in document order.
func SinglePass(buf []byte) []Match {
	lines := newLineCounter(buf)
	var out []Match
	for _, loc := range linePattern.FindAllSubmatchIndex(blankComments(buf), -1) {
		if !keyBoundary(buf, loc[0]) {
			continue
		}
		m := Match{
			Key:  string(buf[loc[2*keyGroup]:loc[2*keyGroup+1]]),
			Line: lines.at(loc[0]),
		}
		if loc[2*valueGroup] >= 0 {
			m.Kind = index.KindInt
			m.Raw = string(buf[loc[2*valueGroup]:loc[2*valueGroup+1]])
		} else {
			m.Kind = index.KindString
			m.Raw = string(buf[loc[2*stringAlt]:loc[2*stringAlt+1]])
		}
		out = append(out, m)
	}
	return out
}

// ParseInt converts decimal text the way C's atoi does: an optional leading
// minus, then digits up to the first non-digit. Overflow wraps and keeps the
// low-order bits of the native int.
func ParseInt(s string) int {
	neg := false
	i := 0
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// keyBoundary reports whether a key may start at offset i: at the start of
// a line, or after a space or tab that does not follow a colon. This rejects
// fragments in value position such as the "12:30" in "at: 12:30", and keys
// glued to other text such as the "b" in "a.b: 1".
func keyBoundary(buf []byte, i int) bool {
	if i == 0 || buf[i-1] == '\n' {
		return true
	}
	if buf[i-1] != ' ' && buf[i-1] != '\t' {
		return false
	}
	for j := i - 1; j >= 0; j-- {
		switch buf[j] {
		case ' ', '\t':
			continue
		case ':':
			return false
		}
		return true
	}
	return true
}

// blankComments returns buf with every comment replaced by spaces, keeping
// byte offsets intact. A comment starts at a '#' that opens a line or
// follows a space or tab, and runs to the end of the line. buf itself is
// returned when it holds no '#'.
func blankComments(buf []byte) []byte {
	if bytes.IndexByte(buf, '#') < 0 {
		return buf
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	inComment := false
	for i, b := range out {
		switch {
		case b == '\n':
			inComment = false
		case inComment:
			out[i] = ' '
		case b == '#' && (i == 0 || out[i-1] == ' ' || out[i-1] == '\t' || out[i-1] == '\n'):
			inComment = true
			out[i] = ' '
		}
	}
	return out
}

// lineCounter maps increasing byte offsets to line numbers.
type lineCounter struct {
	buf  []byte
	pos  int
	line int
}

func newLineCounter(buf []byte) *lineCounter {
	return &lineCounter{buf: buf, line: 1}
}

// at must be called with non-decreasing offsets.
func (c *lineCounter) at(offset int) int {
	for ; c.pos < offset; c.pos++ {
		if c.buf[c.pos] == '\n' {
			c.line++
		}
	}
	return c.line
}
