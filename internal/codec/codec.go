package codec

import "strings"

// Escape markers wrap characters that have no table entry so they survive
// a round trip unmodified. The markers are not themselves escaped; a table
// that leaves them unmapped accepts the resulting ambiguity.
const (
	escOpen  = '['
	escMark  = '?'
	escClose = ']'
)

// Codec performs the substitution transform against one table. The zero
// value is not usable; construct with New.
type Codec struct {
	table *Table
}

// New returns a codec backed by the provided table.
func New(table *Table) *Codec {
	return &Codec{table: table}
}

// Encode replaces every mapped character with its token and wraps every
// unmapped character in an escape sequence. It is a pure function of the
// input and the table: no input fails, and Encode("") == "".
func (c *Codec) Encode(text string) string {
	var b strings.Builder
	for _, r := range text {
		if token, ok := c.table.code[r]; ok {
			b.WriteString(token)
			continue
		}
		b.WriteRune(escOpen)
		b.WriteRune(escMark)
		b.WriteRune(r)
		b.WriteRune(escClose)
	}
	return b.String()
}

// Decode reverses Encode on a best-effort basis. Each cursor position is
// resolved by exactly one of three branches: a complete escape sequence is
// copied through verbatim, a token-length window found in the reverse table
// becomes its character, and anything else is copied as a literal so that
// corrupted or partially encoded input degrades instead of failing. An
// unterminated escape takes the literal branch, opening bracket included.
func (c *Codec) Decode(text string) string {
	runes := []rune(text)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		if runes[i] == escOpen && i+2 < len(runes) && runes[i+1] == escMark {
			if end := indexRune(runes, escClose, i); end >= 0 {
				b.WriteString(string(runes[i+2 : end]))
				i = end + 1
				continue
			}
		}
		if n := c.table.tokenLen; n > 0 && i+n <= len(runes) {
			if ch, ok := c.table.reverse[string(runes[i:i+n])]; ok {
				b.WriteRune(ch)
				i += n
				continue
			}
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

func indexRune(runes []rune, target rune, from int) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
