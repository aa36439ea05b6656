package codec

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// tableKey is the top-level key holding the character mapping in the
// cipher table document.
const tableKey = "cipher"

// Placeholder keys kept literal in the table file so it stays editable by
// hand. They normalise to the real whitespace characters during load.
var placeholders = map[string]rune{
	"SPACE":   ' ',
	"TAB":     '\t',
	"NEWLINE": '\n',
}

// ErrEmptyTable indicates the table document contained no usable entries.
var ErrEmptyTable = errors.New("cipher table has no entries")

// Table holds the character-to-token mapping and its derived inverse.
// Both maps are fixed after construction, so a Table is safe to share
// between any number of codecs and goroutines.
type Table struct {
	code     map[rune]string
	reverse  map[string]rune
	tokenLen int
}

// LoadTable reads a cipher table document from disk. A missing or
// malformed file is an error: the codec must not run half-initialised.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cipher table %s: %w", path, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse cipher table %s: %w", path, err)
	}
	return t, nil
}

// ParseTable builds a Table from a raw JSON document. Entries are applied
// in document order; when two characters share a token, the entry loaded
// last wins in the reverse table. That resolution is deterministic but it
// means the mapping is assumed, not verified, to be injective.
func ParseTable(data []byte) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("not valid JSON")
	}
	mapping := gjson.GetBytes(data, tableKey)
	if !mapping.IsObject() {
		return nil, fmt.Errorf("missing %q object", tableKey)
	}

	t := &Table{
		code:    make(map[rune]string),
		reverse: make(map[string]rune),
	}
	var entryErr error
	mapping.ForEach(func(key, value gjson.Result) bool {
		ch, err := tableRune(key.String())
		if err != nil {
			entryErr = err
			return false
		}
		if value.Type != gjson.String {
			entryErr = fmt.Errorf("entry %q: token must be a string", key.String())
			return false
		}
		token := value.String()
		n := utf8.RuneCountInString(token)
		if n == 0 {
			entryErr = fmt.Errorf("entry %q: empty token", key.String())
			return false
		}
		if t.tokenLen == 0 {
			t.tokenLen = n
		} else if n != t.tokenLen {
			entryErr = fmt.Errorf("entry %q: token length %d, table uses %d", key.String(), n, t.tokenLen)
			return false
		}
		t.code[ch] = token
		t.reverse[token] = ch
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}
	if len(t.code) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

func tableRune(key string) (rune, error) {
	if ch, ok := placeholders[key]; ok {
		return ch, nil
	}
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || r == utf8.RuneError && size == 1 {
		return 0, fmt.Errorf("entry %q: invalid character key", key)
	}
	if size != len(key) {
		return 0, fmt.Errorf("entry %q: character keys must be a single character", key)
	}
	return r, nil
}

// Token returns the token mapped to the character, if any.
func (t *Table) Token(ch rune) (string, bool) {
	token, ok := t.code[ch]
	return token, ok
}

// Rune returns the character a token decodes to, if any.
func (t *Table) Rune(token string) (rune, bool) {
	ch, ok := t.reverse[token]
	return ch, ok
}

// TokenLen reports the fixed token length, in characters.
func (t *Table) TokenLen() int {
	return t.tokenLen
}

// Len reports the number of mapped characters.
func (t *Table) Len() int {
	return len(t.code)
}
