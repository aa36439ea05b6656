package codec

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTable(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yrz_codek.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write table file: %v", err)
	}
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeTable(t, testTableJSON)
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if table.Len() != 7 {
		t.Errorf("expected 7 entries, got %d", table.Len())
	}
	if table.TokenLen() != 3 {
		t.Errorf("expected token length 3, got %d", table.TokenLen())
	}
	if token, ok := table.Token('a'); !ok || token != "*k1" {
		t.Errorf("Token('a') = %q, %v", token, ok)
	}
	if ch, ok := table.Rune("*k1"); !ok || ch != 'a' {
		t.Errorf("Rune(*k1) = %q, %v", ch, ok)
	}
}

func TestLoadTablePlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		ch    rune
		token string
	}{
		{"space", ' ', "==-"},
		{"tab", '\t', "##-"},
		{"newline", '\n', "@@-"},
	}

	path := writeTable(t, testTableJSON)
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := table.Token(tt.ch)
			if !ok || token != tt.token {
				t.Errorf("Token(%q) = %q, %v; want %q", tt.ch, token, ok, tt.token)
			}
		})
	}
	if _, ok := table.Token('S'); ok {
		t.Error("placeholder key leaked into the table as a literal character")
	}
}

func TestLoadTableIdempotent(t *testing.T) {
	path := writeTable(t, testTableJSON)
	first, err := LoadTable(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := LoadTable(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("loading the same file twice produced different tables")
	}
}

// Two characters sharing a token is a latent table bug; the reverse table
// resolves it in favour of the entry that appears last in the document.
func TestDuplicateTokenLastEntryWins(t *testing.T) {
	table, err := ParseTable([]byte(`{"cipher": {"a": "001", "b": "001"}}`))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	ch, ok := table.Rune("001")
	if !ok || ch != 'b' {
		t.Errorf("Rune(001) = %q, %v; want 'b'", ch, ok)
	}
	c := New(table)
	if got := c.Decode("001"); got != "b" {
		t.Errorf("Decode(001) = %q, want %q", got, "b")
	}
	// Encoding still maps both characters to the shared token.
	if got := c.Encode("a"); got != "001" {
		t.Errorf("Encode(a) = %q, want %q", got, "001")
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantSub  string
	}{
		{"invalid json", `{"cipher": `, "not valid JSON"},
		{"missing key", `{"table": {"a": "001"}}`, `missing "cipher" object`},
		{"key not object", `{"cipher": "nope"}`, `missing "cipher" object`},
		{"empty mapping", `{"cipher": {}}`, "no entries"},
		{"multi-character key", `{"cipher": {"ab": "001"}}`, "single character"},
		{"empty token", `{"cipher": {"a": ""}}`, "empty token"},
		{"non-string token", `{"cipher": {"a": 7}}`, "must be a string"},
		{"mixed token length", `{"cipher": {"a": "001", "b": "0002"}}`, "token length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTable(t, tt.contents)
			_, err := LoadTable(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected an error for a missing table file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped fs.ErrNotExist, got %v", err)
	}
}

func TestParseTableEmptyMappingSentinel(t *testing.T) {
	_, err := ParseTable([]byte(`{"cipher": {}}`))
	if !errors.Is(err, ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}
