package redact

import (
	"strings"
	"testing"
)

func TestStringPatterns(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		banned string
		keep   string
	}{
		{"email", "contact alice@example.com for access", "alice@example.com", "contact"},
		{"kv password", "password=hunter22 rejected", "hunter22", "rejected"},
		{"kv with quotes", `secret: "tops3cret!" stored`, "tops3cret!", "stored"},
		{"sha256 digest", "digest " + strings.Repeat("ab", 32) + " mismatch", strings.Repeat("ab", 32), "mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(tt.input)
			if strings.Contains(got, tt.banned) {
				t.Errorf("String(%q) = %q, still contains %q", tt.input, got, tt.banned)
			}
			if !strings.Contains(got, tt.keep) {
				t.Errorf("String(%q) = %q, lost surrounding text %q", tt.input, got, tt.keep)
			}
		})
	}
}

func TestStringLeavesPlainTextAlone(t *testing.T) {
	in := "service netflix created for user yuuruii"
	if got := String(in); got != in {
		t.Errorf("String(%q) = %q, want unchanged", in, got)
	}
}

func TestMapMasksSecretKeys(t *testing.T) {
	masked := Map(map[string]any{
		"username":     "yuuruii",
		"password":     "plaintext-here",
		"new_password": "other-plaintext",
		"note":         "mail bob@example.org",
	})
	if masked["username"] != "yuuruii" {
		t.Errorf("username should survive, got %#v", masked["username"])
	}
	if masked["password"] != redactedSecret {
		t.Errorf("password not masked: %#v", masked["password"])
	}
	if masked["new_password"] != redactedSecret {
		t.Errorf("new_password not masked: %#v", masked["new_password"])
	}
	if note, _ := masked["note"].(string); strings.Contains(note, "bob@example.org") {
		t.Errorf("email survived in nested value: %q", note)
	}
}

func TestMapStringMasksSecretKeys(t *testing.T) {
	masked := MapString(map[string]string{
		"password_hash": strings.Repeat("ef", 32),
		"service":       "gmail",
	})
	if masked["password_hash"] != redactedSecret {
		t.Errorf("password_hash not masked: %q", masked["password_hash"])
	}
	if masked["service"] != "gmail" {
		t.Errorf("service changed: %q", masked["service"])
	}
}

func TestNilAndEmpty(t *testing.T) {
	if got := Map(nil); got != nil {
		t.Errorf("Map(nil) = %#v, want nil", got)
	}
	if got := Map(map[string]any{}); got != nil {
		t.Errorf("Map(empty) = %#v, want nil", got)
	}
	if got := MapString(nil); got != nil {
		t.Errorf("MapString(nil) = %#v, want nil", got)
	}
	if got := Slice(nil); got != nil {
		t.Errorf("Slice(nil) = %#v, want nil", got)
	}
	if got := String(""); got != "" {
		t.Errorf("String(\"\") = %q", got)
	}
}
