// Package redact scrubs credentials and PII from text bound for the audit
// trail. Every reason string and metadata value the vault logs passes
// through here before it is encoded.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedSecret = "[REDACTED_SECRET]"

var (
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	kvSecretRe   = regexp.MustCompile(`(?i)((?:pass|password|secret|token|key)[-_ ]*(?:word|hash)?\s*[:=]\s*)(['"]?)(\S{4,})(['"]?)`)
	longDigestRe = regexp.MustCompile(`\b[A-Fa-f0-9]{32,}\b`)
)

// secretKeys are metadata keys whose values are masked wholesale instead of
// pattern-matched, so a careless call site cannot leak them.
var secretKeys = map[string]struct{}{
	"password":      {},
	"old_password":  {},
	"new_password":  {},
	"password_hash": {},
}

// String redacts email addresses, password-style key/value pairs, and long
// hex digests from the provided string.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := emailRe.ReplaceAllString(in, "[REDACTED_EMAIL]")
	masked = kvSecretRe.ReplaceAllString(masked, `$1$2`+redactedSecret+`$4`)
	masked = longDigestRe.ReplaceAllString(masked, redactedSecret)
	return masked
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case fmt.Stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	default:
		return value
	}
}

// Map redacts sensitive values within a map of arbitrary values.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, secret := secretKeys[strings.ToLower(k)]; secret {
			out[k] = redactedSecret
			continue
		}
		out[k] = Interface(v)
	}
	return out
}

// MapString redacts sensitive values within a string map.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if _, secret := secretKeys[strings.ToLower(k)]; secret {
			out[k] = redactedSecret
			continue
		}
		out[k] = String(v)
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}
