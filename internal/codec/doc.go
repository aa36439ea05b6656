// Package codec implements the yrz substitution cipher: a reversible
// character-to-token obfuscation driven by a static table loaded once at
// startup. It is not cryptography; it exists to keep stored credentials
// from being readable at a glance in the vault's JSON files.
package codec
