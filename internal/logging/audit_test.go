package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmitWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewAuditLogger("vault", WithoutStdout(), WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	err = logger.Emit(AuditEvent{
		EventType: EventUserLogin,
		Decision:  DecisionAllow,
		UserID:    "uid-123",
		Metadata:  map[string]any{"username": "yuuruii"},
	})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var event AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if event.Component != "vault" {
		t.Errorf("component = %q, want %q", event.Component, "vault")
	}
	if event.EventType != EventUserLogin {
		t.Errorf("event type = %q, want %q", event.EventType, EventUserLogin)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp was not stamped")
	}
	if event.Metadata["username"] != "yuuruii" {
		t.Errorf("metadata lost: %#v", event.Metadata)
	}
}

func TestEmitRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewAuditLogger("vault", WithoutStdout(), WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}

	err = logger.Emit(AuditEvent{
		EventType: EventPasswordChange,
		Decision:  DecisionDeny,
		Reason:    "rejected password=hunter22 for bob@example.org",
		Metadata:  map[string]any{"password": "hunter22"},
	})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "hunter22") {
		t.Errorf("password leaked into audit output: %s", out)
	}
	if strings.Contains(out, "bob@example.org") {
		t.Errorf("email leaked into audit output: %s", out)
	}
}

func TestWithFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewAuditLogger("vault", WithoutStdout(), WithFile(path))
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := logger.Emit(AuditEvent{EventType: EventAccountAccess, Decision: DecisionInfo}); err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line is not valid JSON: %s", line)
		}
	}
}

func TestWithComponentSharesCore(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewAuditLogger("vault", WithoutStdout(), WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	child := logger.WithComponent("users")
	if err := child.Emit(AuditEvent{EventType: EventUserRegister, Decision: DecisionAllow}); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var event AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if event.Component != "users" {
		t.Errorf("component = %q, want %q", event.Component, "users")
	}
}

func TestEmitPreservesExplicitTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewAuditLogger("vault", WithoutStdout(), WithWriter(&buf))
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	if err := logger.Emit(AuditEvent{Timestamp: at, EventType: EventTableLoad}); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	var event AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !event.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", event.Timestamp, at)
	}
}

func TestNoWritersIsAnError(t *testing.T) {
	if _, err := NewAuditLogger("vault", WithoutStdout()); err == nil {
		t.Fatal("expected an error when no writers remain")
	}
}
