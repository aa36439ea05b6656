// Package vault stores users, services, and per-service accounts for a
// single local operator. Sensitive account fields are passed through the
// substitution codec before they touch disk, so the JSON stores never hold
// credentials in the clear.
package vault

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/yuuruii/yrzvault/internal/codec"
	"github.com/yuuruii/yrzvault/internal/logging"
)

var (
	// ErrUserExists is returned when registering a username already in use.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on any authentication failure. It
	// deliberately does not distinguish a bad password from an unknown user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServiceNotFound is returned when the referenced service does not
	// exist or belongs to a different user.
	ErrServiceNotFound = errors.New("service not found")
	// ErrAccountNotFound is returned when the referenced account does not
	// exist or belongs to a different user.
	ErrAccountNotFound = errors.New("account not found")
)

// Vault owns the three JSON stores under a data directory and serialises
// access to them.
type Vault struct {
	mu     sync.RWMutex
	dir    string
	codec  *codec.Codec
	logger *logging.AuditLogger
	now    func() time.Time

	users    map[string]*userRecord    // keyed by username
	services map[string]*serviceRecord // keyed by service ID
	accounts map[string]*accountRecord // keyed by account ID
}

// Option adjusts vault construction.
type Option func(*Vault)

// WithAuditLogger routes vault events to the provided audit logger.
func WithAuditLogger(logger *logging.AuditLogger) Option {
	return func(v *Vault) {
		v.logger = logger
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}

// Open loads the vault stores from dir, creating the directory when it does
// not exist yet. A store file that exists but cannot be parsed is an error:
// silently starting over would discard the operator's credentials.
func Open(dir string, c *codec.Codec, opts ...Option) (*Vault, error) {
	if dir == "" {
		return nil, errors.New("vault directory is required")
	}
	if c == nil {
		return nil, errors.New("codec is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create vault directory %s: %w", dir, err)
	}

	v := &Vault{
		dir:      dir,
		codec:    c,
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[string]*userRecord),
		services: make(map[string]*serviceRecord),
		accounts: make(map[string]*accountRecord),
	}
	for _, opt := range opts {
		opt(v)
	}

	if err := v.loadAll(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vault) emit(event logging.EventType, decision logging.Decision, userID string, metadata map[string]any) {
	if v.logger == nil {
		return
	}
	_ = v.logger.Emit(logging.AuditEvent{
		EventType: event,
		Decision:  decision,
		UserID:    userID,
		Metadata:  metadata,
	})
}

// userByID scans for a user record by UID. The store is keyed by username
// because that is the login handle; UID lookups are rare and the set is tiny.
func (v *Vault) userByID(uid string) (*userRecord, bool) {
	for _, rec := range v.users {
		if rec.ID == uid {
			return rec, true
		}
	}
	return nil, false
}
