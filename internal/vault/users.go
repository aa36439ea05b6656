package vault

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yuuruii/yrzvault/internal/logging"
)

// User is the public view of a registered operator.
type User struct {
	ID        string
	Username  string
	Email     string
	Avatar    string
	CreatedAt time.Time
}

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        string    `json:"email,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *userRecord) view() User {
	return User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Avatar:    r.Avatar,
		CreatedAt: r.CreatedAt,
	}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func passwordMatches(hash, password string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(hashPassword(password))) == 1
}

// Register creates a new user and persists the credentials store.
func (v *Vault) Register(username, password, email string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return User{}, errors.New("username is required")
	}
	if password == "" {
		return User{}, errors.New("password is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.users[username]; exists {
		v.emit(logging.EventUserRegister, logging.DecisionDeny, "", map[string]any{
			"username": username,
			"reason":   "username taken",
		})
		return User{}, ErrUserExists
	}
	rec := &userRecord{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashPassword(password),
		Email:        email,
		CreatedAt:    v.now(),
	}
	v.users[username] = rec
	if err := v.saveUsers(); err != nil {
		delete(v.users, username)
		return User{}, err
	}
	v.emit(logging.EventUserRegister, logging.DecisionAllow, rec.ID, map[string]any{
		"username": username,
	})
	return rec.view(), nil
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords produce the same error.
func (v *Vault) Authenticate(username, password string) (User, error) {
	username = strings.TrimSpace(username)

	// The hash comparison and the snapshot both read the shared record, so
	// they stay under the lock; a concurrent rotation must not interleave.
	v.mu.RLock()
	rec, found := v.users[username]
	authed := found && passwordMatches(rec.PasswordHash, password)
	var user User
	if authed {
		user = rec.view()
	}
	v.mu.RUnlock()

	if !authed {
		v.emit(logging.EventUserLogin, logging.DecisionDeny, "", map[string]any{
			"username": username,
		})
		return User{}, ErrInvalidCredentials
	}
	v.emit(logging.EventUserLogin, logging.DecisionAllow, user.ID, map[string]any{
		"username": username,
	})
	return user, nil
}

// HasUsers reports whether anyone is registered yet, so callers can tell a
// first run from a locked-out one.
func (v *Vault) HasUsers() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.users) > 0
}

// Usernames returns every registered username in sorted order. Only the
// handles are exposed, never the records behind them.
func (v *Vault) Usernames() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.users))
	for name := range v.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupUser returns the user registered under username.
func (v *Vault) LookupUser(username string) (User, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.users[strings.TrimSpace(username)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return rec.view(), nil
}

// UpdatePassword rotates a user's password after verifying the current one.
func (v *Vault) UpdatePassword(username, oldPassword, newPassword string) error {
	username = strings.TrimSpace(username)
	if newPassword == "" {
		return errors.New("new password is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.users[username]
	if !ok || !passwordMatches(rec.PasswordHash, oldPassword) {
		v.emit(logging.EventPasswordChange, logging.DecisionDeny, "", map[string]any{
			"username": username,
		})
		return ErrInvalidCredentials
	}
	previous := rec.PasswordHash
	rec.PasswordHash = hashPassword(newPassword)
	if err := v.saveUsers(); err != nil {
		rec.PasswordHash = previous
		return err
	}
	v.emit(logging.EventPasswordChange, logging.DecisionAllow, rec.ID, map[string]any{
		"username": username,
	})
	return nil
}

// UpdateEmail replaces the user's contact address.
func (v *Vault) UpdateEmail(username, email string) error {
	return v.updateProfile(username, func(rec *userRecord) {
		rec.Email = strings.TrimSpace(email)
	}, "email")
}

// SetAvatar records the path of the user's avatar image. The file itself is
// managed by the caller; the vault only keeps the reference.
func (v *Vault) SetAvatar(username, path string) error {
	return v.updateProfile(username, func(rec *userRecord) {
		rec.Avatar = strings.TrimSpace(path)
	}, "avatar")
}

func (v *Vault) updateProfile(username string, apply func(*userRecord), field string) error {
	username = strings.TrimSpace(username)

	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.users[username]
	if !ok {
		return ErrUserNotFound
	}
	snapshot := *rec
	apply(rec)
	if err := v.saveUsers(); err != nil {
		*rec = snapshot
		return err
	}
	v.emit(logging.EventProfileUpdate, logging.DecisionAllow, rec.ID, map[string]any{
		"username": username,
		"field":    field,
	})
	return nil
}
