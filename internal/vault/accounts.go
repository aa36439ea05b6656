package vault

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yuuruii/yrzvault/internal/logging"
)

// serviceLoginMarker is the plaintext stored (encoded) for accounts that
// sign in through the service itself rather than a password.
const serviceLoginMarker = "true"

// Account is the decoded view of a stored account.
type Account struct {
	ID           string
	UID          string
	ServiceID    string
	Name         string
	Username     string
	Password     string
	Email        string
	ServiceLogin bool
	Icon         string
	Images       []string
	// DisplayName is the first non-empty of Name, Username, Email.
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// accountRecord is the on-disk shape. Sensitive fields hold codec output,
// never plaintext.
type accountRecord struct {
	ID           string    `json:"id"`
	UID          string    `json:"uid"`
	ServiceID    string    `json:"service_id"`
	Name         string    `json:"name,omitempty"`
	Username     string    `json:"username,omitempty"`
	Password     string    `json:"password,omitempty"`
	Email        string    `json:"email,omitempty"`
	ServiceLogin string    `json:"service_login,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	Images       []string  `json:"images,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateAccountParams carries the plaintext fields for a new account.
type CreateAccountParams struct {
	UID          string
	ServiceID    string
	Name         string
	Username     string
	Password     string
	Email        string
	ServiceLogin bool
	Icon         string
	Images       []string
}

// UpdateAccountParams names the fields to change; nil pointers leave the
// stored value untouched.
type UpdateAccountParams struct {
	Name         *string
	Username     *string
	Password     *string
	Email        *string
	ServiceLogin *bool
	Icon         *string
	Images       *[]string
}

func (v *Vault) encodeField(plain string) string {
	if plain == "" {
		return ""
	}
	return v.codec.Encode(plain)
}

// decodeField is best-effort: unrecognised tokens stay literal, so a field
// written under a different table still comes back readable.
func (v *Vault) decodeField(stored string) string {
	if stored == "" {
		return ""
	}
	return v.codec.Decode(stored)
}

func (v *Vault) decodeAccount(rec *accountRecord) Account {
	acc := Account{
		ID:           rec.ID,
		UID:          rec.UID,
		ServiceID:    rec.ServiceID,
		Name:         v.decodeField(rec.Name),
		Username:     v.decodeField(rec.Username),
		Password:     v.decodeField(rec.Password),
		Email:        v.decodeField(rec.Email),
		ServiceLogin: v.decodeField(rec.ServiceLogin) == serviceLoginMarker,
		Icon:         v.decodeField(rec.Icon),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if len(rec.Images) > 0 {
		acc.Images = append([]string(nil), rec.Images...)
	}
	acc.DisplayName = firstNonEmpty(acc.Name, acc.Username, acc.Email)
	return acc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func validateAccountFields(username, email, password string, serviceLogin bool) error {
	if username == "" && email == "" {
		return errors.New("a username or an email is required")
	}
	if password == "" && !serviceLogin {
		return errors.New("a password is required unless the account signs in through the service")
	}
	return nil
}

// CreateAccount stores a new account under one of the user's services.
func (v *Vault) CreateAccount(p CreateAccountParams) (Account, error) {
	p.UID = strings.TrimSpace(p.UID)
	p.ServiceID = strings.TrimSpace(p.ServiceID)
	p.Name = strings.TrimSpace(p.Name)
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.UID == "" {
		return Account{}, errors.New("user id is required")
	}
	if p.ServiceID == "" {
		return Account{}, errors.New("service id is required")
	}
	if err := validateAccountFields(p.Username, p.Email, p.Password, p.ServiceLogin); err != nil {
		return Account{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	svc, ok := v.services[p.ServiceID]
	if !ok || svc.UID != p.UID {
		return Account{}, ErrServiceNotFound
	}

	now := v.now()
	rec := &accountRecord{
		ID:        p.UID + "_" + ulid.Make().String(),
		UID:       p.UID,
		ServiceID: p.ServiceID,
		Name:      v.encodeField(p.Name),
		Username:  v.encodeField(p.Username),
		Password:  v.encodeField(p.Password),
		Email:     v.encodeField(p.Email),
		Icon:      v.encodeField(p.Icon),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.ServiceLogin {
		rec.ServiceLogin = v.encodeField(serviceLoginMarker)
	}
	if len(p.Images) > 0 {
		rec.Images = append([]string(nil), p.Images...)
	}

	v.accounts[rec.ID] = rec
	if err := v.saveAccounts(); err != nil {
		delete(v.accounts, rec.ID)
		return Account{}, err
	}
	v.emit(logging.EventAccountCreate, logging.DecisionAllow, p.UID, map[string]any{
		"account_id": rec.ID,
		"service_id": p.ServiceID,
	})
	return v.decodeAccount(rec), nil
}

// ListAccounts returns the user's decoded accounts, oldest first. When
// serviceID is non-empty only that service's accounts are returned.
func (v *Vault) ListAccounts(uid, serviceID string) ([]Account, error) {
	uid = strings.TrimSpace(uid)
	serviceID = strings.TrimSpace(serviceID)

	v.mu.RLock()
	defer v.mu.RUnlock()
	if serviceID != "" {
		svc, ok := v.services[serviceID]
		if !ok || svc.UID != uid {
			return nil, ErrServiceNotFound
		}
	}
	var out []Account
	for _, rec := range v.accounts {
		if rec.UID != uid {
			continue
		}
		if serviceID != "" && rec.ServiceID != serviceID {
			continue
		}
		out = append(out, v.decodeAccount(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	v.emit(logging.EventAccountAccess, logging.DecisionAllow, uid, map[string]any{
		"service_id": serviceID,
		"count":      len(out),
	})
	return out, nil
}

// GetAccount returns a single decoded account owned by uid.
func (v *Vault) GetAccount(uid, accountID string) (Account, error) {
	uid = strings.TrimSpace(uid)

	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.accounts[strings.TrimSpace(accountID)]
	if !ok || rec.UID != uid {
		return Account{}, ErrAccountNotFound
	}
	v.emit(logging.EventAccountAccess, logging.DecisionAllow, uid, map[string]any{
		"account_id": rec.ID,
		"service_id": rec.ServiceID,
	})
	return v.decodeAccount(rec), nil
}

// UpdateAccount applies a partial update to one of the user's accounts.
func (v *Vault) UpdateAccount(uid, accountID string, p UpdateAccountParams) (Account, error) {
	uid = strings.TrimSpace(uid)

	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.accounts[strings.TrimSpace(accountID)]
	if !ok || rec.UID != uid {
		return Account{}, ErrAccountNotFound
	}

	current := v.decodeAccount(rec)
	if p.Name != nil {
		current.Name = strings.TrimSpace(*p.Name)
	}
	if p.Username != nil {
		current.Username = strings.TrimSpace(*p.Username)
	}
	if p.Password != nil {
		current.Password = *p.Password
	}
	if p.Email != nil {
		current.Email = strings.TrimSpace(*p.Email)
	}
	if p.ServiceLogin != nil {
		current.ServiceLogin = *p.ServiceLogin
	}
	if p.Icon != nil {
		current.Icon = strings.TrimSpace(*p.Icon)
	}
	if p.Images != nil {
		current.Images = append([]string(nil), (*p.Images)...)
	}
	if err := validateAccountFields(current.Username, current.Email, current.Password, current.ServiceLogin); err != nil {
		return Account{}, err
	}

	snapshot := *rec
	rec.Name = v.encodeField(current.Name)
	rec.Username = v.encodeField(current.Username)
	rec.Password = v.encodeField(current.Password)
	rec.Email = v.encodeField(current.Email)
	rec.Icon = v.encodeField(current.Icon)
	rec.ServiceLogin = ""
	if current.ServiceLogin {
		rec.ServiceLogin = v.encodeField(serviceLoginMarker)
	}
	rec.Images = nil
	if len(current.Images) > 0 {
		rec.Images = append([]string(nil), current.Images...)
	}
	rec.UpdatedAt = v.now()

	if err := v.saveAccounts(); err != nil {
		*rec = snapshot
		return Account{}, err
	}
	v.emit(logging.EventAccountUpdate, logging.DecisionAllow, uid, map[string]any{
		"account_id": rec.ID,
		"service_id": rec.ServiceID,
	})
	return v.decodeAccount(rec), nil
}

// DeleteAccount removes one of the user's accounts.
func (v *Vault) DeleteAccount(uid, accountID string) error {
	uid = strings.TrimSpace(uid)
	accountID = strings.TrimSpace(accountID)

	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.accounts[accountID]
	if !ok || rec.UID != uid {
		return ErrAccountNotFound
	}
	delete(v.accounts, accountID)
	if err := v.saveAccounts(); err != nil {
		v.accounts[accountID] = rec
		return err
	}
	v.emit(logging.EventAccountDelete, logging.DecisionAllow, uid, map[string]any{
		"account_id": accountID,
		"service_id": rec.ServiceID,
	})
	return nil
}

// CountAccounts reports how many accounts the user holds across services.
func (v *Vault) CountAccounts(uid string) int {
	uid = strings.TrimSpace(uid)

	v.mu.RLock()
	defer v.mu.RUnlock()
	count := 0
	for _, rec := range v.accounts {
		if rec.UID == uid {
			count++
		}
	}
	return count
}
