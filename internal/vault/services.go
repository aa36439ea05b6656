package vault

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yuuruii/yrzvault/internal/logging"
)

// Service groups accounts under a named provider (a website, an app).
type Service struct {
	ID        string
	UID       string
	Name      string
	Icon      string
	CreatedAt time.Time
}

type serviceRecord struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *serviceRecord) view() Service {
	return Service{ID: r.ID, UID: r.UID, Name: r.Name, Icon: r.Icon, CreatedAt: r.CreatedAt}
}

// CreateService registers a named service for the user. The service ID is
// prefixed with the owner's UID so IDs stay traceable in the store file.
// icon is an optional path reference to the service's image; it may be empty.
func (v *Vault) CreateService(uid, name, icon string) (Service, error) {
	uid = strings.TrimSpace(uid)
	name = strings.TrimSpace(name)
	if uid == "" {
		return Service{}, errors.New("user id is required")
	}
	if name == "" {
		return Service{}, errors.New("service name is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.userByID(uid); !ok {
		return Service{}, ErrUserNotFound
	}
	rec := &serviceRecord{
		ID:        uid + "_" + ulid.Make().String(),
		UID:       uid,
		Name:      name,
		Icon:      strings.TrimSpace(icon),
		CreatedAt: v.now(),
	}
	v.services[rec.ID] = rec
	if err := v.saveServices(); err != nil {
		delete(v.services, rec.ID)
		return Service{}, err
	}
	v.emit(logging.EventServiceCreate, logging.DecisionAllow, uid, map[string]any{
		"service_id": rec.ID,
		"name":       rec.Name,
	})
	return rec.view(), nil
}

// ListServices returns the user's services ordered by creation time.
func (v *Vault) ListServices(uid string) []Service {
	uid = strings.TrimSpace(uid)

	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []Service
	for _, rec := range v.services {
		if rec.UID == uid {
			out = append(out, rec.view())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeleteService removes a service and every account stored under it.
func (v *Vault) DeleteService(uid, serviceID string) error {
	uid = strings.TrimSpace(uid)
	serviceID = strings.TrimSpace(serviceID)

	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.services[serviceID]
	if !ok || rec.UID != uid {
		return ErrServiceNotFound
	}

	removed := make(map[string]*accountRecord)
	for id, acc := range v.accounts {
		if acc.ServiceID == serviceID {
			removed[id] = acc
			delete(v.accounts, id)
		}
	}
	delete(v.services, serviceID)

	if err := v.saveServices(); err != nil {
		v.restoreService(rec, removed)
		return err
	}
	if err := v.saveAccounts(); err != nil {
		v.restoreService(rec, removed)
		return err
	}
	v.emit(logging.EventServiceDelete, logging.DecisionAllow, uid, map[string]any{
		"service_id":       serviceID,
		"name":             rec.Name,
		"accounts_removed": len(removed),
	})
	return nil
}

func (v *Vault) restoreService(rec *serviceRecord, accounts map[string]*accountRecord) {
	v.services[rec.ID] = rec
	for id, acc := range accounts {
		v.accounts[id] = acc
	}
}
