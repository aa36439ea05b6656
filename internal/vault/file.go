package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	credentialsFile = "credentials.json"
	servicesFile    = "services.json"
	accountsFile    = "sacc.json"
)

func (v *Vault) loadAll() error {
	users := make(map[string]*userRecord)
	if err := readStore(filepath.Join(v.dir, credentialsFile), &users); err != nil {
		return err
	}
	v.users = users

	var services []*serviceRecord
	if err := readStore(filepath.Join(v.dir, servicesFile), &services); err != nil {
		return err
	}
	for _, rec := range services {
		v.services[rec.ID] = rec
	}

	var accounts []*accountRecord
	if err := readStore(filepath.Join(v.dir, accountsFile), &accounts); err != nil {
		return err
	}
	for _, rec := range accounts {
		v.accounts[rec.ID] = rec
	}
	return nil
}

// readStore fills out from a JSON store file. A missing or empty file is a
// fresh store, not an error.
func readStore(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read store %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse store %s: %w", path, err)
	}
	return nil
}

func writeStore(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write store %s: %w", path, err)
	}
	return nil
}

// saveUsers persists the credentials store. Callers hold the write lock.
func (v *Vault) saveUsers() error {
	return writeStore(filepath.Join(v.dir, credentialsFile), v.users)
}

func (v *Vault) saveServices() error {
	records := make([]*serviceRecord, 0, len(v.services))
	for _, rec := range v.services {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return writeStore(filepath.Join(v.dir, servicesFile), records)
}

func (v *Vault) saveAccounts() error {
	records := make([]*accountRecord, 0, len(v.accounts))
	for _, rec := range v.accounts {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return writeStore(filepath.Join(v.dir, accountsFile), records)
}
