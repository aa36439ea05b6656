// Package config resolves the vault configuration from defaults, optional
// YAML files, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the resolved vault configuration.
type Config struct {
	// DataDir holds the JSON stores (credentials, services, accounts).
	DataDir string `yaml:"data_dir"`
	// TablePath points at the cipher table document.
	TablePath string `yaml:"table_path"`
	// AuditLog is an optional JSONL audit file; empty means stdout only.
	AuditLog string `yaml:"audit_log"`
}

const (
	homeDirName     = ".yrzvault"
	homeConfigName  = "config.yml"
	localConfigName = "yrzvault.yml"
	tableFileName   = "yrz_codek.json"
)

// Load resolves the configuration. Lookup order, lowest precedence first:
//  1. built-in defaults
//  2. ~/.yrzvault/config.yml
//  3. ./yrzvault.yml
//  4. YRZ_* environment variables
func Load() (Config, error) {
	var cfg Config

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := resolveDefaults(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("determine home directory: %w", err)
	}
	return applyFile(cfg, filepath.Join(home, homeDirName, homeConfigName))
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	return applyFile(cfg, filepath.Join(wd, localConfigName))
}

// fileConfig distinguishes absent keys from empty values so partial files
// only override what they mention.
type fileConfig struct {
	DataDir   *string `yaml:"data_dir"`
	TablePath *string `yaml:"table_path"`
	AuditLog  *string `yaml:"audit_log"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.DataDir != nil {
		cfg.DataDir = strings.TrimSpace(*fc.DataDir)
	}
	if fc.TablePath != nil {
		cfg.TablePath = strings.TrimSpace(*fc.TablePath)
	}
	if fc.AuditLog != nil {
		cfg.AuditLog = strings.TrimSpace(*fc.AuditLog)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val := strings.TrimSpace(os.Getenv("YRZ_DATA_DIR")); val != "" {
		cfg.DataDir = val
	}
	if val := strings.TrimSpace(os.Getenv("YRZ_TABLE")); val != "" {
		cfg.TablePath = val
	}
	if val := strings.TrimSpace(os.Getenv("YRZ_AUDIT_LOG")); val != "" {
		cfg.AuditLog = val
	}
}

func resolveDefaults(cfg *Config) error {
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determine home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, homeDirName)
	}
	if cfg.TablePath == "" {
		cfg.TablePath = filepath.Join(cfg.DataDir, tableFileName)
	}
	return nil
}
