// Package config reads and writes the global rafctl configuration,
// a small config.yaml next to the profiles directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvDefaultProfile overrides the configured default profile when set.
const EnvDefaultProfile = "RAFCTL_DEFAULT_PROFILE"

const fileName = "config.yaml"

// Config is the persisted global state. Both fields are optional.
type Config struct {
	DefaultProfile  string `yaml:"default_profile,omitempty"`
	LastUsedProfile string `yaml:"last_used_profile,omitempty"`
}

// Path returns the config file path under root.
func Path(root string) string {
	return filepath.Join(root, fileName)
}

// Load reads the config under root. A missing file yields an empty config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config atomically, creating root if needed.
func Save(root string, cfg *Config) error {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := Path(root)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetDefaultProfile persists name as the default profile. An empty name
// clears it.
func SetDefaultProfile(root, name string) error {
	cfg, err := Load(root)
	if err != nil {
		return err
	}
	cfg.DefaultProfile = strings.ToLower(name)
	return Save(root, cfg)
}

// SetLastUsed records name as the most recently launched profile.
func SetLastUsed(root, name string) error {
	cfg, err := Load(root)
	if err != nil {
		return err
	}
	cfg.LastUsedProfile = strings.ToLower(name)
	return Save(root, cfg)
}

// DefaultProfile resolves the profile to use when none is named on the
// command line: the RAFCTL_DEFAULT_PROFILE environment variable wins, then
// the configured default, then the last-used profile. Empty string means
// no preference.
func DefaultProfile(root string) (string, error) {
	if env := os.Getenv(EnvDefaultProfile); env != "" {
		return strings.ToLower(env), nil
	}

	cfg, err := Load(root)
	if err != nil {
		return "", err
	}
	if cfg.DefaultProfile != "" {
		return cfg.DefaultProfile, nil
	}
	return cfg.LastUsedProfile, nil
}
