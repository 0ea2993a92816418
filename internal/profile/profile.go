// Package profile manages named tool profiles. Each profile is a directory
// under the profiles root holding a meta.yaml plus an isolated config dir
// for the coding agent it launches.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	metaFileName = "meta.yaml"
	maxNameLen   = 64
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedNames are directory names the store uses for its own bookkeeping
// and can never belong to a profile.
var reservedNames = map[string]bool{
	"default":  true,
	"config":   true,
	"cache":    true,
	"profiles": true,
	"oauth":    true,
}

// ErrNotFound is returned when a named profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Tool identifies the coding agent a profile launches.
type Tool string

const (
	ToolClaude Tool = "claude"
	ToolCodex  Tool = "codex"
)

// ParseTool converts user input to a Tool, case-insensitively.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(s) {
	case "claude":
		return ToolClaude, nil
	case "codex":
		return ToolCodex, nil
	default:
		return "", fmt.Errorf("invalid tool %q (valid options: claude, codex)", s)
	}
}

// Profile is the persisted metadata for one profile.
type Profile struct {
	Name      string     `yaml:"name"`
	Tool      Tool       `yaml:"tool"`
	CreatedAt time.Time  `yaml:"created_at"`
	LastUsed  *time.Time `yaml:"last_used,omitempty"`
}

// New returns a fresh profile created now.
func New(name string, tool Tool) *Profile {
	return &Profile{Name: name, Tool: tool, CreatedAt: time.Now().UTC()}
}

// ValidateName rejects names that are empty, too long, reserved, or contain
// anything outside [a-zA-Z0-9_-]. Names double as directory names, so the
// rule is strict on purpose.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLen || !namePattern.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must be 1-%d characters of letters, digits, hyphen, or underscore", name, maxNameLen)
	}
	if reservedNames[strings.ToLower(name)] {
		return fmt.Errorf("profile name %q is reserved", name)
	}
	return nil
}

// Store reads and writes profiles rooted at a base directory,
// conventionally ~/.rafctl.
type Store struct {
	root string
}

// NewStore returns a store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// DefaultRoot returns ~/.rafctl, or .rafctl in the working directory when
// the home directory cannot be determined.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rafctl")
}

// Root returns the store's base directory.
func (s *Store) Root() string { return s.root }

// ProfilesDir returns the directory holding all profile directories.
func (s *Store) ProfilesDir() string {
	return filepath.Join(s.root, "profiles")
}

// Dir returns the directory for the named profile. Names are lowercased so
// lookups are case-insensitive on every filesystem.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.ProfilesDir(), strings.ToLower(name))
}

func (s *Store) metaPath(name string) string {
	return filepath.Join(s.Dir(name), metaFileName)
}

// Save writes the profile's meta.yaml atomically, creating the profile
// directory with owner-only permissions.
func (s *Store) Save(p *Profile) error {
	dir := s.Dir(p.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create profile dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.Name, err)
	}

	if err := atomicWrite(s.metaPath(p.Name), data); err != nil {
		return fmt.Errorf("write profile %s: %w", p.Name, err)
	}
	return nil
}

// Load reads the named profile, returning ErrNotFound when it does
// not exist.
func (s *Store) Load(name string) (*Profile, error) {
	data, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read profile %s: %w", name, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", name, err)
	}
	return &p, nil
}

// Exists reports whether the named profile has a meta.yaml on disk.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.metaPath(name))
	return err == nil
}

// List returns the names of all profiles, sorted. A profile directory
// without a meta.yaml is ignored.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.ProfilesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profiles dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.ProfilesDir(), entry.Name(), metaFileName)); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named profile and everything under its directory,
// including the agent config dir and any cached stats.
func (s *Store) Delete(name string) error {
	dir := s.Dir(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	return nil
}

// FindSimilar returns the first profile whose name starts with input,
// comparing case-insensitively. Used for "did you mean" suggestions.
func FindSimilar(input string, names []string) (string, bool) {
	lower := strings.ToLower(input)
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return name, true
		}
	}
	return "", false
}

// atomicWrite writes data to a sibling temp file and renames it into place
// so readers never observe a partial file. Files are owner-only; profile
// dirs can hold credentials.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
