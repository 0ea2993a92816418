package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProfile != "" || cfg.LastUsedProfile != "" {
		t.Errorf("missing file gave non-empty config: %+v", cfg)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	root := t.TempDir()
	want := &Config{DefaultProfile: "work", LastUsedProfile: "personal"}
	if err := Save(root, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestOmitEmptyFields(t *testing.T) {
	root := t.TempDir()
	if err := Save(root, &Config{DefaultProfile: "work"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(Path(root))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "last_used_profile") {
		t.Errorf("empty field serialized: %s", data)
	}
}

func TestSetLastUsedLowercases(t *testing.T) {
	root := t.TempDir()
	if err := SetLastUsed(root, "Work"); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LastUsedProfile != "work" {
		t.Errorf("LastUsedProfile = %q, want work", cfg.LastUsedProfile)
	}
}

func TestDefaultProfileResolution(t *testing.T) {
	root := t.TempDir()

	// Nothing configured.
	got, err := DefaultProfile(root)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("empty config resolved to %q", got)
	}

	// Last-used is the fallback.
	if err := SetLastUsed(root, "recent"); err != nil {
		t.Fatal(err)
	}
	if got, _ = DefaultProfile(root); got != "recent" {
		t.Errorf("resolved %q, want recent", got)
	}

	// Configured default beats last-used.
	if err := SetDefaultProfile(root, "main"); err != nil {
		t.Fatal(err)
	}
	if got, _ = DefaultProfile(root); got != "main" {
		t.Errorf("resolved %q, want main", got)
	}

	// Environment beats everything.
	t.Setenv(EnvDefaultProfile, "FromEnv")
	if got, _ = DefaultProfile(root); got != "fromenv" {
		t.Errorf("resolved %q, want fromenv", got)
	}
}

func TestClearDefaultProfile(t *testing.T) {
	root := t.TempDir()
	if err := SetDefaultProfile(root, "main"); err != nil {
		t.Fatal(err)
	}
	if err := SetDefaultProfile(root, ""); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultProfile != "" {
		t.Errorf("DefaultProfile = %q after clear", cfg.DefaultProfile)
	}
}
