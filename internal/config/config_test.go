package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := Default()
	if cfg.Remote.BaseURL != def.Remote.BaseURL {
		t.Errorf("BaseURL = %s, want default", cfg.Remote.BaseURL)
	}
	if cfg.Remote.MaxResults != 100 {
		t.Errorf("MaxResults = %d, want 100", cfg.Remote.MaxResults)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
data_dir = "/srv/calcurse"

[remote]
max_results = 50

[watch]
interval_seconds = 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/srv/calcurse" {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.Remote.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want 50", cfg.Remote.MaxResults)
	}
	if cfg.Watch.IntervalSeconds != 60 {
		t.Errorf("IntervalSeconds = %d, want 60", cfg.Watch.IntervalSeconds)
	}
	// Unset fields keep their defaults.
	if cfg.Remote.BaseURL != Default().Remote.BaseURL {
		t.Errorf("BaseURL = %s, want default", cfg.Remote.BaseURL)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("data_dir = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load of malformed config = nil error")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/home/u/.calcurse"}

	if got := cfg.TodoFile(); got != "/home/u/.calcurse/todo" {
		t.Errorf("TodoFile = %s", got)
	}
	if got := cfg.NotesDir(); got != "/home/u/.calcurse/notes" {
		t.Errorf("NotesDir = %s", got)
	}
}

func TestToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  ya29.secret  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Config{TokenFile: path}
	token, err := cfg.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "ya29.secret" {
		t.Errorf("token = %q", token)
	}
}

func TestTokenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := (Config{TokenFile: path}).Token(); err == nil {
		t.Error("Token on empty file = nil error")
	}
}
