// Package config loads the tasksync configuration file.
//
// All paths and credentials are carried in an explicit Config value that is
// threaded through the commands; nothing in this package keeps mutable
// process-wide state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Remote configures the hosted task service endpoint.
type Remote struct {
	// BaseURL is the root of the task service REST API.
	BaseURL string `toml:"base_url"`
	// MaxResults caps how many task lists a single enumeration requests.
	MaxResults int `toml:"max_results"`
	// TimeoutSeconds bounds each HTTP call. Zero means the default.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Watch configures the background watch daemon.
type Watch struct {
	// IntervalSeconds is the poll fallback interval between forced syncs.
	IntervalSeconds int `toml:"interval_seconds"`
	// DebounceMillis is how long to wait after a file event before syncing,
	// so editors that write in several steps trigger one sync, not five.
	DebounceMillis int `toml:"debounce_ms"`
}

// Config is the full tasksync configuration.
type Config struct {
	// DataDir is the calcurse data directory holding the todo file and the
	// notes/ subdirectory.
	DataDir string `toml:"data_dir"`
	// CacheFile is where the task list cache is persisted.
	CacheFile string `toml:"cache_file"`
	// TokenFile names a file containing the bearer token for the remote
	// service. The token itself never appears in the config file.
	TokenFile string `toml:"token_file"`
	// StateDir holds daemon runtime files (pid, state, log).
	StateDir string `toml:"state_dir"`

	Remote Remote `toml:"remote"`
	Watch  Watch  `toml:"watch"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "tasksync", "config.toml")
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:   filepath.Join(home, ".calcurse"),
		CacheFile: filepath.Join(home, ".config", "tasksync", "tasklists.json"),
		TokenFile: filepath.Join(home, ".config", "tasksync", "token"),
		StateDir:  filepath.Join(home, ".local", "state", "tasksync"),
		Remote: Remote{
			BaseURL:        "https://tasks.googleapis.com/tasks/v1",
			MaxResults:     100,
			TimeoutSeconds: 30,
		},
		Watch: Watch{
			IntervalSeconds: 300,
			DebounceMillis:  2000,
		},
	}
}

// Load reads the config file at path, filling unset fields from Default.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// TodoFile returns the path of the calcurse todo file.
func (c Config) TodoFile() string {
	return filepath.Join(c.DataDir, "todo")
}

// NotesDir returns the path of the calcurse notes directory.
func (c Config) NotesDir() string {
	return filepath.Join(c.DataDir, "notes")
}

// Token reads the bearer token from TokenFile.
func (c Config) Token() (string, error) {
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", c.TokenFile, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", c.TokenFile)
	}
	return token, nil
}
