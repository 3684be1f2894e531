package daemon

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	pidFileName   = "watch.pid"
	stateFileName = "watch-state.json"
	logFileName   = "watch.log"
)

// State is the daemon status persisted after every sync attempt.
type State struct {
	PID        int       `json:"pid"`
	ListID     string    `json:"list_id"`
	StartedAt  time.Time `json:"started_at"`
	LastSync   time.Time `json:"last_sync,omitempty"`
	SyncCount  int       `json:"sync_count"`
	ErrorCount int       `json:"error_count"`
}

// SaveState writes the state file under stateDir.
func SaveState(stateDir string, st State) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	path := filepath.Join(stateDir, stateFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// LoadState reads the persisted state, if any.
func LoadState(stateDir string) (State, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, stateFileName))
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing state: %w", err)
	}
	return st, nil
}

// IsRunning reports whether a daemon is alive, and its pid if so. A pid
// file pointing at a dead process is treated as not running.
func IsRunning(stateDir string) (bool, int) {
	pid, err := readPIDFile(stateDir)
	if err != nil {
		return false, 0
	}
	if !processAlive(pid) {
		return false, 0
	}
	return true, pid
}

// Stop signals the running daemon to shut down. It is an error if no
// daemon is running.
func Stop(stateDir string) error {
	running, pid := IsRunning(stateDir)
	if !running {
		removePIDFile(stateDir)
		return fmt.Errorf("watch daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping process %d: %w", pid, err)
	}
	return nil
}

// NewLogger returns the daemon logger, rotating under stateDir.
func NewLogger(stateDir string) *log.Logger {
	return log.New(&lumberjack.Logger{
		Filename:   filepath.Join(stateDir, logFileName),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}, "[tasksync-watch] ", log.LstdFlags)
}

// LogFile returns the daemon log path under stateDir.
func LogFile(stateDir string) string {
	return filepath.Join(stateDir, logFileName)
}

func pidFilePath(stateDir string) string {
	return filepath.Join(stateDir, pidFileName)
}

func writePIDFile(stateDir string) error {
	if running, pid := IsRunning(stateDir); running {
		return fmt.Errorf("watch daemon already running (pid %d)", pid)
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(pidFilePath(stateDir), []byte(pid+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return nil
}

func removePIDFile(stateDir string) {
	os.Remove(pidFilePath(stateDir))
}

func readPIDFile(stateDir string) (int, error) {
	data, err := os.ReadFile(pidFilePath(stateDir))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing pid file: %w", err)
	}
	return pid, nil
}

// processAlive probes a pid with signal 0.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
