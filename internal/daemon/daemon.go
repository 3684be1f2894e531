// Package daemon runs the background watcher that keeps one remote task
// list and the local todo file converged.
//
// Syncs are triggered two ways: a debounced filesystem watch on the todo
// file and notes directory, and a poll ticker that catches remote-side
// changes the watcher cannot see. One sync runs at a time; failures are
// counted in the persisted state and never stop the loop.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tasksync/internal/engine"
)

const (
	defaultInterval = 5 * time.Minute
	defaultDebounce = 2 * time.Second
)

// Config holds the daemon configuration.
type Config struct {
	TodoFile string // local todo file to watch
	NotesDir string // notes directory to watch
	ListID   string // resolved remote list identifier
	StateDir string // pid, state and log files live here
	Interval time.Duration
	Debounce time.Duration
	Logger   *log.Logger
}

// Daemon is the watch loop.
type Daemon struct {
	cfg    Config
	engine *engine.Engine
	logger *log.Logger
	state  State
}

// New creates a daemon syncing through eng.
func New(cfg Config, eng *engine.Engine) *Daemon {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = NewLogger(cfg.StateDir)
	}

	return &Daemon{
		cfg:    cfg,
		engine: eng,
		logger: cfg.Logger,
	}
}

// Run starts the watch loop and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Printf("Starting watch daemon (list %s, interval %v, debounce %v)",
		d.cfg.ListID, d.cfg.Interval, d.cfg.Debounce)

	if err := writePIDFile(d.cfg.StateDir); err != nil {
		return err
	}
	defer removePIDFile(d.cfg.StateDir)

	d.state = State{
		PID:       os.Getpid(),
		ListID:    d.cfg.ListID,
		StartedAt: time.Now().UTC(),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directories, not the files: editors and calcurse replace
	// the todo file on save, which would silently drop a file watch.
	todoDir := filepath.Dir(d.cfg.TodoFile)
	if err := watcher.Add(todoDir); err != nil {
		return fmt.Errorf("watching %s: %w", todoDir, err)
	}
	if err := watcher.Add(d.cfg.NotesDir); err != nil {
		// The notes directory may not exist until the first note is
		// written; the todo watch still covers task additions.
		d.logger.Printf("Not watching notes directory: %v", err)
	}

	// Initial convergence before settling into the loop.
	d.syncOnce(ctx)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	debounce := time.NewTimer(d.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Printf("Shutdown requested, stopping watch daemon")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			if !d.relevant(event) {
				continue
			}
			debounce.Reset(d.cfg.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			d.logger.Printf("Watcher error: %v", err)

		case <-debounce.C:
			d.syncOnce(ctx)

		case <-ticker.C:
			d.syncOnce(ctx)
		}
	}
}

// relevant reports whether a filesystem event should trigger a sync.
func (d *Daemon) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) {
		return false
	}
	if event.Name == d.cfg.TodoFile {
		return true
	}
	return filepath.Dir(event.Name) == d.cfg.NotesDir
}

// syncOnce runs one sync, updating counters and persisted state.
func (d *Daemon) syncOnce(ctx context.Context) {
	start := time.Now()

	res, err := d.engine.Sync(ctx, d.cfg.ListID)
	if err != nil {
		d.state.ErrorCount++
		d.logger.Printf("Sync failed: %v", err)
	} else {
		d.state.SyncCount++
		d.state.LastSync = time.Now().UTC()
		if res.CreatedLocal > 0 || res.CreatedRemote > 0 {
			d.logger.Printf("Sync completed in %v (created %d local, %d remote)",
				time.Since(start).Round(time.Millisecond), res.CreatedLocal, res.CreatedRemote)
		}
	}

	if err := SaveState(d.cfg.StateDir, d.state); err != nil {
		d.logger.Printf("Saving state failed: %v", err)
	}
}
