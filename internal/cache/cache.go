// Package cache maintains the persisted mapping from task list titles to
// remote list identifiers.
//
// Titles are not unique on the remote side, so a lookup can yield zero,
// one or many lists. The cache is advisory: it is rebuilt from the remote
// service whenever a lookup misses or a list-level mutation happens, and a
// corrupt cache file is treated as absent rather than as a failure.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"tasksync/internal/remote"
)

// ErrListNotFound reports that a title matched no task list even after a
// cache rebuild.
var ErrListNotFound = errors.New("task list does not exist")

// Entry is one cached task list with the tasks seen at the last refresh,
// tasks ordered by position ascending.
type Entry struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Updated time.Time     `json:"updated"`
	Tasks   []remote.Task `json:"tasks"`
}

// AmbiguousError reports a title matching more than one task list when the
// caller supplied no selector. It carries the full candidate set in cache
// order; the indexes shown are the selector values that resolve each one.
type AmbiguousError struct {
	Title      string
	Candidates []Entry
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d task lists titled %q; select one with -l", len(e.Candidates), e.Title)
}

// Cache resolves task list titles to identifiers, backed by a JSON file.
type Cache struct {
	path       string
	svc        remote.Service
	maxResults int
	lock       *flock.Flock
}

// New creates a cache persisted at path, rebuilt from svc.
// maxResults caps the list enumeration during rebuilds.
func New(path string, svc remote.Service, maxResults int) *Cache {
	return &Cache{
		path:       path,
		svc:        svc,
		maxResults: maxResults,
		lock:       flock.New(path + ".lock"),
	}
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Load reads the persisted cache. ok is false when the file is missing or
// unparsable; a corrupt cache is rebuilt on the next resolve, never an error.
func (c *Cache) Load() (entries []Entry, ok bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Rebuild re-enumerates every remote task list and its tasks, rewrites the
// cache file atomically, and returns the new entries. This is the only
// place the cache file is written.
func (c *Cache) Rebuild(ctx context.Context) ([]Entry, error) {
	lists, err := c.svc.ListTaskLists(ctx, c.maxResults)
	if err != nil {
		return nil, fmt.Errorf("enumerating task lists: %w", err)
	}

	entries := make([]Entry, 0, len(lists))
	for _, list := range lists {
		tasks, err := c.svc.ListTasks(ctx, list.ID)
		if err != nil {
			return nil, fmt.Errorf("enumerating tasks of %q: %w", list.Title, err)
		}
		entries = append(entries, Entry{
			ID:      list.ID,
			Title:   list.Title,
			Updated: list.Updated,
			Tasks:   tasks,
		})
	}

	if err := c.write(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// write persists entries with write-to-temp-then-rename semantics, under a
// file lock so two rebuilds cannot interleave.
func (c *Cache) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("locking cache: %w", err)
	}
	defer c.lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".tasklists-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}

// ResolveRefs returns every cached list whose title matches, in cache
// order. A miss triggers exactly one rebuild before the title is declared
// nonexistent, which covers caches that predate a list created by another
// run while bounding the remote round trips.
func (c *Cache) ResolveRefs(ctx context.Context, title string) ([]Entry, error) {
	entries, ok := c.Load()
	if !ok {
		var err error
		entries, err = c.Rebuild(ctx)
		if err != nil {
			return nil, err
		}
	}

	refs := matchTitle(entries, title)
	if len(refs) > 0 {
		return refs, nil
	}

	// Stale cache? Refresh once and retry before giving up.
	entries, err := c.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	refs = matchTitle(entries, title)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%q: %w", title, ErrListNotFound)
	}
	return refs, nil
}

// NotifyMutated refreshes the cache after a list-level mutation (create,
// rename, delete) so later resolutions observe the change without relying
// on remote update timestamps.
func (c *Cache) NotifyMutated(ctx context.Context) error {
	_, err := c.Rebuild(ctx)
	return err
}

// Select picks a single list from resolved candidates. selector is the
// zero-based index supplied by the caller, or negative for none. With more
// than one candidate and no selector the resolution is ambiguous and no
// default is picked; an out-of-range selector is an error, never clamped.
func Select(title string, refs []Entry, selector int) (Entry, error) {
	if len(refs) == 0 {
		return Entry{}, fmt.Errorf("%q: %w", title, ErrListNotFound)
	}
	if selector < 0 {
		if len(refs) > 1 {
			return Entry{}, &AmbiguousError{Title: title, Candidates: refs}
		}
		return refs[0], nil
	}
	if selector >= len(refs) {
		return Entry{}, fmt.Errorf("list number %d out of range: %d lists titled %q", selector, len(refs), title)
	}
	return refs[selector], nil
}

func matchTitle(entries []Entry, title string) []Entry {
	var refs []Entry
	for _, e := range entries {
		if e.Title == title {
			refs = append(refs, e)
		}
	}
	return refs
}
