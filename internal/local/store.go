// Package local reads and writes the calcurse todo file and its
// content-addressed note store.
//
// Each todo line is `[flag] title` or, when the task carries a note,
// `[flag]>noteHash title`. The flag between the brackets is opaque to the
// sync core and preserved verbatim. noteHash is the hex SHA-1 of the note
// file's content and doubles as the note's filename under the notes
// directory, so identical notes share one file.
package local

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// DefaultFlag marks tasks appended by tasksync. calcurse reads it as the
// lowest TODO priority.
const DefaultFlag = "0"

// Task is one entry of the todo file.
type Task struct {
	Flag  string // opaque per-task marker, preserved verbatim
	Title string
	Note  string // empty means the task has no note
}

// StoreError describes a local store failure. Per the sync contract these
// are fatal for the current operation, never silently skipped.
type StoreError struct {
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("local store: %s: %v", e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the local task store rooted at a todo file and notes directory.
type Store struct {
	todoFile string
	notesDir string
	lock     *flock.Flock
}

// NewStore creates a store for the given todo file and notes directory.
func NewStore(todoFile, notesDir string) *Store {
	return &Store{
		todoFile: todoFile,
		notesDir: notesDir,
		lock:     flock.New(todoFile + ".lock"),
	}
}

// TodoFile returns the path of the todo file.
func (s *Store) TodoFile() string { return s.todoFile }

// NotesDir returns the path of the notes directory.
func (s *Store) NotesDir() string { return s.notesDir }

// NoteHash returns the content address of a note body: the hex SHA-1 of
// the note file content (the body plus its trailing newline).
func NoteHash(note string) string {
	sum := sha1.Sum([]byte(note + "\n"))
	return hex.EncodeToString(sum[:])
}

// ReadTasks parses the todo file into tasks, loading note bodies from the
// note store. A missing todo file reads as an empty task list; a missing
// or unreadable note file referenced by a task line is an error.
func (s *Store) ReadTasks() ([]Task, error) {
	data, err := os.ReadFile(s.todoFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StoreError{Path: s.todoFile, Err: err}
	}

	var tasks []Task
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		task, noteHash, err := parseLine(line)
		if err != nil {
			return nil, &StoreError{Path: s.todoFile, Err: fmt.Errorf("line %d: %w", i+1, err)}
		}

		if noteHash != "" {
			note, err := s.ReadNote(noteHash)
			if err != nil {
				return nil, err
			}
			task.Note = note
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// ReadNote loads the note body stored under the given content hash.
// The trailing newline of the file is not part of the body.
func (s *Store) ReadNote(hash string) (string, error) {
	path := filepath.Join(s.notesDir, hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &StoreError{Path: path, Err: err}
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// AppendTasks appends tasks to the todo file, writing note files for tasks
// that carry notes. A note whose content hash already exists in the note
// store is reused; nothing is written twice. The append is guarded by a
// file lock so concurrent runs cannot interleave lines.
func (s *Store) AppendTasks(tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.todoFile), 0o755); err != nil {
		return &StoreError{Path: s.todoFile, Err: err}
	}

	if err := s.lock.Lock(); err != nil {
		return &StoreError{Path: s.lock.Path(), Err: err}
	}
	defer s.lock.Unlock()

	var lines strings.Builder
	for _, task := range tasks {
		line, err := s.formatTask(task)
		if err != nil {
			return err
		}
		lines.WriteString(line)
		lines.WriteByte('\n')
	}

	f, err := os.OpenFile(s.todoFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &StoreError{Path: s.todoFile, Err: err}
	}
	defer f.Close()

	if _, err := f.WriteString(lines.String()); err != nil {
		return &StoreError{Path: s.todoFile, Err: err}
	}
	return nil
}

// formatTask renders one todo line, writing the note file first if needed.
func (s *Store) formatTask(task Task) (string, error) {
	flag := task.Flag
	if flag == "" {
		flag = DefaultFlag
	}

	if task.Note == "" {
		return fmt.Sprintf("[%s] %s", flag, task.Title), nil
	}

	hash, err := s.writeNote(task.Note)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s]>%s %s", flag, hash, task.Title), nil
}

// writeNote stores a note body under its content hash, skipping the write
// when a file with that hash already exists.
func (s *Store) writeNote(note string) (string, error) {
	hash := NoteHash(note)
	path := filepath.Join(s.notesDir, hash)

	if _, err := os.Stat(path); err == nil {
		return hash, nil
	} else if !os.IsNotExist(err) {
		return "", &StoreError{Path: path, Err: err}
	}

	if err := os.MkdirAll(s.notesDir, 0o755); err != nil {
		return "", &StoreError{Path: s.notesDir, Err: err}
	}
	if err := os.WriteFile(path, []byte(note+"\n"), 0o644); err != nil {
		return "", &StoreError{Path: path, Err: err}
	}
	return hash, nil
}

// parseLine splits one todo line into its task and optional note hash.
// It is the exact inverse of formatTask.
func parseLine(line string) (Task, string, error) {
	if !strings.HasPrefix(line, "[") {
		return Task{}, "", fmt.Errorf("malformed task line %q", line)
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return Task{}, "", fmt.Errorf("malformed task line %q", line)
	}

	task := Task{Flag: line[1:end]}
	rest := line[end+1:]

	switch {
	case strings.HasPrefix(rest, " "):
		task.Title = rest[1:]
		return task, "", nil
	case strings.HasPrefix(rest, ">"):
		hash, title, ok := strings.Cut(rest[1:], " ")
		if !ok || hash == "" {
			return Task{}, "", fmt.Errorf("malformed note reference in %q", line)
		}
		task.Title = title
		return task, hash, nil
	default:
		return Task{}, "", fmt.Errorf("malformed task line %q", line)
	}
}
