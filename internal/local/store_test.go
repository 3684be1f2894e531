package local

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "todo"), filepath.Join(dir, "notes"))
}

func TestReadTasksMissingFile(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.ReadTasks()
	if err != nil {
		t.Fatalf("ReadTasks: %v", err)
	}
	if tasks != nil {
		t.Errorf("tasks = %v, want nil", tasks)
	}
}

func TestAppendThenRead(t *testing.T) {
	s := newTestStore(t)

	in := []Task{
		{Flag: "1", Title: "buy milk"},
		{Flag: "0", Title: "call mom", Note: "about dinner\nand the weekend"},
	}
	if err := s.AppendTasks(in); err != nil {
		t.Fatalf("AppendTasks: %v", err)
	}

	out, err := s.ReadTasks()
	if err != nil {
		t.Fatalf("ReadTasks: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("read back %+v, want %+v", out, in)
	}
}

func TestAppendPreservesExistingLines(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendTasks([]Task{{Flag: "2", Title: "water plants"}}); err != nil {
		t.Fatalf("first AppendTasks: %v", err)
	}
	if err := s.AppendTasks([]Task{{Flag: "0", Title: "buy milk"}}); err != nil {
		t.Fatalf("second AppendTasks: %v", err)
	}

	out, err := s.ReadTasks()
	if err != nil {
		t.Fatalf("ReadTasks: %v", err)
	}
	want := []Task{
		{Flag: "2", Title: "water plants"},
		{Flag: "0", Title: "buy milk"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("tasks = %+v, want %+v", out, want)
	}
}

func TestTodoLineFormat(t *testing.T) {
	s := newTestStore(t)

	tasks := []Task{
		{Flag: "1", Title: "buy milk"},
		{Flag: "0", Title: "call mom", Note: "about dinner"},
		{Title: "water plants"}, // empty flag takes the default
	}
	if err := s.AppendTasks(tasks); err != nil {
		t.Fatalf("AppendTasks: %v", err)
	}

	data, err := os.ReadFile(s.TodoFile())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("todo has %d lines, want 3", len(lines))
	}

	if lines[0] != "[1] buy milk" {
		t.Errorf("line 1 = %q", lines[0])
	}
	wantNoted := "[0]>" + NoteHash("about dinner") + " call mom"
	if lines[1] != wantNoted {
		t.Errorf("line 2 = %q, want %q", lines[1], wantNoted)
	}
	if lines[2] != "[0] water plants" {
		t.Errorf("line 3 = %q", lines[2])
	}
}

func TestNoteFilesAreContentAddressed(t *testing.T) {
	s := newTestStore(t)

	// Two tasks with the same note share one note file.
	tasks := []Task{
		{Flag: "0", Title: "buy milk", Note: "from the corner shop"},
		{Flag: "0", Title: "buy eggs", Note: "from the corner shop"},
	}
	if err := s.AppendTasks(tasks); err != nil {
		t.Fatalf("AppendTasks: %v", err)
	}

	entries, err := os.ReadDir(s.NotesDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("notes dir has %d files, want 1", len(entries))
	}
	if entries[0].Name() != NoteHash("from the corner shop") {
		t.Errorf("note file name = %q, want content hash", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(s.NotesDir(), entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "from the corner shop\n" {
		t.Errorf("note content = %q", data)
	}
}

func TestReadNoteMissingFileIsError(t *testing.T) {
	s := newTestStore(t)

	line := "[0]>" + NoteHash("vanished") + " call mom\n"
	if err := os.WriteFile(s.TodoFile(), []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReadTasks()
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
}

func TestReadTasksMalformedLine(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no bracket", "buy milk"},
		{"unclosed bracket", "[0 buy milk"},
		{"no separator", "[0]buy milk"},
		{"empty note hash", "[0]> buy milk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if err := os.WriteFile(s.TodoFile(), []byte(tt.line+"\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := s.ReadTasks()
			var storeErr *StoreError
			if !errors.As(err, &storeErr) {
				t.Fatalf("err = %v, want StoreError", err)
			}
			if !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error does not name the line: %v", err)
			}
		})
	}
}

func TestReadTasksSkipsBlankLines(t *testing.T) {
	s := newTestStore(t)

	content := "[0] buy milk\n\n[1] call mom\n"
	if err := os.WriteFile(s.TodoFile(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ReadTasks()
	if err != nil {
		t.Fatalf("ReadTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len(tasks) = %d, want 2", len(tasks))
	}
}

func TestFlagPreservedVerbatim(t *testing.T) {
	s := newTestStore(t)

	// calcurse flags can be multi-character; they pass through untouched.
	if err := os.WriteFile(s.TodoFile(), []byte("[-1] done task\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ReadTasks()
	if err != nil {
		t.Fatalf("ReadTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Flag != "-1" {
		t.Errorf("tasks = %+v, want one task with flag -1", tasks)
	}
}

func TestNoteHashStable(t *testing.T) {
	// sha1 of "hello\n"
	const want = "f572d396fae9206628714fb2ce00f72e94f2258f"
	if got := NoteHash("hello"); got != want {
		t.Errorf("NoteHash(hello) = %s, want %s", got, want)
	}
}

func TestAppendTasksEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendTasks(nil); err != nil {
		t.Fatalf("AppendTasks(nil): %v", err)
	}
	if _, err := os.Stat(s.TodoFile()); !os.IsNotExist(err) {
		t.Error("empty append created the todo file")
	}
}
