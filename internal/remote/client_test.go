package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTasksSortsByPosition(t *testing.T) {
	// The service orders items by update time and pads positions.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lists/list-1/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "t3", "title": "third", "position": "00000000000000000002"},
				{"id": "t1", "title": "first", "position": "00000000000000000000"},
				{"id": "t2", "title": "second", "position": "00000000000000000001"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	tasks, err := c.ListTasks(context.Background(), "list-1")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(tasks) != len(want) {
		t.Fatalf("len(tasks) = %d, want %d", len(tasks), len(want))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("tasks[%d].Title = %s, want %s", i, tasks[i].Title, title)
		}
	}
}

func TestListTasksMalformedPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "t1", "title": "first", "position": "not-a-number"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.ListTasks(context.Background(), "list-1")

	var remoteErr *Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
}

func TestErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 404, "message": "Task list not found.", "status": "NOT_FOUND"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.GetTaskList(context.Background(), "missing")

	var remoteErr *Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if remoteErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", remoteErr.StatusCode)
	}
	if remoteErr.Reason != "Task list not found." {
		t.Errorf("Reason = %q", remoteErr.Reason)
	}
	if !NotFound(err) {
		t.Error("NotFound(err) = false")
	}
}

func TestCreateTaskSendsTitleAndNotes(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "t1", "title": got["title"], "notes": got["notes"], "position": "00000000000000000000",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 0)
	task, err := c.CreateTask(context.Background(), "list-1", NewTask{Title: "buy milk", Note: "two litres"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if got["title"] != "buy milk" || got["notes"] != "two litres" {
		t.Errorf("request body = %v", got)
	}
	if task.Title != "buy milk" || task.Note != "two litres" {
		t.Errorf("task = %+v", task)
	}
}

func TestCreateTaskOmitsEmptyNotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["notes"]; ok {
			t.Error("request body carries an empty notes field")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "t1", "title": body["title"], "position": "00000000000000000000",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	if _, err := c.CreateTask(context.Background(), "list-1", NewTask{Title: "buy milk"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
}

func TestCreateTaskListValidatesLocally(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.CreateTaskList(context.Background(), "   ")

	var remoteErr *Error
	if !errors.As(err, &remoteErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if calls != 0 {
		t.Errorf("invalid title reached the server %d times", calls)
	}
}

func TestListTaskListsPassesMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "25" {
			t.Errorf("maxResults = %q, want 25", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "l1", "title": "groceries", "updated": "2026-08-20T10:00:00.000Z"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	lists, err := c.ListTaskLists(context.Background(), 25)
	if err != nil {
		t.Fatalf("ListTaskLists: %v", err)
	}
	if len(lists) != 1 || lists[0].Title != "groceries" {
		t.Fatalf("lists = %+v", lists)
	}
	if lists[0].Updated.IsZero() {
		t.Error("Updated not parsed")
	}
}
