package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to a Google-Tasks-shaped REST API.
//
// Only the fields id, title, updated, notes and position are read from
// responses; everything else the server sends is ignored.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
// token may be empty for services that need no authentication (tests).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Wire shapes. The task service sends positions as zero-padded decimal
// strings; they are parsed to int at this boundary.

type wireTaskList struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Updated string `json:"updated"`
}

type wireTaskListPage struct {
	Items []wireTaskList `json:"items"`
}

type wireTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	Position string `json:"position"`
	Updated  string `json:"updated"`
}

type wireTaskPage struct {
	Items []wireTask `json:"items"`
}

type wireErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ListTaskLists enumerates task lists, up to maxResults when positive.
func (c *Client) ListTaskLists(ctx context.Context, maxResults int) ([]TaskList, error) {
	const op = "listTaskLists"

	query := url.Values{}
	if maxResults > 0 {
		query.Set("maxResults", strconv.Itoa(maxResults))
	}

	var page wireTaskListPage
	if err := c.do(ctx, op, http.MethodGet, "/users/@me/lists", query, nil, &page); err != nil {
		return nil, err
	}

	lists := make([]TaskList, 0, len(page.Items))
	for _, item := range page.Items {
		lists = append(lists, decodeTaskList(item))
	}
	return lists, nil
}

// GetTaskList fetches a single task list by ID.
func (c *Client) GetTaskList(ctx context.Context, id string) (TaskList, error) {
	const op = "getTaskList"

	var item wireTaskList
	if err := c.do(ctx, op, http.MethodGet, "/users/@me/lists/"+url.PathEscape(id), nil, nil, &item); err != nil {
		return TaskList{}, err
	}
	return decodeTaskList(item), nil
}

// CreateTaskList creates a new task list with the given title.
func (c *Client) CreateTaskList(ctx context.Context, title string) (TaskList, error) {
	const op = "createTaskList"

	if err := ValidateListTitle(title); err != nil {
		return TaskList{}, &Error{Op: op, Err: err}
	}

	body := map[string]string{"title": title}
	var item wireTaskList
	if err := c.do(ctx, op, http.MethodPost, "/users/@me/lists", nil, body, &item); err != nil {
		return TaskList{}, err
	}
	return decodeTaskList(item), nil
}

// RenameTaskList patches the title of an existing task list.
func (c *Client) RenameTaskList(ctx context.Context, id, newTitle string) error {
	const op = "renameTaskList"

	if err := ValidateListTitle(newTitle); err != nil {
		return &Error{Op: op, Err: err}
	}

	body := map[string]string{"title": newTitle}
	return c.do(ctx, op, http.MethodPatch, "/users/@me/lists/"+url.PathEscape(id), nil, body, nil)
}

// DeleteTaskList deletes a task list by ID.
func (c *Client) DeleteTaskList(ctx context.Context, id string) error {
	const op = "deleteTaskList"
	return c.do(ctx, op, http.MethodDelete, "/users/@me/lists/"+url.PathEscape(id), nil, nil, nil)
}

// ListTasks returns the tasks of a list, sorted by position ascending.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]Task, error) {
	const op = "listTasks"

	var page wireTaskPage
	if err := c.do(ctx, op, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/tasks", nil, nil, &page); err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(page.Items))
	for _, item := range page.Items {
		task, err := decodeTask(item)
		if err != nil {
			return nil, &Error{Op: op, Err: err}
		}
		tasks = append(tasks, task)
	}

	// The server orders by update time; position is authoritative.
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})

	return tasks, nil
}

// CreateTask inserts a task at the end of the given list.
func (c *Client) CreateTask(ctx context.Context, listID string, t NewTask) (Task, error) {
	const op = "createTask"

	if err := ValidateTaskTitle(t.Title); err != nil {
		return Task{}, &Error{Op: op, Err: err}
	}

	body := map[string]string{"title": t.Title}
	if t.Note != "" {
		body["notes"] = t.Note
	}

	var item wireTask
	if err := c.do(ctx, op, http.MethodPost, "/lists/"+url.PathEscape(listID)+"/tasks", nil, body, &item); err != nil {
		return Task{}, err
	}

	task, err := decodeTask(item)
	if err != nil {
		return Task{}, &Error{Op: op, Err: err}
	}
	return task, nil
}

// do performs one HTTP round trip and decodes the response into out.
// Every failure comes back as a *Error; there are no retries here.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Reason: readReason(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

// readReason extracts the short error message from an error response body.
func readReason(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	var body wireErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return ""
}

func decodeTaskList(item wireTaskList) TaskList {
	return TaskList{
		ID:      item.ID,
		Title:   item.Title,
		Updated: parseTime(item.Updated),
	}
}

func decodeTask(item wireTask) (Task, error) {
	pos, err := strconv.Atoi(item.Position)
	if err != nil {
		return Task{}, fmt.Errorf("task %s has malformed position %q", item.ID, item.Position)
	}
	return Task{
		ID:       item.ID,
		Title:    item.Title,
		Note:     item.Notes,
		Position: pos,
		Updated:  parseTime(item.Updated),
	}, nil
}

// parseTime parses an RFC 3339 timestamp, returning the zero time on
// failure. Timestamps are informational only; ordering never uses them.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
