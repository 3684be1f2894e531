// Package engine computes and applies the creations needed to converge a
// remote task list and the local todo file.
//
// The engine only ever adds tasks. It never deletes or mutates existing
// tasks on either side, so a sync that is interrupted leaves both stores
// valid, and re-running a completed sync is a no-op.
package engine

import (
	"context"
	"fmt"
	"strings"

	"tasksync/internal/local"
	"tasksync/internal/remote"
)

// Task is the normalized comparison shape: a title plus a note, with an
// empty note equal to no note at all. Identifiers, positions and
// timestamps are stripped before comparison.
type Task struct {
	Title string
	Note  string
}

// Plan holds the creations computed by Diff.
type Plan struct {
	// MissingLocal are tasks present only on the remote side, in remote
	// position order. They are to be appended to the local file.
	MissingLocal []Task
	// MissingRemote are tasks present only in the local file, in the order
	// they appear there. They are to be created remotely.
	MissingRemote []Task
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.MissingLocal) == 0 && len(p.MissingRemote) == 0
}

// normalizeNote canonicalizes a note body for comparison. The local note
// store drops trailing newlines on read, so they carry no meaning; a note
// that is nothing but newlines equals no note at all.
func normalizeNote(note string) string {
	return strings.TrimRight(note, "\n")
}

// NormalizeRemote reduces remote tasks to the comparison shape. The input
// order (position ascending) is preserved.
func NormalizeRemote(tasks []remote.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{Title: t.Title, Note: normalizeNote(t.Note)}
	}
	return out
}

// NormalizeLocal reduces local tasks to the comparison shape. The file
// order is preserved.
func NormalizeLocal(tasks []local.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{Title: t.Title, Note: normalizeNote(t.Note)}
	}
	return out
}

// Diff computes the duplicate-preserving multiset difference in both
// directions. Two tasks with the same title and note count as two tasks,
// not one: for each distinct key the result carries
// max(0, countA-countB) copies.
func Diff(remoteTasks, localTasks []Task) Plan {
	return Plan{
		MissingLocal:  subtract(remoteTasks, localTasks),
		MissingRemote: subtract(localTasks, remoteTasks),
	}
}

// subtract returns the multiset a minus b, keeping a's order and one entry
// per uncancelled occurrence.
func subtract(a, b []Task) []Task {
	avail := make(map[Task]int, len(b))
	for _, t := range b {
		avail[t]++
	}

	var out []Task
	for _, t := range a {
		if avail[t] > 0 {
			avail[t]--
			continue
		}
		out = append(out, t)
	}
	return out
}

// RemoteStore is the slice of the remote adapter the engine needs.
type RemoteStore interface {
	ListTasks(ctx context.Context, listID string) ([]remote.Task, error)
	CreateTask(ctx context.Context, listID string, t remote.NewTask) (remote.Task, error)
}

// LocalStore is the slice of the local adapter the engine needs.
type LocalStore interface {
	ReadTasks() ([]local.Task, error)
	AppendTasks(tasks []local.Task) error
}

// Result summarizes one applied sync.
type Result struct {
	Plan          Plan
	CreatedLocal  int
	CreatedRemote int
}

// Engine converges one remote task list with one local store.
type Engine struct {
	remote RemoteStore
	local  LocalStore
}

// New creates an engine over the two adapters.
func New(remoteStore RemoteStore, localStore LocalStore) *Engine {
	return &Engine{remote: remoteStore, local: localStore}
}

// Plan fetches both sides and computes the creations a sync would make,
// without applying anything.
func (e *Engine) Plan(ctx context.Context, listID string) (Plan, error) {
	remoteTasks, err := e.remote.ListTasks(ctx, listID)
	if err != nil {
		return Plan{}, fmt.Errorf("fetching remote tasks: %w", err)
	}

	localTasks, err := e.local.ReadTasks()
	if err != nil {
		return Plan{}, fmt.Errorf("reading local tasks: %w", err)
	}

	return Diff(NormalizeRemote(remoteTasks), NormalizeLocal(localTasks)), nil
}

// Sync computes the plan and applies it: remote-only tasks are appended to
// the local file, local-only tasks are created remotely in file order.
func (e *Engine) Sync(ctx context.Context, listID string) (Result, error) {
	plan, err := e.Plan(ctx, listID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Plan: plan}

	for _, t := range plan.MissingRemote {
		if _, err := e.remote.CreateTask(ctx, listID, remote.NewTask{Title: t.Title, Note: t.Note}); err != nil {
			return res, fmt.Errorf("creating remote task %q: %w", t.Title, err)
		}
		res.CreatedRemote++
	}

	if len(plan.MissingLocal) > 0 {
		toAppend := make([]local.Task, len(plan.MissingLocal))
		for i, t := range plan.MissingLocal {
			toAppend[i] = local.Task{Flag: local.DefaultFlag, Title: t.Title, Note: t.Note}
		}
		if err := e.local.AppendTasks(toAppend); err != nil {
			return res, fmt.Errorf("appending local tasks: %w", err)
		}
		res.CreatedLocal = len(toAppend)
	}

	return res, nil
}
