package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasksync/internal/cache"
	"tasksync/internal/config"
	"tasksync/internal/local"
	"tasksync/internal/remote"
	"tasksync/internal/style"
	"tasksync/internal/tui"
)

// app bundles the wired-up pieces every command needs.
type app struct {
	cfg   config.Config
	svc   remote.Service
	cache *cache.Cache
	store *local.Store
}

// newApp loads config and credentials and constructs the remote client,
// title cache and local store.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	token, err := cfg.Token()
	if err != nil {
		return nil, fmt.Errorf("loading API token: %w (set token_file in the config)", err)
	}

	svc := remote.NewClient(cfg.Remote.BaseURL, token,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)

	return &app{
		cfg:   cfg,
		svc:   svc,
		cache: cache.New(cfg.CacheFile, svc, cfg.Remote.MaxResults),
		store: local.NewStore(cfg.TodoFile(), cfg.NotesDir()),
	}, nil
}

// resolveOne maps a title to exactly one task list. selector is the
// zero-based list number from -l, or negative for none. When the title is
// ambiguous, pick is set and stdout is a terminal, an interactive picker
// is shown instead of failing.
func (a *app) resolveOne(ctx context.Context, title string, selector int, pick bool) (cache.Entry, error) {
	refs, err := a.cache.ResolveRefs(ctx, title)
	if err != nil {
		return cache.Entry{}, err
	}

	entry, err := cache.Select(title, refs, selector)
	if err == nil {
		return entry, nil
	}

	var ambig *cache.AmbiguousError
	if errors.As(err, &ambig) && pick && style.Interactive() {
		idx, pickErr := tui.Pick(title, ambig.Candidates)
		if pickErr != nil {
			return cache.Entry{}, pickErr
		}
		return ambig.Candidates[idx], nil
	}
	return cache.Entry{}, err
}
