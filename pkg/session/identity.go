// Package session supplies the identity token the response cache observes.
//
// The cache never authenticates. It only compares the token reported by a
// Source between calls and drops every entry when it changes.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Source reports the identity of the current authenticated session.
// An empty token means no user is logged in.
type Source interface {
	IdentityToken() string
}

// Static is a Source with a fixed token.
type Static string

// IdentityToken implements Source.
func (s Static) IdentityToken() string { return string(s) }

// Store persists the session token outside the process.
type Store interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// Tracker holds the current session token in memory. It is safe for
// concurrent use and optionally mirrors the token into a Store.
type Tracker struct {
	mu     sync.RWMutex
	token  string
	store  Store
	logger zerolog.Logger
}

// NewTracker creates a tracker. store may be nil.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// IdentityToken implements Source.
func (t *Tracker) IdentityToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Login adopts token as the current identity and persists it.
func (t *Tracker) Login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token cannot be empty")
	}

	t.mu.Lock()
	t.token = token
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Save(ctx, token); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	t.logger.Info().Msg("Session started")
	return nil
}

// Logout forgets the current identity and removes it from the store.
func (t *Tracker) Logout(ctx context.Context) error {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Delete(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	t.logger.Info().Msg("Session ended")
	return nil
}

// Refresh adopts whatever token the store currently holds, so that a
// login or logout performed by another process becomes visible here.
func (t *Tracker) Refresh(ctx context.Context) error {
	if t.store == nil {
		return nil
	}

	token, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	t.mu.Lock()
	changed := token != t.token
	t.token = token
	t.mu.Unlock()

	if changed {
		t.logger.Debug().Bool("logged_in", token != "").Msg("Session changed in store")
	}
	return nil
}

var (
	_ Source = Static("")
	_ Source = (*Tracker)(nil)
)
