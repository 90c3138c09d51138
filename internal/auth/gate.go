// Package auth implements the admin gate: a single shared password guarding
// the admin surface. The authenticated flag is process-wide, optionally
// persisted through a StateStore, and resynchronized when another process
// alters the persisted state.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"sync"
)

// StateKey is the persisted-flag key.
const StateKey = "isAuthenticated"

// Gate holds the authenticated flag.
type Gate struct {
	secret string
	store  StateStore
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.RWMutex
	authenticated bool
}

// NewGate creates a gate for the configured secret, restoring the
// authenticated flag from the store. store may be nil for session-only
// operation.
func NewGate(secret string, store StateStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		secret: secret,
		store:  store,
		logger: logger,
	}

	if store != nil {
		if v, ok := store.Get(StateKey); ok && v == "true" {
			g.authenticated = true
		}
	}

	return g
}

// Start begins watching for external state changes.
func (g *Gate) Start(ctx context.Context) error {
	g.ctx, g.cancel = context.WithCancel(ctx)

	if g.store != nil {
		g.wg.Add(1)
		go g.watchLoop()
	}
	return nil
}

// Stop ends the watch loop.
func (g *Gate) Stop(ctx context.Context) error {
	if g.cancel != nil {
		g.cancel()
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login flips the flag on an exact password match. With remember set, the
// flag is persisted and survives a restart.
func (g *Gate) Login(password string, remember bool) bool {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.secret)) != 1 {
		return false
	}

	g.mu.Lock()
	g.authenticated = true
	g.mu.Unlock()

	if remember && g.store != nil {
		if err := g.store.Set(StateKey, "true"); err != nil {
			g.logger.Warn("failed to persist auth state", "err", err)
		}
	}
	return true
}

// Logout clears the flag, including any persisted copy.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.authenticated = false
	g.mu.Unlock()

	if g.store != nil {
		if err := g.store.Delete(StateKey); err != nil {
			g.logger.Warn("failed to clear auth state", "err", err)
		}
	}
}

// Authenticated reports the current flag.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// watchLoop resyncs the flag when another process touched the state file.
func (g *Gate) watchLoop() {
	defer g.wg.Done()

	for {
		select {
		case <-g.ctx.Done():
			return
		case _, ok := <-g.store.Watch():
			if !ok {
				return
			}
			v, found := g.store.Get(StateKey)
			auth := found && v == "true"

			g.mu.Lock()
			changed := g.authenticated != auth
			g.authenticated = auth
			g.mu.Unlock()

			if changed {
				g.logger.Info("auth state resynced from store", "authenticated", auth)
			}
		}
	}
}
