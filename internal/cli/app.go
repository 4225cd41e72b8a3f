// Package cli implements the interactive console for the secure notes
// vault: a read-eval-print loop with a pre-login command set (register,
// login) and a post-login command set over the decrypted note collection.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"securenotes/internal/config"
	"securenotes/internal/logging"
	"securenotes/internal/session"
)

// App holds the wiring for one console run. Before login only manager is
// live; res carries the established session afterwards.
type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *session.Manager
	reader  *bufio.Reader

	res      *session.Result
	dirty    bool
	lastSave time.Time
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	m, err := session.NewManager(c.DataDir, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		config:  c,
		logger:  logger,
		manager: m,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.res != nil
}

// Run starts the REPL and flushes unsaved notes on the way out.
func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
	if a.isLoggedIn() {
		a.saveNow(ctx)
	}
}

// markDirty records that the collection changed and needs persisting.
func (a *App) markDirty() {
	a.dirty = true
}

// maybeAutoSave persists the collection when it is dirty and the configured
// interval has passed since the last write. Failures are logged and left
// dirty so the next pass retries.
func (a *App) maybeAutoSave(ctx context.Context) {
	if !a.isLoggedIn() || !a.dirty {
		return
	}
	if time.Since(a.lastSave) < a.config.AutoSaveInterval {
		return
	}
	a.saveNow(ctx)
}

func (a *App) saveNow(ctx context.Context) {
	if err := a.manager.Notes.Save(ctx, a.res.User.ID, a.res.Notes, a.res.Crypto); err != nil {
		a.logger.Error(ctx, "saving notes failed, will retry", "error", err)
		return
	}
	a.dirty = false
	a.lastSave = time.Now()
}
