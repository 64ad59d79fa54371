package app

import (
	"context"
	"fmt"

	"github.com/allisson/compvault/internal/session"
	sessionHTTP "github.com/allisson/compvault/internal/session/http"
	sessionRepository "github.com/allisson/compvault/internal/session/repository"
)

// SessionManager returns the password session. Locking it wipes the key cache. The
// verifier is loaded from the database, and a first unlock is checked against the
// latest stored record.
func (c *Container) SessionManager() (*session.Manager, error) {
	c.sessionManagerInit.Do(func() {
		manager, err := c.initSessionManager()
		c.remember("sessionManager", err)
		c.sessionManager = manager
	})
	if err := c.initError("sessionManager"); err != nil {
		return nil, err
	}
	return c.sessionManager, nil
}

// SessionHandler returns the HTTP handler for the session endpoints.
func (c *Container) SessionHandler() (*sessionHTTP.SessionHandler, error) {
	c.sessionHandlerInit.Do(func() {
		manager, err := c.SessionManager()
		if err != nil {
			c.remember("sessionHandler", fmt.Errorf("failed to get session manager for session handler: %w", err))
			return
		}
		c.sessionHandler = sessionHTTP.NewSessionHandler(manager, c.Logger())
	})
	if err := c.initError("sessionHandler"); err != nil {
		return nil, err
	}
	return c.sessionHandler, nil
}

func (c *Container) initSessionManager() (*session.Manager, error) {
	store, err := c.initVerifierStore()
	if err != nil {
		return nil, err
	}
	recordUseCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for session manager: %w", err)
	}

	manager, err := c.newSessionManager(
		session.WithVerifierStore(store),
		session.WithPasswordCheck(recordUseCase.CheckPassword),
	)
	if err != nil {
		return nil, err
	}
	if err := manager.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load session verifier: %w", err)
	}
	return manager, nil
}

func (c *Container) initVerifierStore() (session.VerifierStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for verifier store: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return sessionRepository.NewMySQLVerifierRepository(db), nil
	case "postgres":
		return sessionRepository.NewPostgreSQLVerifierRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) newSessionManager(opts ...session.Option) (*session.Manager, error) {
	keyCache, err := c.KeyCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get key cache for session manager: %w", err)
	}

	manager, err := session.NewManager(session.Config{
		Window:           c.config.SessionWindow,
		MaxWindow:        c.config.SessionMaxWindow,
		UnlockRatePerSec: c.config.SessionUnlockRatePerSec,
		UnlockBurst:      c.config.SessionUnlockBurst,
	}, keyCache, c.Logger(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}
	return manager, nil
}
