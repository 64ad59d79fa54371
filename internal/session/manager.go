// Package session holds the user's password in memory for a bounded window so that
// callers do not have to supply it on every request.
//
// The password is verified against an Argon2id verifier hash and purged when the
// window ends or the session is locked. Locking also wipes the derived-key cache.
// The verifier is persisted through a VerifierStore so it survives restarts.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/errors"
)

// KeyInvalidator drops every derived key held in memory.
type KeyInvalidator interface {
	InvalidateAll()
}

// VerifierStore persists the verifier hash. LoadVerifier returns "" when none is stored.
type VerifierStore interface {
	LoadVerifier(ctx context.Context) (string, error)
	SaveVerifier(ctx context.Context, hash string) error
}

// PasswordCheck confirms a password against data that already exists. It must return
// an error matching cryptoDomain.ErrDecryptionFailed when the password is wrong.
type PasswordCheck func(ctx context.Context, password string) error

// Option configures a Manager.
type Option func(*Manager)

// WithVerifierStore persists the verifier in store.
func WithVerifierStore(store VerifierStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithPasswordCheck consults check before the first verifier is created.
func WithPasswordCheck(check PasswordCheck) Option {
	return func(m *Manager) {
		m.check = check
	}
}

// Config holds session bounds.
type Config struct {
	// Window is the default unlock duration.
	Window time.Duration

	// MaxWindow caps caller-requested windows.
	MaxWindow time.Duration

	// UnlockRatePerSec and UnlockBurst throttle unlock attempts.
	UnlockRatePerSec float64
	UnlockBurst      int
}

// Status describes the session without exposing the password.
type Status struct {
	Unlocked    bool       `json:"unlocked"`
	HasVerifier bool       `json:"has_verifier"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Manager holds at most one password at a time.
type Manager struct {
	cfg         Config
	hasher      *pwdhash.PasswordHasher
	limiter     *rate.Limiter
	invalidator KeyInvalidator
	store       VerifierStore
	check       PasswordCheck
	logger      *slog.Logger

	mu        sync.Mutex
	verifier  string
	password  []byte
	expiresAt time.Time
	timer     *time.Timer
}

// NewManager creates a locked session manager. Call Load to restore a stored verifier;
// otherwise the first successful unlock creates one.
func NewManager(
	cfg Config,
	invalidator KeyInvalidator,
	logger *slog.Logger,
	opts ...Option,
) (*Manager, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create password hasher")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.MaxWindow < cfg.Window {
		cfg.MaxWindow = cfg.Window
	}
	if cfg.UnlockRatePerSec <= 0 {
		cfg.UnlockRatePerSec = 0.2
	}
	if cfg.UnlockBurst <= 0 {
		cfg.UnlockBurst = 5
	}

	m := &Manager{
		cfg:         cfg,
		hasher:      hasher,
		limiter:     rate.NewLimiter(rate.Limit(cfg.UnlockRatePerSec), cfg.UnlockBurst),
		invalidator: invalidator,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Load restores the verifier from the store. It is a no-op without a store.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	hash, err := m.store.LoadVerifier(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load session verifier")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifier = hash
	return nil
}

// Unlock verifies password and holds it for window. A zero window selects the default;
// longer windows are capped.
//
// Without a verifier the password is first checked against existing records, then
// hashed and stored as the verifier.
func (m *Manager) Unlock(ctx context.Context, password string, window time.Duration) (Status, error) {
	if !m.limiter.Allow() {
		return Status{}, ErrTooManyAttempts
	}
	if utf8.RuneCountInString(password) < cryptoDomain.MinPasswordLength {
		return Status{}, cryptoDomain.ErrWeakPassword
	}
	if window <= 0 {
		window = m.cfg.Window
	}
	window = min(window, m.cfg.MaxWindow)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.verifier == "" {
		if err := m.checkLocked(ctx, password); err != nil {
			return Status{}, err
		}
		hash, err := m.hasher.Hash([]byte(password))
		if err != nil {
			return Status{}, errors.Wrap(err, "failed to hash password")
		}
		if err := m.saveLocked(ctx, hash); err != nil {
			return Status{}, err
		}
		m.verifier = hash
	} else {
		ok, err := m.hasher.Verify([]byte(password), m.verifier)
		if err != nil || !ok {
			m.logger.Warn("session unlock rejected")
			return Status{}, ErrInvalidCredentials
		}
	}

	m.purgeLocked()
	m.password = []byte(password)
	m.expiresAt = time.Now().Add(window)
	m.timer = time.AfterFunc(window, m.expire)

	return m.statusLocked(), nil
}

// Password returns the held password while the session is unlocked.
func (m *Manager) Password() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.password == nil {
		return "", ErrLocked
	}
	if !time.Now().Before(m.expiresAt) {
		m.purgeLocked()
		return "", ErrLocked
	}
	return string(m.password), nil
}

// Lock purges the password and wipes the derived-key cache.
func (m *Manager) Lock() {
	m.mu.Lock()
	m.purgeLocked()
	m.mu.Unlock()

	if m.invalidator != nil {
		m.invalidator.InvalidateAll()
	}
}

// Status reports whether a password is held and until when.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.password != nil && !time.Now().Before(m.expiresAt) {
		m.purgeLocked()
	}
	return m.statusLocked()
}

// ChangeVerifier replaces the verifier after a password change. oldPassword must match
// the current verifier when one is set. The new verifier is stored before it takes
// effect. An unlocked session switches to newPassword.
func (m *Manager) ChangeVerifier(ctx context.Context, oldPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < cryptoDomain.MinPasswordLength {
		return cryptoDomain.ErrWeakPassword
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.verifier != "" {
		ok, err := m.hasher.Verify([]byte(oldPassword), m.verifier)
		if err != nil || !ok {
			return ErrInvalidCredentials
		}
	}

	hash, err := m.hasher.Hash([]byte(newPassword))
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	if err := m.saveLocked(ctx, hash); err != nil {
		return err
	}
	m.verifier = hash

	if m.password != nil {
		cryptoDomain.Zero(m.password)
		m.password = []byte(newPassword)
	}
	return nil
}

func (m *Manager) checkLocked(ctx context.Context, password string) error {
	if m.check == nil {
		return nil
	}
	err := m.check(ctx, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cryptoDomain.ErrDecryptionFailed):
		m.logger.Warn("session unlock rejected by existing records")
		return ErrInvalidCredentials
	default:
		return errors.Wrap(err, "failed to check password")
	}
}

func (m *Manager) saveLocked(ctx context.Context, hash string) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveVerifier(ctx, hash); err != nil {
		return errors.Wrap(err, "failed to save session verifier")
	}
	return nil
}

func (m *Manager) expire() {
	m.mu.Lock()
	if m.password == nil || time.Now().Before(m.expiresAt) {
		m.mu.Unlock()
		return
	}
	m.purgeLocked()
	m.mu.Unlock()

	m.logger.Info("session expired")
	if m.invalidator != nil {
		m.invalidator.InvalidateAll()
	}
}

func (m *Manager) purgeLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	cryptoDomain.Zero(m.password)
	m.password = nil
	m.expiresAt = time.Time{}
}

func (m *Manager) statusLocked() Status {
	status := Status{HasVerifier: m.verifier != ""}
	if m.password != nil {
		expiresAt := m.expiresAt
		status.Unlocked = true
		status.ExpiresAt = &expiresAt
	}
	return status
}
