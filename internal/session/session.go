package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

type Session struct {
	ID           string    `json:"id"`
	UserID       uint      `json:"user_id"`
	Station      string    `json:"station"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func (session Session) HasStation() bool {
	return strings.TrimSpace(session.Station) != ""
}

// Store persists sessions. Touch and SetStation update single fields of an
// existing session and report ErrNotFound instead of re-creating one that
// was ended or swept in the meantime.
type Store interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Touch moves last activity forward to at. It never moves it back.
	Touch(ctx context.Context, id string, at time.Time) error
	SetStation(ctx context.Context, id string, station string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions idle since before cutoff and reports how many.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Manager applies a sliding inactivity timeout on top of a Store.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	now         func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(manager *Manager) {
		manager.now = now
	}
}

func NewManager(store Store, idleTimeout time.Duration, options ...Option) *Manager {
	manager := &Manager{
		store:       store,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

func (manager *Manager) IdleTimeout() time.Duration {
	return manager.idleTimeout
}

func (manager *Manager) Start(ctx context.Context, userID uint) (Session, error) {
	now := manager.now()
	session := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := manager.store.Create(ctx, session); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Resolve loads a live session. With touch set the idle timer restarts;
// an expired session is removed and reported as ErrExpired.
func (manager *Manager) Resolve(ctx context.Context, id string, touch bool) (Session, error) {
	if strings.TrimSpace(id) == "" {
		return Session{}, ErrNotFound
	}

	session, err := manager.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}

	now := manager.now()
	if manager.expired(session, now) {
		if err := manager.store.Delete(ctx, id); err != nil {
			logger.Warnf(ctx, "delete expired session %s: %v", id, err)
		}
		return Session{}, ErrExpired
	}

	if touch {
		if err := manager.store.Touch(ctx, id, now); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Session{}, ErrNotFound
			}
			return Session{}, fmt.Errorf("touch session: %w", err)
		}
		session.LastActivity = now
	}
	return session, nil
}

func (manager *Manager) SetStation(ctx context.Context, id string, station string) (Session, error) {
	session, err := manager.Resolve(ctx, id, false)
	if err != nil {
		return Session{}, err
	}

	now := manager.now()
	station = strings.TrimSpace(station)
	if err := manager.store.SetStation(ctx, id, station, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("save station: %w", err)
	}
	session.Station = station
	if now.After(session.LastActivity) {
		session.LastActivity = now
	}
	return session, nil
}

func (manager *Manager) End(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return manager.store.Delete(ctx, id)
}

func (manager *Manager) Remaining(session Session) time.Duration {
	remaining := manager.idleTimeout - manager.now().Sub(session.LastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (manager *Manager) Sweep(ctx context.Context) (int, error) {
	return manager.store.DeleteExpired(ctx, manager.now().Add(-manager.idleTimeout))
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (manager *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := manager.Sweep(ctx)
			if err != nil {
				logger.Warnf(ctx, "sweep expired sessions: %v", err)
				continue
			}
			if removed > 0 {
				logger.Debugf(ctx, "swept %d expired sessions", removed)
			}
		}
	}
}

func (manager *Manager) expired(session Session, now time.Time) bool {
	return now.Sub(session.LastActivity) > manager.idleTimeout
}
