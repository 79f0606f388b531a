package session

import (
	"context"
	"time"

	"github.com/alphadose/haxmap"
)

type MemoryStore struct {
	sessions *haxmap.Map[string, Session]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: haxmap.New[string, Session]()}
}

func (store *MemoryStore) Create(_ context.Context, session Session) error {
	store.sessions.Set(session.ID, session)
	return nil
}

func (store *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	session, ok := store.sessions.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (store *MemoryStore) Touch(_ context.Context, id string, at time.Time) error {
	return store.update(id, func(session *Session) {
		if at.After(session.LastActivity) {
			session.LastActivity = at
		}
	})
}

func (store *MemoryStore) SetStation(_ context.Context, id string, station string, at time.Time) error {
	return store.update(id, func(session *Session) {
		session.Station = station
		if at.After(session.LastActivity) {
			session.LastActivity = at
		}
	})
}

func (store *MemoryStore) Delete(_ context.Context, id string) error {
	store.sessions.Del(id)
	return nil
}

func (store *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	expired := make([]string, 0)
	store.sessions.ForEach(func(id string, session Session) bool {
		if session.LastActivity.Before(cutoff) {
			expired = append(expired, id)
		}
		return true
	})
	if len(expired) > 0 {
		store.sessions.Del(expired...)
	}
	return len(expired), nil
}

func (store *MemoryStore) Len() int {
	return int(store.sessions.Len())
}

// update retries mutate against the latest value until the swap lands.
// A key deleted in between is never written back.
func (store *MemoryStore) update(id string, mutate func(*Session)) error {
	for {
		current, ok := store.sessions.Get(id)
		if !ok {
			return ErrNotFound
		}
		next := current
		mutate(&next)
		if store.sessions.CompareAndSwap(id, current, next) {
			return nil
		}
	}
}
