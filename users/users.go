// Package users holds the explicitly constructed user/session registry.
// It replaces ambient global maps: built at process start, passed into the
// engine, torn down with it.
package users

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maravaman/intent-orchestra-nexus/core"
)

// ErrUnknownUser is returned for operations on an unregistered user ID.
var ErrUnknownUser = errors.New("unknown user")

// ErrStaleSession is returned when a presented session ID is not the
// user's current one.
var ErrStaleSession = errors.New("stale session")

// Registry keeps users and their single active session in memory, keyed by
// user ID. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*core.User
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*core.User)}
}

// Create registers a new user with a fresh session and returns a copy.
func (r *Registry) Create(name string) core.User {
	now := time.Now()
	u := &core.User{
		ID:           uuid.New().String(),
		Name:         name,
		CreatedAt:    now,
		LastActiveAt: now,
		SessionID:    uuid.New().String(),
	}

	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()

	return *u
}

// Get returns a copy of the user.
func (r *Registry) Get(userID string) (core.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return core.User{}, false
	}
	return *u, true
}

// RefreshSession mints a new session ID for the user, invalidating the
// previous one, and returns it.
func (r *Registry) RefreshSession(userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return "", ErrUnknownUser
	}
	u.SessionID = uuid.New().String()
	u.LastActiveAt = time.Now()
	return u.SessionID, nil
}

// ValidateSession checks that sessionID is the user's current session.
func (r *Registry) ValidateSession(userID, sessionID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUnknownUser
	}
	if u.SessionID != sessionID {
		return ErrStaleSession
	}
	return nil
}

// Touch updates the user's last-active time.
func (r *Registry) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		u.LastActiveAt = time.Now()
	}
}

// SetPreferences replaces the user's preference bag.
func (r *Registry) SetPreferences(userID string, prefs core.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUnknownUser
	}
	u.Preferences = prefs
	return nil
}

// Preferences returns the user's preference bag.
func (r *Registry) Preferences(userID string) (core.Preferences, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return core.Preferences{}, false
	}
	return u.Preferences, true
}
