package core

import "time"

// Preferences is the per-user preference bag.
type Preferences struct {
	// PreferredResponders lists responder IDs the user favors. Routing may
	// apply a small bonus for these when preferences are supplied.
	PreferredResponders []string `json:"preferred_responders,omitempty"`

	// Verbosity hints how long answers should be ("short", "normal", "long").
	Verbosity string `json:"verbosity,omitempty"`

	// Locale is a BCP 47 tag for answer language.
	Locale string `json:"locale,omitempty"`
}

// Prefers reports whether the responder ID is in the preferred set.
func (p Preferences) Prefers(responderID string) bool {
	for _, id := range p.PreferredResponders {
		if id == responderID {
			return true
		}
	}
	return false
}

// User is an identity with at most one active session. Refreshing a session
// invalidates the previous SessionID.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActiveAt time.Time   `json:"last_active_at"`
	SessionID    string      `json:"session_id"`
	Preferences  Preferences `json:"preferences"`
}
