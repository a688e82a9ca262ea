package core

import (
	"time"
)

// EntryKind classifies what a MemoryEntry holds.
type EntryKind string

const (
	// EntryKindQuery marks an entry holding a user query (or, for the
	// long-term tier, a serialized conversation keyed by its query).
	EntryKindQuery EntryKind = "query"

	// EntryKindResponse marks an entry holding a responder's answer text.
	EntryKindResponse EntryKind = "response"

	// EntryKindContext marks auxiliary context written by callers.
	EntryKindContext EntryKind = "context"
)

// MemoryEntry is one immutable row of conversation memory.
//
// ExpiresAt == nil marks a permanent (long-term) entry. A non-nil ExpiresAt
// marks a short-term entry subject to TTL expiry and the per-user cap.
// Entries are never updated in place; they are superseded by newer entries
// or removed wholesale with the owning user.
type MemoryEntry struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	SessionID      string            `json:"session_id"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Kind           EntryKind         `json:"kind"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ResponderID    string            `json:"responder_id,omitempty"`
	RelevanceScore float64           `json:"relevance_score"`
	CreatedAt      time.Time         `json:"created_at"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
}

// ShortTerm reports whether the entry lives in the short-term tier.
func (e MemoryEntry) ShortTerm() bool {
	return e.ExpiresAt != nil
}

// Expired reports whether the entry's TTL has passed at the given instant.
// Long-term entries never expire.
func (e MemoryEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// ResponderAnswer is one responder's scored answer within a batch.
//
// Error is set only when the responder's generation step failed; such
// answers carry a fixed low confidence and are kept in the batch unless at
// least one other answer succeeded.
type ResponderAnswer struct {
	ResponderID     string    `json:"responder_id"`
	ResponderName   string    `json:"responder_name"`
	Text            string    `json:"text"`
	Confidence      float64   `json:"confidence"`
	RelevanceScore  int       `json:"relevance_score"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	CreatedAt       time.Time `json:"created_at"`
	Error           string    `json:"error,omitempty"`
}

// Failed reports whether the answer is a degraded, error-tagged answer.
func (a ResponderAnswer) Failed() bool {
	return a.Error != ""
}

// ConversationResult is the outcome of one processed query: the ranked
// answers of every executed responder plus batch timing. Produced exactly
// once per query and persisted alongside its derived memory entries.
type ConversationResult struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	SessionID            string            `json:"session_id"`
	Query                string            `json:"query"`
	Responses            []ResponderAnswer `json:"responses"`
	TotalExecutionTimeMs int64             `json:"total_execution_time_ms"`
	CreatedAt            time.Time         `json:"created_at"`
}

// ResponderDescriptor is configuration data describing one responder.
// Keywords drive relevance scoring; behavior lives in the responder itself.
type ResponderDescriptor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	TopicType    string   `json:"topic_type"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities,omitempty"`
	Keywords     []string `json:"keywords"`
	Priority     int      `json:"priority"`
	Enabled      bool     `json:"enabled"`
}
