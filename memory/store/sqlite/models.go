package sqlite

import (
	"encoding/json"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
)

// entryRow is the gorm model for one memory entry. Metadata is stored as a
// serialized JSON object so substring search can cover it.
type entryRow struct {
	ID             string     `gorm:"primaryKey"`
	UserID         string     `gorm:"index:idx_entries_user_created,priority:1"`
	SessionID      string
	ConversationID string
	Kind           string
	Content        string
	Metadata       string
	ResponderID    string
	RelevanceScore float64
	CreatedAt      time.Time  `gorm:"index:idx_entries_user_created,priority:2"`
	ExpiresAt      *time.Time `gorm:"index"`
}

func (entryRow) TableName() string {
	return "memory_entries"
}

// conversationRow is the gorm model for one conversation result. Responses
// are stored as serialized JSON; ResponderCount is denormalized for the
// stats aggregate.
type conversationRow struct {
	ID                   string    `gorm:"primaryKey"`
	UserID               string    `gorm:"index:idx_conversations_user_created,priority:1"`
	SessionID            string
	Query                string
	Responses            string
	ResponderCount       int
	TotalExecutionTimeMs int64
	CreatedAt            time.Time `gorm:"index:idx_conversations_user_created,priority:2"`
}

func (conversationRow) TableName() string {
	return "conversations"
}

func entryToRow(e core.MemoryEntry) (entryRow, error) {
	var meta string
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return entryRow{}, err
		}
		meta = string(b)
	}
	return entryRow{
		ID:             e.ID,
		UserID:         e.UserID,
		SessionID:      e.SessionID,
		ConversationID: e.ConversationID,
		Kind:           string(e.Kind),
		Content:        e.Content,
		Metadata:       meta,
		ResponderID:    e.ResponderID,
		RelevanceScore: e.RelevanceScore,
		CreatedAt:      e.CreatedAt,
		ExpiresAt:      e.ExpiresAt,
	}, nil
}

func rowToEntry(r entryRow) core.MemoryEntry {
	var meta map[string]string
	if r.Metadata != "" {
		// Metadata was written by entryToRow; on a decode failure the
		// entry is still usable without it.
		_ = json.Unmarshal([]byte(r.Metadata), &meta)
	}
	return core.MemoryEntry{
		ID:             r.ID,
		UserID:         r.UserID,
		SessionID:      r.SessionID,
		ConversationID: r.ConversationID,
		Kind:           core.EntryKind(r.Kind),
		Content:        r.Content,
		Metadata:       meta,
		ResponderID:    r.ResponderID,
		RelevanceScore: r.RelevanceScore,
		CreatedAt:      r.CreatedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

func conversationToRow(c *core.ConversationResult) (conversationRow, error) {
	responses, err := json.Marshal(c.Responses)
	if err != nil {
		return conversationRow{}, err
	}
	return conversationRow{
		ID:                   c.ID,
		UserID:               c.UserID,
		SessionID:            c.SessionID,
		Query:                c.Query,
		Responses:            string(responses),
		ResponderCount:       len(c.Responses),
		TotalExecutionTimeMs: c.TotalExecutionTimeMs,
		CreatedAt:            c.CreatedAt,
	}, nil
}

func rowToConversation(r conversationRow) (core.ConversationResult, error) {
	var responses []core.ResponderAnswer
	if r.Responses != "" {
		if err := json.Unmarshal([]byte(r.Responses), &responses); err != nil {
			return core.ConversationResult{}, err
		}
	}
	return core.ConversationResult{
		ID:                   r.ID,
		UserID:               r.UserID,
		SessionID:            r.SessionID,
		Query:                r.Query,
		Responses:            responses,
		TotalExecutionTimeMs: r.TotalExecutionTimeMs,
		CreatedAt:            r.CreatedAt,
	}, nil
}
