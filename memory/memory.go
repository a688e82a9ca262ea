package memory

import (
	"context"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
)

// Store is the tiered memory storage contract.
//
// Implementations must support concurrent reads and writes across different
// users without interference. StoreConversation is the only multi-row write
// and should be treated as a short critical section per user; last-write-wins
// for the capped short-term eviction is acceptable when two in-flight queries
// for the same user interleave.
type Store interface {
	// Append writes one entry. When the entry is short-term, the store also
	// prunes that user's expired short-term entries and evicts the oldest
	// entries beyond the configured cap, so a chatty user cannot grow the
	// tier without bound.
	Append(ctx context.Context, entry core.MemoryEntry) error

	// StoreConversation persists a finished conversation as a compound
	// write: one long-term entry holding the serialized result, one
	// short-term entry per query/response exchange, and the result row
	// itself. Partial failure is surfaced as an error.
	StoreConversation(ctx context.Context, result *core.ConversationResult) error

	// RelevantContext returns up to limit short-term entries whose content
	// contains at least one qualifying lower-cased query token,
	// most-recent-first. When the query yields no qualifying tokens the
	// limit most recent entries are returned unconditionally.
	RelevantContext(ctx context.Context, userID, query string, limit int) ([]core.MemoryEntry, error)

	// Search does a case-insensitive substring match over both tiers'
	// content and serialized metadata, most-recent-first.
	Search(ctx context.Context, userID, term string) ([]core.MemoryEntry, error)

	// ConversationHistory returns a paginated, most-recent-first list of
	// conversation results.
	ConversationHistory(ctx context.Context, userID string, limit, offset int) ([]core.ConversationResult, error)

	// Stats reports per-tier counts and oldest timestamps plus aggregate
	// conversation statistics for one user.
	Stats(ctx context.Context, userID string) (*UserStats, error)

	// DeleteAll removes every entry in both tiers and every conversation
	// for the user, leaving no orphaned rows.
	DeleteAll(ctx context.Context, userID string) error

	// ExportAll returns everything DeleteAll would remove. The export
	// round-trips losslessly through JSON.
	ExportAll(ctx context.Context, userID string) (*Export, error)

	// Prune removes short-term entries whose TTL has passed, across all
	// users, and reports how many rows were removed. Normally driven by a
	// Sweeper; Append prunes per user on write regardless.
	Prune(ctx context.Context) (int64, error)

	// Close releases resources.
	Close() error
}

// TierStats describes one retention tier for one user.
type TierStats struct {
	Count  int64      `json:"count"`
	Oldest *time.Time `json:"oldest,omitempty"`
}

// UserStats aggregates a user's memory footprint.
type UserStats struct {
	ShortTerm             TierStats `json:"short_term"`
	LongTerm              TierStats `json:"long_term"`
	Conversations         int64     `json:"conversations"`
	AvgExecutionTimeMs    float64   `json:"avg_execution_time_ms"`
	AvgRespondersPerQuery float64   `json:"avg_responders_per_query"`
}

// Export is the privacy-export payload: a superset of everything DeleteAll
// removes for the user, split by tier.
type Export struct {
	UserID        string                    `json:"user_id"`
	ExportedAt    time.Time                 `json:"exported_at"`
	ShortTerm     []core.MemoryEntry        `json:"short_term"`
	LongTerm      []core.MemoryEntry        `json:"long_term"`
	Conversations []core.ConversationResult `json:"conversations"`
}

// Config holds retention settings.
type Config struct {
	// ShortTermCap is the maximum short-term entries kept per user.
	// Oldest excess entries are discarded on write.
	ShortTermCap int

	// ShortTermTTL is the default TTL applied to short-term entries the
	// store derives itself (the per-exchange conversation entries).
	ShortTermTTL time.Duration

	// MinTokenLength is the minimum length of a query token for it to
	// qualify in RelevantContext matching.
	MinTokenLength int
}

// DefaultConfig returns the stock retention settings.
var DefaultConfig = &Config{
	ShortTermCap:   100,
	ShortTermTTL:   7 * 24 * time.Hour,
	MinTokenLength: 3,
}
