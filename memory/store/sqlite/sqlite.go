// Package sqlite implements memory.Store on a sqlite database through gorm.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/logger"
	"github.com/maravaman/intent-orchestra-nexus/memory"
)

// Store is the sqlite-backed memory.Store.
type Store struct {
	db     *gorm.DB
	config *memory.Config
	log    *logger.Logger
}

var _ memory.Store = (*Store)(nil)

// New wraps an existing gorm DB and migrates the schema.
func New(db *gorm.DB, config *memory.Config, log *logger.Logger) (*Store, error) {
	if config == nil {
		config = memory.DefaultConfig
	}
	if log == nil {
		log = logger.NewNop()
	}
	if err := db.AutoMigrate(&entryRow{}, &conversationRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db, config: config, log: log.With("component", "memstore")}, nil
}

// Open opens (or creates) a sqlite database at path and wraps it.
func Open(path string, config *memory.Config, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return New(db, config, log)
}

// Append writes one entry. Short-term writes also prune that user's expired
// entries and evict the oldest beyond the cap, inside one transaction.
func (s *Store) Append(ctx context.Context, entry core.MemoryEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.appendTx(tx, entry)
	})
}

func (s *Store) appendTx(tx *gorm.DB, entry core.MemoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	row, err := entryToRow(entry)
	if err != nil {
		return fmt.Errorf("serialize entry: %w", err)
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	// Long-term writes never trigger retention work.
	if entry.ExpiresAt == nil {
		return nil
	}

	now := time.Now()
	if err := tx.
		Where("user_id = ? AND expires_at IS NOT NULL AND expires_at < ?", entry.UserID, now).
		Delete(&entryRow{}).Error; err != nil {
		return fmt.Errorf("prune expired: %w", err)
	}

	var count int64
	if err := tx.Model(&entryRow{}).
		Where("user_id = ? AND expires_at IS NOT NULL", entry.UserID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count short-term: %w", err)
	}
	if excess := count - int64(s.config.ShortTermCap); excess > 0 {
		var ids []string
		if err := tx.Model(&entryRow{}).
			Where("user_id = ? AND expires_at IS NOT NULL", entry.UserID).
			Order("created_at ASC, id ASC").
			Limit(int(excess)).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("select evictable: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&entryRow{}).Error; err != nil {
			return fmt.Errorf("evict oldest: %w", err)
		}
	}
	return nil
}

// StoreConversation persists the result row, one long-term entry holding
// the serialized result, and short-term entries for the query and each
// response. The whole compound write runs in a single transaction, so it is
// all-or-nothing on this backend.
func (s *Store) StoreConversation(ctx context.Context, result *core.ConversationResult) error {
	if result == nil {
		return fmt.Errorf("nil conversation result")
	}

	convRow, err := conversationToRow(result)
	if err != nil {
		return fmt.Errorf("serialize conversation: %w", err)
	}

	// The long-term entry carries the whole serialized result, so the
	// long-term tier alone can reconstruct the conversation.
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serialize conversation: %w", err)
	}

	longTerm := core.MemoryEntry{
		ID:             uuid.New().String(),
		UserID:         result.UserID,
		SessionID:      result.SessionID,
		ConversationID: result.ID,
		Kind:           core.EntryKindQuery,
		Content:        string(payload),
		Metadata:       map[string]string{"query": result.Query},
		CreatedAt:      result.CreatedAt,
	}

	expiry := result.CreatedAt.Add(s.config.ShortTermTTL)
	shortTerm := []core.MemoryEntry{{
		ID:             uuid.New().String(),
		UserID:         result.UserID,
		SessionID:      result.SessionID,
		ConversationID: result.ID,
		Kind:           core.EntryKindQuery,
		Content:        result.Query,
		CreatedAt:      result.CreatedAt,
		ExpiresAt:      &expiry,
	}}
	for _, answer := range result.Responses {
		shortTerm = append(shortTerm, core.MemoryEntry{
			ID:             uuid.New().String(),
			UserID:         result.UserID,
			SessionID:      result.SessionID,
			ConversationID: result.ID,
			Kind:           core.EntryKindResponse,
			Content:        answer.Text,
			Metadata:       map[string]string{"confidence": fmt.Sprintf("%.2f", answer.Confidence)},
			ResponderID:    answer.ResponderID,
			RelevanceScore: float64(answer.RelevanceScore),
			CreatedAt:      result.CreatedAt,
			ExpiresAt:      &expiry,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&convRow).Error; err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		if err := s.appendTx(tx, longTerm); err != nil {
			return err
		}
		for _, entry := range shortTerm {
			if err := s.appendTx(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("conversation stored",
		"user", result.UserID, "conversation", result.ID, "responses", len(result.Responses))
	return nil
}

// RelevantContext matches short-term entries against the qualifying tokens
// of the query, most-recent-first. With no qualifying tokens, the most
// recent entries are returned unconditionally so context stays non-empty
// for very short or symbolic queries.
func (s *Store) RelevantContext(ctx context.Context, userID, query string, limit int) ([]core.MemoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := s.db.WithContext(ctx).Model(&entryRow{}).
		Where("user_id = ? AND expires_at IS NOT NULL AND expires_at >= ?", userID, time.Now())

	if tokens := s.queryTokens(query); len(tokens) > 0 {
		cond := s.db.Where("lower(content) LIKE ?", "%"+tokens[0]+"%")
		for _, tok := range tokens[1:] {
			cond = cond.Or("lower(content) LIKE ?", "%"+tok+"%")
		}
		q = q.Where(cond)
	}

	var rows []entryRow
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	return rowsToEntries(rows), nil
}

// Search matches term case-insensitively against content and serialized
// metadata across both tiers.
func (s *Store) Search(ctx context.Context, userID, term string) ([]core.MemoryEntry, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	var rows []entryRow
	err := s.db.WithContext(ctx).Model(&entryRow{}).
		Where("user_id = ? AND (expires_at IS NULL OR expires_at >= ?)", userID, time.Now()).
		Where("lower(content) LIKE ? OR lower(metadata) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return rowsToEntries(rows), nil
}

// ConversationHistory returns the user's conversations, most-recent-first.
func (s *Store) ConversationHistory(ctx context.Context, userID string, limit, offset int) ([]core.ConversationResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []conversationRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	results := make([]core.ConversationResult, 0, len(rows))
	for _, row := range rows {
		result, err := rowToConversation(row)
		if err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", row.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Stats reports per-tier counts, oldest timestamps, and conversation
// aggregates for one user.
func (s *Store) Stats(ctx context.Context, userID string) (*memory.UserStats, error) {
	stats := &memory.UserStats{}

	shortTerm, err := s.tierStats(ctx, userID, "expires_at IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("short-term stats: %w", err)
	}
	stats.ShortTerm = shortTerm

	longTerm, err := s.tierStats(ctx, userID, "expires_at IS NULL")
	if err != nil {
		return nil, fmt.Errorf("long-term stats: %w", err)
	}
	stats.LongTerm = longTerm

	var convAgg struct {
		Count         int64
		AvgExec       float64
		AvgResponders float64
	}
	err = s.db.WithContext(ctx).Model(&conversationRow{}).
		Select("COUNT(*) AS count, COALESCE(AVG(total_execution_time_ms), 0) AS avg_exec, COALESCE(AVG(responder_count), 0) AS avg_responders").
		Where("user_id = ?", userID).
		Scan(&convAgg).Error
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	stats.Conversations = convAgg.Count
	stats.AvgExecutionTimeMs = convAgg.AvgExec
	stats.AvgRespondersPerQuery = convAgg.AvgResponders

	return stats, nil
}

// tierStats counts one tier and loads its oldest row. The oldest timestamp
// comes from a regular row read, not a MIN() aggregate, because the sqlite
// driver hands aggregates over datetime columns back as strings.
func (s *Store) tierStats(ctx context.Context, userID, tierCond string) (memory.TierStats, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entryRow{}).
		Where("user_id = ?", userID).
		Where(tierCond).
		Count(&count).Error
	if err != nil {
		return memory.TierStats{}, err
	}

	ts := memory.TierStats{Count: count}
	if count == 0 {
		return ts, nil
	}

	var rows []entryRow
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(tierCond).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return memory.TierStats{}, err
	}
	if len(rows) > 0 {
		ts.Oldest = &rows[0].CreatedAt
	}
	return ts, nil
}

// DeleteAll removes every row owned by the user across both tables.
func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entryRow{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&conversationRow{}).Error; err != nil {
			return fmt.Errorf("delete conversations: %w", err)
		}
		return nil
	})
}

// ExportAll returns the user's complete memory footprint, including
// already-expired short-term rows so the export is a strict superset of
// what DeleteAll removes.
func (s *Store) ExportAll(ctx context.Context, userID string) (*memory.Export, error) {
	export := &memory.Export{
		UserID:     userID,
		ExportedAt: time.Now(),
	}

	var rows []entryRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	for _, row := range rows {
		entry := rowToEntry(row)
		if entry.ShortTerm() {
			export.ShortTerm = append(export.ShortTerm, entry)
		} else {
			export.LongTerm = append(export.LongTerm, entry)
		}
	}

	var convRows []conversationRow
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&convRows).Error
	if err != nil {
		return nil, fmt.Errorf("export conversations: %w", err)
	}
	for _, row := range convRows {
		result, err := rowToConversation(row)
		if err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", row.ID, err)
		}
		export.Conversations = append(export.Conversations, result)
	}

	return export, nil
}

// Prune removes expired short-term entries across all users.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&entryRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// queryTokens splits the query into lower-cased tokens long enough to be
// meaningful for context matching.
func (s *Store) queryTokens(query string) []string {
	minLen := s.config.MinTokenLength
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		tok := strings.Trim(field, ".,!?;:'\"()")
		if len(tok) >= minLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func rowsToEntries(rows []entryRow) []core.MemoryEntry {
	entries := make([]core.MemoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}
