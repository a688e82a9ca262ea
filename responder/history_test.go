package responder_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/memory"
	"github.com/maravaman/intent-orchestra-nexus/responder"
)

// fakeStore serves canned history and search results to the history
// responder; everything else is unused here.
type fakeStore struct {
	history    []core.ConversationResult
	historyErr error
	hits       []core.MemoryEntry
	searchErr  error
}

func (f *fakeStore) Append(ctx context.Context, entry core.MemoryEntry) error { return nil }
func (f *fakeStore) StoreConversation(ctx context.Context, result *core.ConversationResult) error {
	return nil
}
func (f *fakeStore) RelevantContext(ctx context.Context, userID, query string, limit int) ([]core.MemoryEntry, error) {
	return nil, nil
}
func (f *fakeStore) Search(ctx context.Context, userID, term string) ([]core.MemoryEntry, error) {
	return f.hits, f.searchErr
}
func (f *fakeStore) ConversationHistory(ctx context.Context, userID string, limit, offset int) ([]core.ConversationResult, error) {
	return f.history, f.historyErr
}
func (f *fakeStore) Stats(ctx context.Context, userID string) (*memory.UserStats, error) {
	return &memory.UserStats{}, nil
}
func (f *fakeStore) DeleteAll(ctx context.Context, userID string) error { return nil }
func (f *fakeStore) ExportAll(ctx context.Context, userID string) (*memory.Export, error) {
	return &memory.Export{}, nil
}
func (f *fakeStore) Prune(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeStore) Close() error                             { return nil }

func TestHistoryFirstTimeUser(t *testing.T) {
	r := responder.NewHistorySearch(&fakeStore{}, nil)

	answer := r.Generate(context.Background(), &responder.Request{
		Query:  "show me my past searches",
		UserID: "newcomer",
	})

	if answer.Failed() {
		t.Fatalf("unexpected failure: %q", answer.Error)
	}
	if !strings.Contains(answer.Text, "first conversation") {
		t.Errorf("want first-time narrative, got %q", answer.Text)
	}
	if math.Abs(answer.Confidence-0.5) > 1e-9 {
		t.Errorf("confidence = %v, want base 0.5", answer.Confidence)
	}
}

func TestHistoryReportsMatches(t *testing.T) {
	store := &fakeStore{
		history: []core.ConversationResult{
			{Query: "waterfalls near town", CreatedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
		},
		hits: []core.MemoryEntry{
			{Kind: core.EntryKindQuery, Content: "waterfalls near town"},
			{Kind: core.EntryKindResponse, Content: "the falls drop in two tiers"},
		},
	}
	r := responder.NewHistorySearch(store, nil)

	answer := r.Generate(context.Background(), &responder.Request{
		Query:  "what did I ask about waterfalls before",
		UserID: "u",
	})

	if answer.Failed() {
		t.Fatalf("unexpected failure: %q", answer.Error)
	}
	if !strings.Contains(answer.Text, "2 past memories") {
		t.Errorf("want match count in narrative, got %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "waterfalls near town") {
		t.Errorf("want most recent matching query, got %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "Aug 20, 2026") {
		t.Errorf("want last conversation date, got %q", answer.Text)
	}
	// 0.5 base + 0.2 (hits) + 0.1 (history)
	if math.Abs(answer.Confidence-0.8) > 1e-9 {
		t.Errorf("confidence = %v, want 0.8", answer.Confidence)
	}
}

func TestHistoryVolumeOnlyNarrative(t *testing.T) {
	store := &fakeStore{
		history: []core.ConversationResult{
			{Query: "camping in the reserve", CreatedAt: time.Now()},
			{Query: "trail conditions", CreatedAt: time.Now()},
		},
	}
	r := responder.NewHistorySearch(store, nil)

	answer := r.Generate(context.Background(), &responder.Request{
		Query:  "remember anything relevant?",
		UserID: "u",
	})

	if answer.Failed() {
		t.Fatalf("unexpected failure: %q", answer.Error)
	}
	if !strings.Contains(answer.Text, "2 conversations") {
		t.Errorf("want history volume, got %q", answer.Text)
	}
}

func TestHistoryConfidenceLadderCaps(t *testing.T) {
	hits := make([]core.MemoryEntry, 8)
	history := make([]core.ConversationResult, 5)
	for i := range history {
		history[i] = core.ConversationResult{Query: "q", CreatedAt: time.Now()}
	}
	r := responder.NewHistorySearch(&fakeStore{history: history, hits: hits}, nil)

	answer := r.Generate(context.Background(), &responder.Request{Query: "find it", UserID: "u"})
	if math.Abs(answer.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want capped 1.0", answer.Confidence)
	}
}

func TestHistoryDegradesOnStoreFailure(t *testing.T) {
	r := responder.NewHistorySearch(&fakeStore{historyErr: errors.New("store down")}, nil)

	answer := r.Generate(context.Background(), &responder.Request{Query: "my past trips", UserID: "u"})
	if !answer.Failed() {
		t.Fatal("expected error-tagged answer")
	}
	if answer.Confidence != 0.1 || answer.RelevanceScore != 1 {
		t.Errorf("degraded answer = (%v, %d), want (0.1, 1)", answer.Confidence, answer.RelevanceScore)
	}
}
