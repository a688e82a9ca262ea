package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/logger"
	"github.com/maravaman/intent-orchestra-nexus/memory"
)

// HistorySearch is the look-back responder. It ignores topical content and
// instead searches the memory store for past conversations and entries
// matching the current query, synthesizing a narrative from what it finds.
// Its memory dependency plays the role the generator plays for topical
// responders, with the same fault-isolation contract.
type HistorySearch struct {
	descriptor   core.ResponderDescriptor
	store        memory.Store
	historyLimit int
	log          *logger.Logger
}

// NewHistorySearch creates the stock history responder.
func NewHistorySearch(store memory.Store, log *logger.Logger) *HistorySearch {
	if log == nil {
		log = logger.NewNop()
	}
	return &HistorySearch{
		descriptor:   definitionByID(HistoryID),
		store:        store,
		historyLimit: 10,
		log:          log.With("responder", HistoryID),
	}
}

func (h *HistorySearch) Descriptor() core.ResponderDescriptor {
	return h.descriptor
}

func (h *HistorySearch) IsRelevant(query string) bool {
	return h.ScoreRelevance(query) > 0
}

// ScoreRelevance counts retrospective-intent tokens; the descriptor's
// keyword set is exactly those tokens.
func (h *HistorySearch) ScoreRelevance(query string) int {
	return scoreDescriptor(h.descriptor, query)
}

// Generate searches the user's memory and synthesizes a narrative:
// matches found, history volume, or a first-time-user message.
func (h *HistorySearch) Generate(ctx context.Context, req *Request) core.ResponderAnswer {
	started := time.Now()

	history, err := h.store.ConversationHistory(ctx, req.UserID, h.historyLimit, 0)
	if err != nil {
		h.log.Warn("history lookup failed", "error", err)
		return degradedAnswer(h.descriptor, started, err)
	}

	hits, err := h.store.Search(ctx, req.UserID, req.Query)
	if err != nil {
		h.log.Warn("memory search failed", "error", err)
		return degradedAnswer(h.descriptor, started, err)
	}

	return core.ResponderAnswer{
		ResponderID:     h.descriptor.ID,
		ResponderName:   h.descriptor.Name,
		Text:            h.narrative(hits, history),
		Confidence:      historyConfidence(len(hits), len(history)),
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:       time.Now(),
	}
}

func (h *HistorySearch) narrative(hits []core.MemoryEntry, history []core.ConversationResult) string {
	if len(hits) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d past memories related to this.", len(hits))

		if queries := recentQueries(hits, 3); len(queries) > 0 {
			fmt.Fprintf(&b, " Your most recent matching queries: %s.", strings.Join(queries, "; "))
		}
		if len(history) > 0 {
			fmt.Fprintf(&b, " Our last conversation was about %q on %s.",
				history[0].Query, history[0].CreatedAt.Format("Jan 2, 2006"))
		}
		return b.String()
	}

	if len(history) > 0 {
		return fmt.Sprintf("Nothing in your history matches this directly, but we've had %d conversations so far, most recently about %q.",
			len(history), history[0].Query)
	}

	return "This looks like our first conversation. I don't have any past interactions on file for you yet, so ask me anything and I'll start remembering."
}

// recentQueries collects up to max query-kind contents from the hits,
// which arrive most-recent-first.
func recentQueries(hits []core.MemoryEntry, max int) []string {
	var queries []string
	for _, e := range hits {
		if e.Kind != core.EntryKindQuery || e.Content == "" {
			continue
		}
		queries = append(queries, fmt.Sprintf("%q", e.Content))
		if len(queries) == max {
			break
		}
	}
	return queries
}

// historyConfidence grows monotonically with matched and historical data:
// base 0.5, bonuses for any hits, many hits, any history, and deep history,
// capped at 1.0.
func historyConfidence(hits, history int) float64 {
	c := 0.5
	if hits > 0 {
		c += 0.2
	}
	if hits > 5 {
		c += 0.1
	}
	if history > 0 {
		c += 0.1
	}
	if history > 3 {
		c += 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}
