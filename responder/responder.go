// Package responder provides the topic-specialist contract and its stock
// implementations. A responder judges its own relevance to a query and
// produces a scored answer; failures in its generation dependency are
// absorbed into degraded, error-tagged answers and never raised past the
// responder boundary.
package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
)

// Request carries one execution unit's input to a responder.
type Request struct {
	Query     string
	UserID    string
	SessionID string

	// Context holds the narrower context slice fetched for this unit.
	// May be empty; responders must work without it.
	Context []core.MemoryEntry
}

// Responder is the polymorphic topic-specialist contract. Adding a new
// topic means adding one implementation and one registry entry; the
// orchestrator is untouched.
type Responder interface {
	// Descriptor returns the responder's configuration data.
	Descriptor() core.ResponderDescriptor

	// IsRelevant reports whether the responder considers the query its own.
	IsRelevant(query string) bool

	// ScoreRelevance counts how strongly the query matches the responder's
	// keyword set. Zero means no match.
	ScoreRelevance(query string) int

	// Generate produces the responder's answer. The returned answer is a
	// tagged result: on generation failure it carries a low fixed
	// confidence and an error message instead of an error return.
	Generate(ctx context.Context, req *Request) core.ResponderAnswer
}

// topicBonus is added when the query contains the topic type verbatim.
const topicBonus = 2

// keywordHits returns the responder keywords found as substrings of the
// lower-cased query.
func keywordHits(query string, keywords []string) []string {
	q := strings.ToLower(query)
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(q, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// scoreDescriptor implements the shared relevance rule: one point per
// keyword hit, plus a fixed bonus when the topic type appears verbatim.
func scoreDescriptor(d core.ResponderDescriptor, query string) int {
	score := len(keywordHits(query, d.Keywords))
	if d.TopicType != "" && strings.Contains(strings.ToLower(query), strings.ToLower(d.TopicType)) {
		score += topicBonus
	}
	return score
}

// degradedAnswer is the fault-isolation contract: a failed generation step
// becomes an answer with fixed low confidence and rank instead of an error.
func degradedAnswer(d core.ResponderDescriptor, started time.Time, err error) core.ResponderAnswer {
	return core.ResponderAnswer{
		ResponderID:     d.ID,
		ResponderName:   d.Name,
		Text:            fmt.Sprintf("%s is temporarily unable to answer.", d.Name),
		Confidence:      0.1,
		RelevanceScore:  1,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:       time.Now(),
		Error:           shortError(err),
	}
}

func shortError(err error) string {
	msg := err.Error()
	if len(msg) > 140 {
		msg = msg[:140]
	}
	return msg
}

// contextLines formats context entries for prompt injection, most recent
// first, one line each.
func contextLines(entries []core.MemoryEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		content := e.Content
		if len(content) > 160 {
			content = content[:157] + "..."
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", e.Kind, content))
	}
	return lines
}
