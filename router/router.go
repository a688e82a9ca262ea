// Package router selects and ranks the responders applicable to a query.
// Routing is a pure function over the registry and the query string: no
// side effects, and identical inputs always produce identical output order.
package router

import (
	"sort"
	"strings"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/logger"
	"github.com/maravaman/intent-orchestra-nexus/responder"
)

// retrospectiveTokens mark queries with look-back intent. Any of them
// forces the history responder into the routed set.
var retrospectiveTokens = []string{
	"past", "history", "previous", "remember",
	"before", "earlier", "search", "find",
}

// Config designates the special responders.
type Config struct {
	// HistoryResponderID is the look-back responder force-included for any
	// substantive query.
	HistoryResponderID string

	// DefaultResponderID is selected alone when nothing else matches.
	// Empty falls back to the first enabled responder.
	DefaultResponderID string
}

// Selection is one routed responder with its relevance score.
type Selection struct {
	Responder responder.Responder
	Score     int
}

// Router ranks the enabled responder set for each query.
type Router struct {
	registry *responder.Registry
	config   Config
	log      *logger.Logger
}

// New creates a Router over the given registry.
func New(registry *responder.Registry, config Config, log *logger.Logger) *Router {
	if log == nil {
		log = logger.NewNop()
	}
	return &Router{registry: registry, config: config, log: log.With("component", "router")}
}

// Route scores every enabled responder against the query and returns the
// selected subset, ordered by score descending, then ascending priority,
// then registration order. Preferences may be nil; when supplied, preferred
// responders get a one-point bonus.
//
// Guarantees: the output is never empty while at least one responder is
// enabled (default fallback), and the history responder rides along with
// any other match or any retrospective-intent query. An empty registry
// yields core.ErrNoResponderAvailable.
func (r *Router) Route(query string, prefs *core.Preferences) ([]Selection, error) {
	enabled := r.registry.Enabled()
	if len(enabled) == 0 {
		return nil, core.ErrNoResponderAvailable
	}

	type candidate struct {
		resp     responder.Responder
		score    int
		priority int
	}

	var selected []candidate
	var history responder.Responder
	historyScore := 0

	for _, resp := range enabled {
		d := resp.Descriptor()
		score := resp.ScoreRelevance(query)
		if prefs != nil && prefs.Prefers(d.ID) {
			score++
		}

		if d.ID == r.config.HistoryResponderID {
			history = resp
			historyScore = score
			continue
		}
		if score > 0 {
			selected = append(selected, candidate{resp: resp, score: score, priority: d.Priority})
		}
	}

	// The history responder rides along whenever anything else matched or
	// the query itself looks backward, keeping conversational continuity.
	if history != nil && (len(selected) > 0 || isRetrospective(query)) {
		if historyScore < 1 {
			historyScore = 1
		}
		selected = append(selected, candidate{
			resp:     history,
			score:    historyScore,
			priority: history.Descriptor().Priority,
		})
	}

	if len(selected) == 0 {
		def := r.defaultResponder(enabled)
		selected = append(selected, candidate{
			resp:     def,
			score:    1,
			priority: def.Descriptor().Priority,
		})
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].score != selected[j].score {
			return selected[i].score > selected[j].score
		}
		return selected[i].priority < selected[j].priority
	})

	out := make([]Selection, len(selected))
	for i, c := range selected {
		out[i] = Selection{Responder: c.resp, Score: c.score}
	}

	r.log.Debug("routed query", "selected", len(out))
	return out, nil
}

func (r *Router) defaultResponder(enabled []responder.Responder) responder.Responder {
	if r.config.DefaultResponderID != "" {
		for _, resp := range enabled {
			if resp.Descriptor().ID == r.config.DefaultResponderID {
				return resp
			}
		}
	}
	return enabled[0]
}

func isRetrospective(query string) bool {
	q := strings.ToLower(query)
	for _, tok := range retrospectiveTokens {
		if strings.Contains(q, tok) {
			return true
		}
	}
	return false
}
