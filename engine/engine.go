// Package engine drives a query end to end: analyze context, route,
// execute the selected responders concurrently, aggregate by rank, and
// persist the result.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/logger"
	"github.com/maravaman/intent-orchestra-nexus/memory"
	"github.com/maravaman/intent-orchestra-nexus/responder"
	"github.com/maravaman/intent-orchestra-nexus/router"
	"github.com/maravaman/intent-orchestra-nexus/users"
)

// Engine is the query orchestrator.
type Engine struct {
	router           *router.Router
	store            memory.Store
	users            *users.Registry // Optional: session validation and preferences
	guardrails       Guardrails      // Optional: per-user rate limiting
	log              *logger.Logger
	contextLimit     int
	unitContextLimit int
	responderTimeout time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithUsers enables session validation and preference-aware routing
// against the given registry.
func WithUsers(reg *users.Registry) Option {
	return func(e *Engine) {
		e.users = reg
	}
}

// WithGuardrails sets the guardrails implementation checked before any
// work is done for a query.
func WithGuardrails(g Guardrails) Option {
	return func(e *Engine) {
		e.guardrails = g
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithContextLimits overrides how many context entries the analysis step
// and each execution unit fetch.
func WithContextLimits(analyze, unit int) Option {
	return func(e *Engine) {
		e.contextLimit = analyze
		e.unitContextLimit = unit
	}
}

// WithResponderTimeout applies a per-unit deadline. A timed-out unit takes
// the same degraded-answer path as a failed generation; the batch still
// waits for every unit. Zero (the default) disables the deadline, matching
// the original wait-for-the-slowest behavior.
func WithResponderTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.responderTimeout = d
	}
}

// New creates an Engine over the given router and memory store.
func New(rt *router.Router, store memory.Store, opts ...Option) *Engine {
	e := &Engine{
		router:           rt,
		store:            store,
		log:              logger.NewNop(),
		contextLimit:     5,
		unitContextLimit: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "engine")
	return e
}

// ProcessQuery is the single entry point the core exposes: it runs one
// query through the full pipeline and returns the persisted result.
//
// Failure policy: individual responder failures degrade into error-tagged
// answers and never fail the request; a context-fetch failure degrades to
// an empty context set; only routing, session/guardrail rejection, and the
// final persistence step fail the request.
func (e *Engine) ProcessQuery(ctx context.Context, query, userID, sessionID string) (*core.ConversationResult, error) {
	if e.guardrails != nil {
		res, err := e.guardrails.Check(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("guardrails check: %w", err)
		}
		if !res.Allowed {
			return nil, fmt.Errorf("%s: %w", res.Reason, core.ErrRateLimited)
		}
	}

	var prefs *core.Preferences
	if e.users != nil {
		if err := e.users.ValidateSession(userID, sessionID); err != nil {
			return nil, fmt.Errorf("session check: %w", err)
		}
		e.users.Touch(userID)
		if p, ok := e.users.Preferences(userID); ok {
			prefs = &p
		}
	}

	started := time.Now()

	// === PHASE 1: ANALYZE ===
	// Context biases responders toward continuity; its absence is not an
	// error, so a failed fetch degrades to an empty set.
	contextEntries, err := e.store.RelevantContext(ctx, userID, query, e.contextLimit)
	if err != nil {
		e.log.Warn("context fetch failed, proceeding without context",
			"user", userID, "error", &core.ContextFetchError{Err: err})
		contextEntries = nil
	}

	// === PHASE 2: ROUTE ===
	selections, err := e.router.Route(query, prefs)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}

	// === PHASE 3: EXECUTE ===
	// One unit per selection, fan-out/fan-in with no early release. Units
	// never return errors: every outcome is a tagged answer. The analysis
	// context rides along as each unit's fallback.
	answers := make([]core.ResponderAnswer, len(selections))
	g, gctx := errgroup.WithContext(ctx)
	for i, sel := range selections {
		g.Go(func() error {
			answers[i] = e.runUnit(gctx, sel, query, userID, sessionID, contextEntries)
			return nil
		})
	}
	_ = g.Wait()

	// === PHASE 4: AGGREGATE ===
	result := &core.ConversationResult{
		ID:                   uuid.New().String(),
		UserID:               userID,
		SessionID:            sessionID,
		Query:                query,
		Responses:            aggregate(answers),
		TotalExecutionTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:            time.Now(),
	}

	// === PHASE 5: PERSIST ===
	// The answer is already computed; a failed write still fails the
	// request so the caller can decide to retry.
	if err := e.store.StoreConversation(ctx, result); err != nil {
		return nil, &core.PersistenceError{Err: err}
	}

	e.log.Info("query processed",
		"user", userID,
		"responders", len(selections),
		"answers", len(result.Responses),
		"total_ms", result.TotalExecutionTimeMs)
	return result, nil
}

// runUnit executes one responder: it fetches its own narrower context
// slice, falling back to the analysis context when that fetch fails,
// generates, and stamps the routed relevance rank onto the answer.
func (e *Engine) runUnit(ctx context.Context, sel router.Selection, query, userID, sessionID string, fallback []core.MemoryEntry) core.ResponderAnswer {
	if e.responderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.responderTimeout)
		defer cancel()
	}

	unitContext, err := e.store.RelevantContext(ctx, userID, query, e.unitContextLimit)
	if err != nil {
		unitContext = fallback
		if len(unitContext) > e.unitContextLimit {
			unitContext = unitContext[:e.unitContextLimit]
		}
	}

	answer := sel.Responder.Generate(ctx, &responder.Request{
		Query:     query,
		UserID:    userID,
		SessionID: sessionID,
		Context:   unitContext,
	})

	if answer.Failed() {
		answer.RelevanceScore = 1
	} else {
		answer.RelevanceScore = clampRank(sel.Score)
	}
	return answer
}

// aggregate drops error-tagged answers when at least one answer succeeded
// (never hiding a success behind failures, never returning an empty batch)
// and orders the survivors by relevance rank descending. Ties keep the
// router's original order.
func aggregate(answers []core.ResponderAnswer) []core.ResponderAnswer {
	anySucceeded := false
	for _, a := range answers {
		if !a.Failed() {
			anySucceeded = true
			break
		}
	}

	kept := make([]core.ResponderAnswer, 0, len(answers))
	for _, a := range answers {
		if anySucceeded && a.Failed() {
			continue
		}
		kept = append(kept, a)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	return kept
}

// clampRank maps a routing score onto the 1–10 relevance rank.
func clampRank(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
