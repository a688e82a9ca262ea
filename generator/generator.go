// Package generator defines the content-generation dependency responders
// call to produce prose. Implementations are opaque to the rest of the
// system; failures are caught at the responder boundary and turned into
// degraded answers, never raised past it.
package generator

import "context"

// Request carries everything a generation call needs.
type Request struct {
	// System is the specialist's system prompt.
	System string

	// Prompt is the user-facing prompt, already tailored to the query.
	Prompt string

	// Context holds formatted recent-context lines, most recent first.
	// May be empty.
	Context []string
}

// Result is the produced text.
type Result struct {
	Text string
}

// Generator produces prose for a request.
//
// Implementations:
//   - anthropic.Client: Claude Messages API
//   - static.Generator: deterministic canned text for tests and offline use
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}
