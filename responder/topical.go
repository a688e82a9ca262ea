package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/generator"
	"github.com/maravaman/intent-orchestra-nexus/logger"
)

// Topical answers queries for one topic area. The three stock topical
// responders (scenic, river, park) differ only in descriptor and system
// prompt; behavior is shared.
type Topical struct {
	descriptor core.ResponderDescriptor
	system     string
	gen        generator.Generator
	log        *logger.Logger
}

// NewTopical creates a topical responder from a descriptor and system
// prompt.
func NewTopical(d core.ResponderDescriptor, system string, gen generator.Generator, log *logger.Logger) *Topical {
	if log == nil {
		log = logger.NewNop()
	}
	return &Topical{
		descriptor: d,
		system:     system,
		gen:        gen,
		log:        log.With("responder", d.ID),
	}
}

// NewScenic creates the stock scenic responder.
func NewScenic(gen generator.Generator, log *logger.Logger) *Topical {
	return NewTopical(definitionByID(ScenicID),
		"You are a scenic-area specialist. Recommend viewpoints, landscapes, and the best times to see them. Name specific places.",
		gen, log)
}

// NewRiver creates the stock river responder.
func NewRiver(gen generator.Generator, log *logger.Logger) *Topical {
	return NewTopical(definitionByID(RiverID),
		"You are a rivers-and-water specialist. Cover flows, seasons, paddling, and fishing. Name specific rivers and access points.",
		gen, log)
}

// NewPark creates the stock park responder.
func NewPark(gen generator.Generator, log *logger.Logger) *Topical {
	return NewTopical(definitionByID(ParkID),
		"You are a parks specialist. Cover trails, camping, permits, and wildlife. Name specific parks and trailheads.",
		gen, log)
}

func (t *Topical) Descriptor() core.ResponderDescriptor {
	return t.descriptor
}

func (t *Topical) IsRelevant(query string) bool {
	return t.ScoreRelevance(query) > 0
}

func (t *Topical) ScoreRelevance(query string) int {
	return scoreDescriptor(t.descriptor, query)
}

// Generate produces a keyword-tailored answer through the generator,
// appending a continuity sentence when context entries are supplied.
// Generator failure degrades into an error-tagged answer.
func (t *Topical) Generate(ctx context.Context, req *Request) core.ResponderAnswer {
	started := time.Now()
	hits := keywordHits(req.Query, t.descriptor.Keywords)

	prompt := fmt.Sprintf("Answer this question about %s: %s", t.descriptor.TopicType, req.Query)
	if len(hits) > 0 {
		prompt += "\nFocus on: " + strings.Join(hits, ", ")
	}

	res, err := t.gen.Generate(ctx, &generator.Request{
		System:  t.system,
		Prompt:  prompt,
		Context: contextLines(req.Context),
	})
	if err != nil {
		t.log.Warn("generation failed", "error", err)
		return degradedAnswer(t.descriptor, started, err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return degradedAnswer(t.descriptor, started, errors.New("empty generation result"))
	}

	if n := len(req.Context); n > 0 {
		text += fmt.Sprintf(" Given your %d recent related interactions, this should follow on naturally from where we left off.", n)
	}

	return core.ResponderAnswer{
		ResponderID:     t.descriptor.ID,
		ResponderName:   t.descriptor.Name,
		Text:            text,
		Confidence:      topicalConfidence(len(hits), text),
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:       time.Now(),
	}
}

// specificityMarkers are tokens that signal the text names a concrete
// location rather than speaking generically.
var specificityMarkers = []string{
	"National Park", "Valley", "Falls", "Pass", "Point",
	"Trailhead", "Campground", "Canyon", "Bay", "Ridge",
}

// topicalConfidence implements the topical confidence ladder: keyword and
// length bonuses on a 0.6 base, plus a specificity bonus, capped at 1.0.
func topicalConfidence(hits int, text string) float64 {
	c := 0.6 + 0.05*float64(hits)
	if len(text) > 200 {
		c += 0.1
	}
	if len(text) > 500 {
		c += 0.1
	}
	for _, marker := range specificityMarkers {
		if strings.Contains(text, marker) {
			c += 0.1
			break
		}
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}
