package router_test

import (
	"errors"
	"testing"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/generator/static"
	"github.com/maravaman/intent-orchestra-nexus/responder"
	"github.com/maravaman/intent-orchestra-nexus/router"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()

	gen := static.New()
	registry := responder.NewRegistry()
	for _, r := range []responder.Responder{
		responder.NewScenic(gen, nil),
		responder.NewRiver(gen, nil),
		responder.NewPark(gen, nil),
		// Routing only reads descriptors and scores, so the history
		// responder never touches its store here.
		responder.NewHistorySearch(nil, nil),
	} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	return router.New(registry, router.Config{
		HistoryResponderID: responder.HistoryID,
		DefaultResponderID: responder.ScenicID,
	}, nil)
}

func routedIDs(selections []router.Selection) []string {
	ids := make([]string, len(selections))
	for i, s := range selections {
		ids[i] = s.Responder.Descriptor().ID
	}
	return ids
}

func TestRouteDeterminism(t *testing.T) {
	rt := newTestRouter(t)
	query := "best mountain views near a river park"

	first, err := rt.Route(query, nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := rt.Route(query, nil)
		if err != nil {
			t.Fatalf("route: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d selections, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].Responder.Descriptor().ID != first[j].Responder.Descriptor().ID ||
				again[j].Score != first[j].Score {
				t.Fatalf("run %d: order diverged at %d: %v vs %v",
					i, j, routedIDs(again), routedIDs(first))
			}
		}
	}
}

func TestRetrospectiveQueryIncludesHistory(t *testing.T) {
	rt := newTestRouter(t)

	for _, query := range []string{
		"what do you remember about me",
		"show my past questions",
	} {
		selections, err := rt.Route(query, nil)
		if err != nil {
			t.Fatalf("route %q: %v", query, err)
		}
		found := false
		for _, s := range selections {
			if s.Responder.Descriptor().ID == responder.HistoryID {
				found = true
				if s.Score < 1 {
					t.Errorf("query %q: history score %d, want >= 1", query, s.Score)
				}
			}
		}
		if !found {
			t.Errorf("query %q: history responder missing from %v", query, routedIDs(selections))
		}
	}
}

func TestOffTopicQuerySelectsDefault(t *testing.T) {
	rt := newTestRouter(t)

	selections, err := rt.Route("xyzzy plugh", nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(selections) != 1 {
		t.Fatalf("got %d selections, want exactly 1: %v", len(selections), routedIDs(selections))
	}
	if id := selections[0].Responder.Descriptor().ID; id != responder.ScenicID {
		t.Errorf("default responder = %q, want %q", id, responder.ScenicID)
	}
	if selections[0].Score != 1 {
		t.Errorf("default score = %d, want 1", selections[0].Score)
	}
}

func TestRiversNearMountainsScenario(t *testing.T) {
	rt := newTestRouter(t)

	selections, err := rt.Route("Find rivers near mountain regions", nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	scores := make(map[string]int)
	for _, s := range selections {
		scores[s.Responder.Descriptor().ID] = s.Score
	}

	riverScore, ok := scores[responder.RiverID]
	if !ok {
		t.Fatalf("river responder not routed: %v", routedIDs(selections))
	}
	scenicScore, ok := scores[responder.ScenicID]
	if !ok {
		t.Fatalf("scenic responder not routed: %v", routedIDs(selections))
	}
	if riverScore < scenicScore {
		t.Errorf("river score %d < scenic score %d", riverScore, scenicScore)
	}
	// "find" is a retrospective-intent token.
	if _, ok := scores[responder.HistoryID]; !ok {
		t.Errorf("history responder not routed: %v", routedIDs(selections))
	}
	if id := selections[0].Responder.Descriptor().ID; id != responder.RiverID {
		t.Errorf("top responder = %q, want %q", id, responder.RiverID)
	}
}

func TestEmptyRegistry(t *testing.T) {
	rt := router.New(responder.NewRegistry(), router.Config{}, nil)

	_, err := rt.Route("anything", nil)
	if !errors.Is(err, core.ErrNoResponderAvailable) {
		t.Fatalf("err = %v, want ErrNoResponderAvailable", err)
	}
}

func TestTieBreakByPriority(t *testing.T) {
	gen := static.New()
	registry := responder.NewRegistry()

	low := responder.NewTopical(core.ResponderDescriptor{
		ID: "b-low", Name: "B", TopicType: "beach",
		Keywords: []string{"shore"}, Priority: 5, Enabled: true,
	}, "", gen, nil)
	high := responder.NewTopical(core.ResponderDescriptor{
		ID: "a-high", Name: "A", TopicType: "coast",
		Keywords: []string{"shore"}, Priority: 1, Enabled: true,
	}, "", gen, nil)

	// Register the lower-priority responder first so priority, not
	// insertion order, must decide.
	if err := registry.Register(low); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(high); err != nil {
		t.Fatal(err)
	}

	rt := router.New(registry, router.Config{}, nil)
	selections, err := rt.Route("walk along the shore", nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(selections) != 2 {
		t.Fatalf("got %d selections, want 2", len(selections))
	}
	if id := selections[0].Responder.Descriptor().ID; id != "a-high" {
		t.Errorf("first = %q, want lower priority value to win ties", id)
	}
}

func TestPreferredResponderBonus(t *testing.T) {
	rt := newTestRouter(t)

	prefs := &core.Preferences{PreferredResponders: []string{responder.ParkID}}
	selections, err := rt.Route("where is the nearest river", prefs)
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	found := false
	for _, s := range selections {
		if s.Responder.Descriptor().ID == responder.ParkID {
			found = true
		}
	}
	if !found {
		t.Errorf("preferred park responder not routed: %v", routedIDs(selections))
	}
}
