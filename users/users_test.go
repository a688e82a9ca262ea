package users_test

import (
	"errors"
	"testing"

	"github.com/maravaman/intent-orchestra-nexus/core"
	"github.com/maravaman/intent-orchestra-nexus/users"
)

func TestCreateAndGet(t *testing.T) {
	reg := users.NewRegistry()
	created := reg.Create("ana")

	if created.ID == "" || created.SessionID == "" {
		t.Fatalf("missing identifiers: %+v", created)
	}

	got, ok := reg.Get(created.ID)
	if !ok {
		t.Fatal("created user not found")
	}
	if got.Name != "ana" || got.SessionID != created.SessionID {
		t.Errorf("got %+v, want name and session to match", got)
	}

	if _, ok := reg.Get("nobody"); ok {
		t.Error("unknown ID resolved to a user")
	}
}

func TestRefreshSessionInvalidatesOld(t *testing.T) {
	reg := users.NewRegistry()
	user := reg.Create("ana")

	if err := reg.ValidateSession(user.ID, user.SessionID); err != nil {
		t.Fatalf("fresh session rejected: %v", err)
	}

	next, err := reg.RefreshSession(user.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next == user.SessionID {
		t.Fatal("refresh returned the same session ID")
	}

	if err := reg.ValidateSession(user.ID, user.SessionID); !errors.Is(err, users.ErrStaleSession) {
		t.Errorf("old session: err = %v, want ErrStaleSession", err)
	}
	if err := reg.ValidateSession(user.ID, next); err != nil {
		t.Errorf("new session rejected: %v", err)
	}
}

func TestValidateSessionUnknownUser(t *testing.T) {
	reg := users.NewRegistry()

	if err := reg.ValidateSession("nobody", "whatever"); !errors.Is(err, users.ErrUnknownUser) {
		t.Errorf("err = %v, want ErrUnknownUser", err)
	}
	if _, err := reg.RefreshSession("nobody"); !errors.Is(err, users.ErrUnknownUser) {
		t.Errorf("refresh: err = %v, want ErrUnknownUser", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	reg := users.NewRegistry()
	user := reg.Create("ana")

	prefs := core.Preferences{
		PreferredResponders: []string{"river"},
		Verbosity:           "short",
	}
	if err := reg.SetPreferences(user.ID, prefs); err != nil {
		t.Fatalf("set preferences: %v", err)
	}

	got, ok := reg.Preferences(user.ID)
	if !ok {
		t.Fatal("preferences not found")
	}
	if !got.Prefers("river") || got.Verbosity != "short" {
		t.Errorf("got %+v", got)
	}

	if err := reg.SetPreferences("nobody", prefs); !errors.Is(err, users.ErrUnknownUser) {
		t.Errorf("err = %v, want ErrUnknownUser", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	reg := users.NewRegistry()
	user := reg.Create("ana")

	got, _ := reg.Get(user.ID)
	got.Name = "mutated"

	again, _ := reg.Get(user.ID)
	if again.Name != "ana" {
		t.Errorf("registry state mutated through a returned copy: %q", again.Name)
	}
}
