package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"linkup/internal/domain"
)

func TestSearchByNamePrefix(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	viewer := createUser(t, env.store, "Zed", "zed@example.com")
	createUser(t, env.store, "Alice", "alice@example.com")
	createUser(t, env.store, "Albert", "albert@example.com")
	createUser(t, env.store, "Bob", "bob@example.com")

	results, err := env.profiles.Search(ctx, viewer.ID, "al")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(results))
	}
	// Ordered by the lowered search key.
	if results[0].Name != "Albert" || results[1].Name != "Alice" {
		t.Fatalf("unexpected order: %q, %q", results[0].Name, results[1].Name)
	}

	// Case-insensitive on both sides.
	upper, err := env.profiles.Search(ctx, viewer.ID, "AL")
	if err != nil {
		t.Fatalf("search upper: %v", err)
	}
	if len(upper) != 2 {
		t.Fatalf("expected case-insensitive match, got %d hits", len(upper))
	}

	// The prefix is anchored: "lice" matches nothing.
	sub, err := env.profiles.Search(ctx, viewer.ID, "lice")
	if err != nil {
		t.Fatalf("search substring: %v", err)
	}
	if len(sub) != 0 {
		t.Fatalf("expected no hits for non-prefix term, got %d", len(sub))
	}
}

func TestSearchAnnotatesRelationship(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	viewer := createUser(t, env.store, "Zed", "zed@example.com")
	alice := createUser(t, env.store, "Alice", "alice@example.com")
	albert := createUser(t, env.store, "Albert", "albert@example.com")
	createUser(t, env.store, "Alfonso", "alfonso@example.com")

	// viewer and alice are friends; viewer has a pending request to albert.
	reqID := sendRequest(t, env, viewer.ID, alice.ID)
	if err := env.friends.Accept(ctx, reqID, alice.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.friends.Send(ctx, viewer.ID, albert.ID); err != nil {
		t.Fatalf("send: %v", err)
	}

	results, err := env.profiles.Search(ctx, viewer.ID, "al")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(results))
	}
	for _, res := range results {
		switch res.Name {
		case "Alice":
			if !res.IsFriend || res.RequestPending {
				t.Fatalf("alice should be a friend: %+v", res)
			}
		case "Albert":
			if res.IsFriend || !res.RequestPending {
				t.Fatalf("albert should be pending: %+v", res)
			}
		case "Alfonso":
			if res.IsFriend || res.RequestPending {
				t.Fatalf("alfonso should be unrelated: %+v", res)
			}
		default:
			t.Fatalf("unexpected hit %q", res.Name)
		}
	}
}

func TestSearchExcludesViewer(t *testing.T) {
	env := setupEnv(t)

	viewer := createUser(t, env.store, "Alvin", "alvin@example.com")
	createUser(t, env.store, "Alice", "alice@example.com")

	results, err := env.profiles.Search(context.Background(), viewer.ID, "al")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Alice" {
		t.Fatalf("viewer must not match itself: %+v", results)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	env := setupEnv(t)
	viewer := createUser(t, env.store, "Zed", "zed@example.com")

	results, err := env.profiles.Search(context.Background(), viewer.ID, "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no hits for blank term, got %d", len(results))
	}
}

func TestRenameUpdatesSearchKey(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	viewer := createUser(t, env.store, "Zed", "zed@example.com")
	bob := createUser(t, env.store, "Bob", "bob@example.com")

	if err := env.profiles.Rename(ctx, bob.ID, "Alfonso"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	results, err := env.profiles.Search(ctx, viewer.ID, "alf")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != bob.ID.String() {
		t.Fatalf("expected rename to move the search key: %+v", results)
	}

	old, err := env.profiles.Search(ctx, viewer.ID, "bo")
	if err != nil {
		t.Fatalf("search old prefix: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("old prefix must not match after rename: %+v", old)
	}

	if err := env.profiles.Rename(ctx, bob.ID, "   "); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestGetUnknownProfile(t *testing.T) {
	env := setupEnv(t)

	if _, err := env.profiles.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResolveSkipsUnknownIDs(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := createUser(t, env.store, "Alice", "alice@example.com")
	unknown := uuid.New()

	profiles, err := env.profiles.Resolve(ctx, []domain.UserID{alice.ID, unknown})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 resolved profile, got %d", len(profiles))
	}
	got, ok := profiles[alice.ID]
	if !ok || got.Name != "Alice" {
		t.Fatalf("unexpected resolution: %+v", profiles)
	}
	if got.CreatedAt.After(time.Now().Add(time.Minute)) {
		t.Fatalf("implausible createdAt: %v", got.CreatedAt)
	}
}
