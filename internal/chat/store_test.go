package chat

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/abhi01978/NechGen/internal/db"
)

func TestNewStoreRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestFindOwnedReturnsNilForMissingConversation(t *testing.T) {
	t.Parallel()

	store := setupStore(t)

	conversation, err := store.FindOwned(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("FindOwned returned error: %v", err)
	}
	if conversation != nil {
		t.Fatalf("expected nil conversation for missing id, got %#v", conversation)
	}
}

func TestFindOwnedHidesForeignConversations(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, 1, "owned by user one")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	foreign, err := store.FindOwned(ctx, 2, created.ID)
	if err != nil {
		t.Fatalf("FindOwned returned error: %v", err)
	}
	if foreign != nil {
		t.Fatalf("expected foreign conversation to be indistinguishable from absent, got %#v", foreign)
	}
}

func TestAppendPairPreservesOrder(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	conversation, err := store.Create(ctx, 1, "ordering")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	pairs := []struct {
		question string
		answer   string
	}{
		{"first question", "first answer"},
		{"second question", "second answer"},
	}

	for _, pair := range pairs {
		userMsg := Message{Role: RoleUser, Content: pair.question}
		assistantMsg := Message{
			Role:    RoleAssistant,
			Content: pair.answer,
			Sources: datatypes.JSONSlice[Citation]{{Title: "Example", URL: "https://example.com"}},
		}
		if err := store.AppendPair(ctx, conversation, userMsg, assistantMsg); err != nil {
			t.Fatalf("AppendPair returned error: %v", err)
		}
	}

	stored, err := store.FindOwned(ctx, 1, conversation.ID)
	if err != nil {
		t.Fatalf("FindOwned returned error: %v", err)
	}
	if stored == nil {
		t.Fatalf("expected conversation to be present")
	}

	expected := []struct {
		role    string
		content string
	}{
		{RoleUser, "first question"},
		{RoleAssistant, "first answer"},
		{RoleUser, "second question"},
		{RoleAssistant, "second answer"},
	}

	if len(stored.Messages) != len(expected) {
		t.Fatalf("expected %d messages, got %d", len(expected), len(stored.Messages))
	}

	for idx, want := range expected {
		got := stored.Messages[idx]
		if got.Role != want.role || got.Content != want.content {
			t.Fatalf("message %d: expected %s/%q, got %s/%q", idx, want.role, want.content, got.Role, got.Content)
		}
	}

	assistant := stored.Messages[1]
	if len(assistant.Sources) != 1 || assistant.Sources[0].URL != "https://example.com" {
		t.Fatalf("expected citation to round-trip, got %#v", assistant.Sources)
	}

	if len(stored.Messages[0].Sources) != 0 {
		t.Fatalf("expected user message to carry no citations, got %#v", stored.Messages[0].Sources)
	}
}

func TestAppendPairRejectsWrongRoles(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	conversation, err := store.Create(ctx, 1, "roles")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err = store.AppendPair(ctx, conversation,
		Message{Role: RoleAssistant, Content: "backwards"},
		Message{Role: RoleUser, Content: "backwards"},
	)
	if err == nil {
		t.Fatalf("expected error for reversed roles")
	}
}

func TestListOwnedOrdersByRecency(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, 7, "older")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	newer, err := store.Create(ctx, 7, "newer")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Appending to the older conversation bumps it above the newer one.
	err = store.AppendPair(ctx, older,
		Message{Role: RoleUser, Content: "bump"},
		Message{Role: RoleAssistant, Content: "bumped"},
	)
	if err != nil {
		t.Fatalf("AppendPair returned error: %v", err)
	}

	listed, err := store.ListOwned(ctx, 7)
	if err != nil {
		t.Fatalf("ListOwned returned error: %v", err)
	}

	if len(listed) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(listed))
	}

	if listed[0].ID != older.ID || listed[1].ID != newer.ID {
		t.Fatalf("expected recency order [%d %d], got [%d %d]", older.ID, newer.ID, listed[0].ID, listed[1].ID)
	}

	again, err := store.ListOwned(ctx, 7)
	if err != nil {
		t.Fatalf("ListOwned returned error: %v", err)
	}
	for idx := range listed {
		if again[idx].ID != listed[idx].ID {
			t.Fatalf("expected stable listing with no intervening writes")
		}
	}
}

func TestDeleteOwnedReportsRemoval(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	conversation, err := store.Create(ctx, 3, "to delete")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if removed, err := store.DeleteOwned(ctx, 2, conversation.ID); err != nil || removed {
		t.Fatalf("expected foreign delete to remove nothing, got removed=%v err=%v", removed, err)
	}

	removed, err := store.DeleteOwned(ctx, 3, conversation.ID)
	if err != nil {
		t.Fatalf("DeleteOwned returned error: %v", err)
	}
	if !removed {
		t.Fatalf("expected first delete to report removal")
	}

	removed, err = store.DeleteOwned(ctx, 3, conversation.ID)
	if err != nil {
		t.Fatalf("DeleteOwned returned error: %v", err)
	}
	if removed {
		t.Fatalf("expected second delete to report nothing removed")
	}

	if found, err := store.FindOwned(ctx, 3, conversation.ID); err != nil || found != nil {
		t.Fatalf("expected deleted conversation to be absent, got %#v err=%v", found, err)
	}
}

func setupStore(t *testing.T) *GormStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	conn, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(conn); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if err := Migrate(context.Background(), conn, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	store, err := NewStore(conn, logger)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	return store
}
