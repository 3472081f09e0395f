package session

import (
	"testing"
	"time"

	"splice/internal/transcript"
)

func newTestSession(t *testing.T, title string) *Session {
	t.Helper()
	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.SetTitle(title)
	s.SetMessages([]transcript.Message{
		{Role: transcript.RoleUser, Content: []transcript.ContentBlock{transcript.NewTextBlock("hello")}},
	})
	return s
}

func TestStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s := newTestSession(t, "first")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Title != "first" {
		t.Errorf("expected title preserved, got %q", loaded.Title)
	}
	if loaded.MessageCount() != 1 {
		t.Errorf("expected 1 message, got %d", loaded.MessageCount())
	}
	if loaded.Messages[0].Role != transcript.RoleUser {
		t.Error("message role lost in round trip")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Load("deadbeef"); err == nil {
		t.Error("expected error for missing session")
	}
}

func TestStoreListSortedByUpdate(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	older := newTestSession(t, "older")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := newTestSession(t, "newer")

	if err := store.Save(older); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Title != "newer" {
		t.Errorf("expected newest first, got %q", summaries[0].Title)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s := newTestSession(t, "doomed")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(s.ID); err == nil {
		t.Error("expected session gone after delete")
	}

	// Deleting again is not an error.
	if err := store.Delete(s.ID); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestStoreMostRecent(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	got, err := store.MostRecent()
	if err != nil {
		t.Fatalf("MostRecent on empty store: %v", err)
	}
	if got != nil {
		t.Error("expected nil for empty store")
	}

	s := newTestSession(t, "only")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = store.MostRecent()
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if got == nil || got.ID != s.ID {
		t.Error("expected the saved session back")
	}
}
