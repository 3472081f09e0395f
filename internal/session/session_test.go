package session

import (
	"testing"

	"splice/internal/transcript"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if len(s.ID) != 8 {
		t.Errorf("expected 8-char hex id, got %q", s.ID)
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("expected timestamps set")
	}
}

func TestSessionSetMessages(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	before := s.UpdatedAt

	msgs := []transcript.Message{
		{Role: transcript.RoleUser, Content: []transcript.ContentBlock{transcript.NewTextBlock("hi")}},
	}
	s.SetMessages(msgs)

	if s.MessageCount() != 1 {
		t.Errorf("expected 1 message, got %d", s.MessageCount())
	}
	if s.UpdatedAt.Before(before) {
		t.Error("UpdatedAt should move forward")
	}
}

func TestSessionSummary(t *testing.T) {
	t.Parallel()

	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.SetTitle("debug run")
	s.Provider = "anthropic"
	s.Model = "claude-sonnet-4"
	s.SetMessages([]transcript.Message{{Role: transcript.RoleUser}})

	sum := s.Summary()
	if sum.Title != "debug run" || sum.Provider != "anthropic" || sum.MessageCount != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
}
