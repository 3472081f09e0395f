package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"splice/internal/policy"
	"splice/internal/transcript"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func messyTranscript() []transcript.Message {
	return []transcript.Message{
		{Role: transcript.RoleUser, Content: []transcript.ContentBlock{transcript.NewTextBlock("list files")}},
		{Role: transcript.RoleAssistant, Content: []transcript.ContentBlock{
			transcript.NewTextBlock("on it"),
			{Type: transcript.BlockToolCall, Name: "bash"}, // malformed: no id
			transcript.NewToolCallBlock("call one!!", "bash", json.RawMessage(`{"command":"ls"}`)),
			transcript.NewToolCallBlock("call two!!", "read", json.RawMessage(`{"path":"x"}`)),
		}},
		{Role: transcript.RoleToolResult, ToolCallID: "call two!!"},
		{Role: transcript.RoleToolResult, ToolCallID: "call two!!"}, // duplicate
		{Role: transcript.RoleToolResult, ToolCallID: "nobody"},     // orphan
	}
}

func TestNormalizeAnthropicEndToEnd(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	pol := policy.ForModel("anthropic", "claude-sonnet-4")

	out, report := n.Normalize(messyTranscript(), pol)

	if report.DroppedToolCalls != 1 {
		t.Errorf("expected 1 dropped tool call, got %d", report.DroppedToolCalls)
	}
	if report.DroppedDuplicateResults != 1 {
		t.Errorf("expected 1 dropped duplicate, got %d", report.DroppedDuplicateResults)
	}
	if report.DroppedOrphanResults != 1 {
		t.Errorf("expected 1 dropped orphan, got %d", report.DroppedOrphanResults)
	}
	if len(report.SyntheticResults) != 1 {
		t.Fatalf("expected 1 synthetic result, got %d", len(report.SyntheticResults))
	}

	// Ids sanitized and results paired in call order.
	calls := out[1].ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 surviving calls, got %d", len(calls))
	}
	if calls[0].ID != "callone" || calls[1].ID != "calltwo" {
		t.Errorf("expected sanitized ids callone, calltwo; got %s, %s", calls[0].ID, calls[1].ID)
	}
	if out[2].ResultID() != "callone" || !out[2].IsError {
		t.Errorf("expected synthetic result for callone first, got %+v", out[2])
	}
	if out[3].ResultID() != "calltwo" {
		t.Errorf("expected matched result for calltwo second, got %+v", out[3])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	pol := policy.ForModel("anthropic", "claude-sonnet-4")

	once, _ := n.Normalize(messyTranscript(), pol)
	twice, report := n.Normalize(once, pol)

	if report.DroppedToolCalls != 0 || report.DroppedAssistantMessages != 0 ||
		report.DroppedDuplicateResults != 0 || report.DroppedOrphanResults != 0 ||
		len(report.SyntheticResults) != 0 {
		t.Errorf("expected zero counters on second pass, got %+v", report)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Error("second pass changed the transcript")
	}
}

func TestNormalizeMistralSanitizesOnly(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	pol := policy.ForModel("mistral", "mistral-large")

	msgs := []transcript.Message{
		{Role: transcript.RoleAssistant, Content: []transcript.ContentBlock{
			transcript.NewToolCallBlock("weird id!!", "bash", json.RawMessage(`{}`)),
		}},
		// Missing result: must stay missing, mistral gets no synthesis.
	}

	out, report := n.Normalize(msgs, pol)
	if len(report.SyntheticResults) != 0 {
		t.Error("mistral policy must not synthesize results")
	}
	id := out[0].Content[0].ID
	if len(id) != 9 {
		t.Errorf("expected strict9 id, got %q", id)
	}
	if len(out) != 1 {
		t.Errorf("expected transcript length preserved, got %d", len(out))
	}
}

func TestNormalizePassThroughProvider(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	msgs := messyTranscript()

	out, report := n.Normalize(msgs, policy.ForModel("openai", "gpt-4o"))

	// Only the unconditional input validator runs.
	if report.DroppedToolCalls != 1 {
		t.Errorf("expected the validator to run, got %+v", report)
	}
	if report.DroppedOrphanResults != 0 || len(report.SyntheticResults) != 0 {
		t.Error("pairing repair must not run for pass-through providers")
	}
	if out[1].ToolCalls()[0].ID != "call one!!" {
		t.Error("ids must not be sanitized for pass-through providers")
	}
}

func TestNormalizeCleanTranscriptSameReference(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	msgs := []transcript.Message{
		{Role: transcript.RoleUser, Content: []transcript.ContentBlock{transcript.NewTextBlock("hi")}},
		{Role: transcript.RoleAssistant, Content: []transcript.ContentBlock{
			transcript.NewToolCallBlock("abc123", "bash", json.RawMessage(`{}`)),
		}},
		{Role: transcript.RoleToolResult, ToolCallID: "abc123"},
	}

	out, report := n.Normalize(msgs, policy.ForModel("anthropic", "claude-sonnet-4"))
	if report.Changed() {
		t.Errorf("expected no changes, got %+v", report)
	}
	if &out[0] != &msgs[0] {
		t.Error("expected the input slice back unchanged")
	}
}

func TestNormalizeDefaultsModeWhenOverrideOmitsIt(t *testing.T) {
	t.Parallel()

	n := NewWithClock(nil, fixedClock)
	pol := policy.Policy{SanitizeToolCallIDs: true}

	msgs := []transcript.Message{
		{Role: transcript.RoleAssistant, Content: []transcript.ContentBlock{
			transcript.NewToolCallBlock("weird id!!", "bash", json.RawMessage(`{}`)),
		}},
	}
	out, _ := n.Normalize(msgs, pol)
	if out[0].Content[0].ID != "weirdid" {
		t.Errorf("expected strict sanitization by default, got %q", out[0].Content[0].ID)
	}
}
