// Package pipeline composes the repair stages in the fixed order a
// provider request requires: input validation, then id canonicalization,
// then call/result pairing repair, each stage gated by policy.
package pipeline

import (
	"log/slog"
	"time"

	"splice/internal/policy"
	"splice/internal/repair"
	"splice/internal/toolid"
	"splice/internal/transcript"
)

// Report aggregates every stage's counters for one normalization run.
type Report struct {
	DroppedToolCalls         int
	DroppedAssistantMessages int
	DroppedDuplicateResults  int
	DroppedOrphanResults     int
	Moved                    bool

	// SyntheticResults holds every placeholder result the pairing stage
	// inserted, for auditing.
	SyntheticResults []transcript.Message
}

// Changed reports whether the run altered the transcript at all.
func (r Report) Changed() bool {
	return r.DroppedToolCalls > 0 ||
		r.DroppedAssistantMessages > 0 ||
		r.DroppedDuplicateResults > 0 ||
		r.DroppedOrphanResults > 0 ||
		r.Moved ||
		len(r.SyntheticResults) > 0
}

// Normalizer runs transcripts through the repair pipeline. It holds no
// state between calls and is safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Normalizer. The logger may be nil for silent operation.
func New(logger *slog.Logger) *Normalizer {
	return NewWithClock(logger, time.Now)
}

// NewWithClock creates a Normalizer with an injected time source, so
// synthesized-result timestamps are reproducible in tests.
func NewWithClock(logger *slog.Logger, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{logger: logger, now: now}
}

// Normalize validates the transcript, then applies the policy's stages in
// order. The input slice is never mutated; when no stage changed anything
// the input comes back as-is, same reference.
func (n *Normalizer) Normalize(msgs []transcript.Message, pol policy.Policy) ([]transcript.Message, Report) {
	var report Report

	inputs := repair.RepairInputs(msgs)
	msgs = inputs.Messages
	report.DroppedToolCalls = inputs.DroppedToolCalls
	report.DroppedAssistantMessages = inputs.DroppedAssistantMessages

	if pol.SanitizeToolCallIDs {
		mode := pol.ToolCallIDMode
		if mode == "" {
			mode = toolid.ModeStrict
		}
		msgs = toolid.CanonicalizeWithClock(msgs, mode, n.now)
	}

	if pol.RepairToolUseResultPairing {
		pairing := repair.RepairPairingWithClock(msgs, pol.AllowSyntheticToolResults, n.now)
		msgs = pairing.Messages
		report.DroppedDuplicateResults = pairing.DroppedDuplicates
		report.DroppedOrphanResults = pairing.DroppedOrphans
		report.Moved = pairing.Moved
		report.SyntheticResults = pairing.Added
	}

	if n.logger != nil && report.Changed() {
		n.logger.Info("transcript repaired",
			"dropped_tool_calls", report.DroppedToolCalls,
			"dropped_assistant_messages", report.DroppedAssistantMessages,
			"dropped_duplicate_results", report.DroppedDuplicateResults,
			"dropped_orphan_results", report.DroppedOrphanResults,
			"synthetic_results", len(report.SyntheticResults),
			"moved", report.Moved,
		)
	}

	return msgs, report
}
