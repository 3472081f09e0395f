package repair

import (
	"time"

	"splice/internal/transcript"
)

// SyntheticResultText is the body of a placeholder result inserted for a
// tool call whose real result is unrecoverable. Marked isError so the
// model and any downstream UI can tell it apart from a real tool failure.
const SyntheticResultText = "[splice] missing tool result in session history; inserted synthetic error result for transcript repair."

// PairingResult reports what RepairPairing changed.
type PairingResult struct {
	Messages []transcript.Message

	// Added holds every synthesized result, for auditing.
	Added []transcript.Message

	DroppedDuplicates int
	DroppedOrphans    int

	// Moved is set when matched or synthesized results were emitted ahead
	// of other span messages, i.e. the repair reordered the transcript
	// relative to its input.
	Moved bool
}

// RepairPairing reconciles every assistant tool-call message with the span
// of messages that follows it, so that each call ends up with exactly one
// result, in call order. Duplicate and orphaned results are dropped;
// missing results are synthesized when allowSynthetic is set. Assistant
// messages that ended in an error or abort are left exactly as emitted.
func RepairPairing(msgs []transcript.Message, allowSynthetic bool) PairingResult {
	return RepairPairingWithClock(msgs, allowSynthetic, time.Now)
}

// RepairPairingWithClock is RepairPairing with an injected time source for
// synthesized-result timestamps.
func RepairPairingWithClock(msgs []transcript.Message, allowSynthetic bool, now func() time.Time) PairingResult {
	if now == nil {
		now = time.Now
	}

	res := PairingResult{}
	out := make([]transcript.Message, 0, len(msgs))

	// reordered tracks whether the emitted sequence differs from the input
	// beyond what the drop/add counters already capture.
	reordered := false

	i := 0
	for i < len(msgs) {
		msg := msgs[i]

		switch msg.Role {
		case transcript.RoleToolResult:
			// A result outside any scanning window has no governing call.
			res.DroppedOrphans++
			i++

		case transcript.RoleAssistant:
			calls := msg.ToolCalls()
			if msg.Interrupted() || len(calls) == 0 {
				out = append(out, msg)
				i++
				continue
			}

			end := i + 1
			for end < len(msgs) && msgs[end].Role != transcript.RoleAssistant {
				end++
			}
			var spanReordered bool
			out, spanReordered = repairSpan(out, msgs, i, end, calls, allowSynthetic, now, &res)
			if spanReordered {
				reordered = true
			}
			i = end

		case transcript.RoleUser, transcript.RoleSystem:
			out = append(out, msg)
			i++

		default:
			out = append(out, msg)
			i++
		}
	}

	if !reordered && len(res.Added) == 0 && res.DroppedDuplicates == 0 && res.DroppedOrphans == 0 {
		res.Messages = msgs
		return res
	}
	res.Messages = out
	return res
}

// repairSpan emits the anchor assistant message at msgs[anchor], then one
// result per tool call in call order, then every non-result span message in
// original order. The returned bool reports whether the emitted sequence
// differs in order from the input span.
func repairSpan(out, msgs []transcript.Message, anchor, end int, calls []transcript.ContentBlock, allowSynthetic bool, now func() time.Time, res *PairingResult) ([]transcript.Message, bool) {
	callSet := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		if call.ID != "" {
			callSet[call.ID] = struct{}{}
		}
	}

	// First occurrence per call id wins; later duplicates are dropped.
	matched := make(map[string]int)
	var remainder []int

	for j := anchor + 1; j < end; j++ {
		m := msgs[j]
		if m.Role != transcript.RoleToolResult {
			remainder = append(remainder, j)
			continue
		}
		id := m.ResultID()
		if _, ok := callSet[id]; !ok {
			// Not one of this anchor's calls: orphan against this span.
			res.DroppedOrphans++
			continue
		}
		if _, dup := matched[id]; dup {
			res.DroppedDuplicates++
			continue
		}
		matched[id] = j
	}

	out = append(out, msgs[anchor])

	reordered := false
	emitted := 0
	lastIdx := anchor
	for _, call := range calls {
		if call.ID == "" {
			continue
		}
		if j, ok := matched[call.ID]; ok {
			out = append(out, msgs[j])
			emitted++
			if j < lastIdx {
				reordered = true
			}
			lastIdx = j
			// Consume once, in case the anchor repeats a call id.
			delete(matched, call.ID)
			continue
		}
		if allowSynthetic {
			synth := syntheticResult(call, now())
			out = append(out, synth)
			res.Added = append(res.Added, synth)
			emitted++
		}
	}

	for _, j := range remainder {
		out = append(out, msgs[j])
		if j < lastIdx {
			reordered = true
		}
		lastIdx = j
	}

	if emitted > 0 && len(remainder) > 0 {
		res.Moved = true
	}
	return out, reordered
}

func syntheticResult(call transcript.ContentBlock, ts time.Time) transcript.Message {
	name := call.Name
	if name == "" {
		name = "unknown"
	}
	return transcript.Message{
		Role:       transcript.RoleToolResult,
		ToolCallID: call.ID,
		ToolName:   name,
		Content:    []transcript.ContentBlock{transcript.NewTextBlock(SyntheticResultText)},
		IsError:    true,
		Timestamp:  ts,
	}
}
