// Package repair fixes malformed transcripts so they satisfy the tool-call
// protocol a chat-completion API enforces. Every malformed shape is a
// data-repair case, never an error: functions here always succeed and
// report what they changed.
package repair

import "splice/internal/transcript"

// InputsResult reports what RepairInputs changed.
type InputsResult struct {
	Messages                 []transcript.Message
	DroppedToolCalls         int
	DroppedAssistantMessages int
}

// RepairInputs removes structurally invalid tool-call blocks (missing id,
// name, or payload) from assistant messages, and drops assistant messages
// left empty by that removal. All other messages pass through untouched.
// When nothing was dropped the input slice is returned as-is, same
// reference, so callers can check idempotence cheaply.
func RepairInputs(msgs []transcript.Message) InputsResult {
	res := InputsResult{}
	out := make([]transcript.Message, 0, len(msgs))
	changed := false

	for _, msg := range msgs {
		switch msg.Role {
		case transcript.RoleAssistant:
			kept, dropped := dropInvalidCalls(msg.Content)
			if dropped == 0 {
				out = append(out, msg)
				continue
			}
			changed = true
			res.DroppedToolCalls += dropped
			if len(kept) == 0 {
				res.DroppedAssistantMessages++
				continue
			}
			msg.Content = kept
			out = append(out, msg)

		case transcript.RoleUser, transcript.RoleSystem, transcript.RoleToolResult:
			out = append(out, msg)

		default:
			out = append(out, msg)
		}
	}

	if !changed {
		res.Messages = msgs
		return res
	}
	res.Messages = out
	return res
}

// dropInvalidCalls filters malformed tool-call blocks out of an assistant
// message's content. It allocates only when something is dropped.
func dropInvalidCalls(blocks []transcript.ContentBlock) ([]transcript.ContentBlock, int) {
	dropped := 0
	var kept []transcript.ContentBlock

	for i, block := range blocks {
		if block.IsToolCall() && !block.WellFormed() {
			if kept == nil {
				kept = make([]transcript.ContentBlock, 0, len(blocks)-1)
				kept = append(kept, blocks[:i]...)
			}
			dropped++
			continue
		}
		if kept != nil {
			kept = append(kept, block)
		}
	}

	if dropped == 0 {
		return blocks, 0
	}
	return kept, dropped
}
