// Package providers converts canonical transcripts into provider API
// request formats. Conversion assumes the transcript has already been
// normalized; it does no repair of its own.
package providers

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"splice/internal/transcript"
)

// AnthropicMessages converts a canonical transcript into API-ready message
// params. System messages are folded into the returned system prompt, since
// the Anthropic API carries them outside the message list. Consecutive
// toolResult messages merge into a single user message, one tool_result
// block each, which is the shape the API expects after a tool turn.
func AnthropicMessages(msgs []transcript.Message) (system string, params []anthropic.MessageParam) {
	var systemParts []string
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) == 0 {
			return
		}
		params = append(params, anthropic.NewUserMessage(pendingResults...))
		pendingResults = nil
	}

	for _, msg := range msgs {
		switch msg.Role {
		case transcript.RoleSystem:
			flushResults()
			if text := blockText(msg.Content); text != "" {
				systemParts = append(systemParts, text)
			}

		case transcript.RoleUser:
			flushResults()
			blocks := textBlocks(msg.Content)
			if len(blocks) == 0 {
				continue
			}
			params = append(params, anthropic.NewUserMessage(blocks...))

		case transcript.RoleAssistant:
			flushResults()
			var blocks []anthropic.ContentBlockParamUnion
			for _, block := range msg.Content {
				if block.IsToolCall() {
					blocks = append(blocks, anthropic.NewToolUseBlock(block.ID, block.Args(), block.Name))
					continue
				}
				if block.Type == transcript.BlockText && block.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(block.Text))
				}
			}
			if len(blocks) == 0 {
				continue
			}
			params = append(params, anthropic.NewAssistantMessage(blocks...))

		case transcript.RoleToolResult:
			pendingResults = append(pendingResults,
				anthropic.NewToolResultBlock(msg.ResultID(), blockText(msg.Content), msg.IsError))

		default:
			flushResults()
		}
	}
	flushResults()

	return strings.Join(systemParts, "\n\n"), params
}

func textBlocks(blocks []transcript.ContentBlock) []anthropic.ContentBlockParamUnion {
	var out []anthropic.ContentBlockParamUnion
	for _, block := range blocks {
		if block.Type == transcript.BlockText && block.Text != "" {
			out = append(out, anthropic.NewTextBlock(block.Text))
		}
	}
	return out
}

func blockText(blocks []transcript.ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if block.Type == transcript.BlockText && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
