// Package token estimates the context cost of a transcript. Estimates use
// a characters-per-token heuristic; actual provider counts will vary.
package token

import "splice/internal/transcript"

// Approximate characters per token for current chat models. BPE tokenizers
// average around 4 characters per token for English text.
var charsPerToken = 4

// Count estimates the number of tokens in a string.
func Count(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// CountMessage estimates the token count for a single message.
func CountMessage(msg transcript.Message) int {
	// Role and framing overhead.
	total := 2

	if msg.Role == transcript.RoleToolResult {
		// Reference id and structure overhead.
		total += 10
		total += Count(msg.ToolName)
	}

	for _, block := range msg.Content {
		total += countBlock(block)
	}
	return total
}

// CountMessages estimates the total token count for a transcript.
func CountMessages(msgs []transcript.Message) int {
	total := 0
	for _, msg := range msgs {
		total += CountMessage(msg)
	}
	return total
}

func countBlock(block transcript.ContentBlock) int {
	if block.IsToolCall() {
		return Count(block.Name) + Count(string(block.Args()))
	}
	if block.Type == transcript.BlockText {
		return Count(block.Text)
	}
	// Unknown block type, estimate conservatively.
	return 50
}
