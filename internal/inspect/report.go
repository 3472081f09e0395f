package inspect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"splice/internal/pipeline"
)

// markdownRenderer is the glamour renderer for terminal markdown.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0), // No wrapping - let terminal handle it
	)
	if err != nil {
		// Fallback: no rendering
		markdownRenderer = nil
	}
}

// RenderMarkdown converts markdown to styled terminal output using glamour.
func RenderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// ReportMarkdown formats a normalization report as markdown.
func ReportMarkdown(report pipeline.Report) string {
	var b strings.Builder
	b.WriteString("## Normalization report\n\n")

	if !report.Changed() {
		b.WriteString("Transcript was already canonical, nothing changed.\n")
		return b.String()
	}

	row := func(label string, n int) {
		if n > 0 {
			fmt.Fprintf(&b, "- %s: **%d**\n", label, n)
		}
	}
	row("malformed tool calls dropped", report.DroppedToolCalls)
	row("emptied assistant messages dropped", report.DroppedAssistantMessages)
	row("duplicate results dropped", report.DroppedDuplicateResults)
	row("orphaned results dropped", report.DroppedOrphanResults)
	if report.Moved {
		b.WriteString("- results reordered into call order\n")
	}

	if len(report.SyntheticResults) > 0 {
		fmt.Fprintf(&b, "- synthetic error results inserted: **%d**\n\n", len(report.SyntheticResults))
		for _, m := range report.SyntheticResults {
			fmt.Fprintf(&b, "  - `%s` (%s)\n", m.ToolCallID, m.ToolName)
		}
	}

	return b.String()
}
