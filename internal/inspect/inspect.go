// Package inspect provides an interactive loop for examining a transcript,
// dry-running the normalization pipeline against a provider, and writing
// the repaired result back out.
package inspect

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"splice/internal/pipeline"
	"splice/internal/policy"
	"splice/internal/token"
	"splice/internal/transcript"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
)

// Inspector holds the state of one interactive session.
type Inspector struct {
	logger   *slog.Logger
	cfg      *policy.Config
	norm     *pipeline.Normalizer
	messages []transcript.Message
	path     string
	provider string
	model    string
	report   *pipeline.Report
}

// New creates an Inspector. The policy config may be nil.
func New(logger *slog.Logger, cfg *policy.Config) *Inspector {
	return &Inspector{
		logger: logger,
		cfg:    cfg,
		norm:   pipeline.New(logger),
	}
}

// Run starts the interaction loop, optionally loading a transcript first.
func (i *Inspector) Run(path string) error {
	if path != "" {
		if err := i.load(path); err != nil {
			return err
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          colorBold + "splice> " + colorReset,
		HistoryFile:     filepath.Join(os.Getenv("HOME"), ".splice_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%ssplice inspector%s  type help for commands\n", colorBold, colorReset)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue // Ctrl+C clears line, continue prompting
			}
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help", "?":
			i.printHelp()
		case "load":
			i.cmdLoad(args)
		case "show":
			i.cmdShow()
		case "policy":
			i.cmdPolicy(args)
		case "normalize", "norm":
			i.cmdNormalize()
		case "report":
			i.cmdReport()
		case "tokens":
			i.cmdTokens()
		case "write":
			i.cmdWrite(args)
		default:
			fmt.Printf("%sUnknown command: %s. Type help for available commands.%s\n", colorRed, cmd, colorReset)
		}
	}
}

func (i *Inspector) printHelp() {
	help := `
Available commands:
  load <file>              - Load a transcript JSON file
  show                     - List the loaded messages
  policy [provider model]  - Show or set the provider/model policy
  normalize                - Run the repair pipeline on the loaded transcript
  report                   - Show the last normalization report
  tokens                   - Estimate the transcript's token count
  write [file]             - Write the transcript (default: back to its file)
  exit                     - Leave the inspector
`
	fmt.Println(help)
}

func (i *Inspector) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	msgs, err := transcript.Decode(f)
	if err != nil {
		return err
	}
	i.messages = msgs
	i.path = path
	i.report = nil
	fmt.Printf("Loaded %d messages from %s\n", len(msgs), path)
	return nil
}

func (i *Inspector) cmdLoad(args []string) {
	if len(args) != 1 {
		fmt.Printf("%sUsage: load <file>%s\n", colorYellow, colorReset)
		return
	}
	if err := i.load(args[0]); err != nil {
		fmt.Printf("%sError: %v%s\n", colorRed, err, colorReset)
	}
}

func (i *Inspector) cmdShow() {
	if len(i.messages) == 0 {
		fmt.Println("No transcript loaded.")
		return
	}
	for idx, msg := range i.messages {
		fmt.Printf("%s%3d%s  %s%-10s%s  %s\n",
			colorDim, idx, colorReset, colorCyan, msg.Role, colorReset, describe(msg))
	}
}

func (i *Inspector) cmdPolicy(args []string) {
	switch len(args) {
	case 0:
	case 1:
		i.provider = args[0]
		i.model = ""
	case 2:
		i.provider = args[0]
		i.model = args[1]
	default:
		fmt.Printf("%sUsage: policy [provider [model]]%s\n", colorYellow, colorReset)
		return
	}

	pol := i.cfg.Apply(i.provider, i.model)
	fmt.Printf("provider=%q model=%q\n", i.provider, i.model)
	fmt.Printf("  sanitize ids:    %v (mode %s)\n", pol.SanitizeToolCallIDs, pol.ToolCallIDMode)
	fmt.Printf("  pairing repair:  %v\n", pol.RepairToolUseResultPairing)
	fmt.Printf("  synthetics:      %v\n", pol.AllowSyntheticToolResults)
}

func (i *Inspector) cmdNormalize() {
	if len(i.messages) == 0 {
		fmt.Println("No transcript loaded.")
		return
	}
	pol := i.cfg.Apply(i.provider, i.model)
	before := len(i.messages)
	msgs, report := i.norm.Normalize(i.messages, pol)
	i.messages = msgs
	i.report = &report

	if !report.Changed() {
		fmt.Printf("%s✓ already canonical%s\n", colorGreen, colorReset)
		return
	}
	fmt.Printf("%s✓ repaired%s %d -> %d messages\n", colorGreen, colorReset, before, len(msgs))
	i.cmdReport()
}

func (i *Inspector) cmdReport() {
	if i.report == nil {
		fmt.Println("No normalization run yet.")
		return
	}
	fmt.Print(RenderMarkdown(ReportMarkdown(*i.report)))
	fmt.Println()
}

func (i *Inspector) cmdTokens() {
	if len(i.messages) == 0 {
		fmt.Println("No transcript loaded.")
		return
	}
	fmt.Printf("~%d tokens across %d messages\n", token.CountMessages(i.messages), len(i.messages))
}

func (i *Inspector) cmdWrite(args []string) {
	path := i.path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		fmt.Printf("%sUsage: write <file>%s\n", colorYellow, colorReset)
		return
	}
	if len(i.messages) == 0 {
		fmt.Println("No transcript loaded.")
		return
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", colorRed, err, colorReset)
		return
	}
	defer f.Close()

	if err := transcript.Encode(f, i.messages); err != nil {
		fmt.Printf("%sError: %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Printf("Wrote %d messages to %s\n", len(i.messages), path)
}

// describe summarizes one message for the show listing.
func describe(msg transcript.Message) string {
	switch msg.Role {
	case transcript.RoleAssistant:
		var parts []string
		for _, block := range msg.Content {
			if block.IsToolCall() {
				parts = append(parts, fmt.Sprintf("%s(%s)", block.Name, block.ID))
			} else if block.Type == transcript.BlockText {
				parts = append(parts, truncate(block.Text, 40))
			}
		}
		if msg.StopReason != "" {
			parts = append(parts, colorYellow+"stop="+msg.StopReason+colorReset)
		}
		return strings.Join(parts, " | ")
	case transcript.RoleToolResult:
		mark := ""
		if msg.IsError {
			mark = colorRed + " ✗" + colorReset
		}
		return fmt.Sprintf("-> %s%s", msg.ResultID(), mark)
	case transcript.RoleUser, transcript.RoleSystem:
		for _, block := range msg.Content {
			if block.Type == transcript.BlockText {
				return truncate(block.Text, 60)
			}
		}
		return ""
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
