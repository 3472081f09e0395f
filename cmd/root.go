package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"splice/internal/inspect"
	"splice/internal/logging"
	"splice/internal/pipeline"
	"splice/internal/policy"
	"splice/internal/session"
	"splice/internal/transcript"
	"splice/internal/version"
)

var (
	flagProvider  string
	flagModel     string
	flagWrite     bool
	flagReport    bool
	flagSessionID string
)

var rootCmd = &cobra.Command{
	Use:   "splice [transcript.json]",
	Short: "Repair agent transcripts before they reach a model provider",
	Long: `splice normalizes a conversation transcript so it satisfies the
tool-call protocol a chat-completion API enforces: malformed tool calls are
dropped, ids are rewritten into provider-legal unique form, and every tool
call ends up with exactly one result.

Reads a transcript JSON file (or stdin), writes the canonical transcript to
stdout, and prints a change report to stderr.`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runNormalize,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "provider the transcript is bound for (anthropic, google, mistral, ...)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model id, used for family detection (gemini-*, mixtral-*, ...)")
	rootCmd.Flags().BoolVar(&flagWrite, "write", false, "write the result back to the input file instead of stdout")
	rootCmd.Flags().BoolVar(&flagReport, "report", false, "render the change report as markdown")
	rootCmd.Flags().StringVar(&flagSessionID, "session", "", "normalize a saved session in place instead of a file")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	logger, cleanup, err := logging.Setup()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			fmt.Fprintf(os.Stderr, "closing log file: %v\n", cerr)
		}
	}()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := policy.LoadForWorkDir(workDir)
	if err != nil {
		return fmt.Errorf("loading policy config: %w", err)
	}

	if flagSessionID != "" {
		return normalizeSession(logger, cfg, workDir, flagSessionID)
	}

	msgs, path, err := readTranscript(args)
	if err != nil {
		return err
	}

	pol := cfg.Apply(flagProvider, flagModel)
	logger.Info("normalizing transcript",
		"messages", len(msgs), "provider", flagProvider, "model", flagModel)

	out, report := pipeline.New(logger).Normalize(msgs, pol)

	if err := writeTranscript(out, path); err != nil {
		return err
	}
	printReport(report)
	return nil
}

func normalizeSession(logger *slog.Logger, cfg *policy.Config, workDir, id string) error {
	store, err := session.StoreForWorkDir(workDir)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	sess, err := store.Load(id)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	provider, model := sess.Provider, sess.Model
	if flagProvider != "" {
		provider = flagProvider
	}
	if flagModel != "" {
		model = flagModel
	}

	pol := cfg.Apply(provider, model)
	logger.Info("normalizing session", "session", id, "provider", provider, "model", model)

	out, report := pipeline.New(logger).Normalize(sess.Messages, pol)
	if report.Changed() {
		sess.SetMessages(out)
		if err := store.Save(sess); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	printReport(report)
	return nil
}

func readTranscript(args []string) ([]transcript.Message, string, error) {
	if len(args) == 0 {
		msgs, err := transcript.Decode(os.Stdin)
		return msgs, "", err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	msgs, err := transcript.Decode(f)
	return msgs, path, err
}

func writeTranscript(msgs []transcript.Message, path string) error {
	if !flagWrite || path == "" {
		return transcript.Encode(os.Stdout, msgs)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	defer f.Close()
	return transcript.Encode(f, msgs)
}

func printReport(report pipeline.Report) {
	if flagReport {
		fmt.Fprintln(os.Stderr, inspect.RenderMarkdown(inspect.ReportMarkdown(report)))
		return
	}

	if !report.Changed() {
		fmt.Fprintln(os.Stderr, "transcript already canonical")
		return
	}
	fmt.Fprintf(os.Stderr,
		"repaired: %d tool calls dropped, %d messages dropped, %d duplicates, %d orphans, %d synthesized, moved=%v\n",
		report.DroppedToolCalls, report.DroppedAssistantMessages,
		report.DroppedDuplicateResults, report.DroppedOrphanResults,
		len(report.SyntheticResults), report.Moved)
}
