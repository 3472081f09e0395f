package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"splice/internal/session"
	"splice/internal/token"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved sessions",
	Long:  `List all saved transcript sessions for the current project.`,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	store, err := session.StoreForWorkDir(workDir)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	summaries, err := store.List()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}

	fmt.Printf("%-10s  %-20s  %-8s  %-18s  %-8s  %s\n", "ID", "UPDATED", "MESSAGES", "PROVIDER", "TOKENS", "TITLE")

	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		tokens := "-"
		if sess, err := store.Load(s.ID); err == nil {
			tokens = fmt.Sprintf("~%d", token.CountMessages(sess.Messages))
		}

		fmt.Printf("%-10s  %-20s  %-8d  %-18s  %-8s  %s\n",
			s.ID,
			formatTime(s.UpdatedAt),
			s.MessageCount,
			s.Provider,
			tokens,
			title)
	}

	return nil
}

// formatTime renders a timestamp relative to now for recent sessions.
func formatTime(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return t.Format("2006-01-02 15:04")
	}
}
