package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"splice/internal/inspect"
	"splice/internal/logging"
	"splice/internal/policy"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [transcript.json]",
	Short: "Interactively inspect and repair a transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	return inspect.New(logger, cfg).Run(path)
}
