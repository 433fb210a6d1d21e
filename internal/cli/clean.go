// Package cli — clean.go implements the "pbo-tools clean" command.
//
// Scratch workspaces are normally removed when their operation
// finishes, but a crash or SIGKILL can leave them behind. The clean
// command sweeps the shared workspace base directory and removes
// abandoned workspaces older than the age cutoff.
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyen-customs-a3/pbo-tools/internal/workspace"
)

// cleanFlags holds the flag values for the clean command.
// These are bound to cobra flags in NewCleanCommand.
type cleanFlags struct {
	// maxAge is the age a workspace must exceed to be swept.
	maxAge time.Duration
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale scratch workspaces",
		Long: `Remove scratch workspaces left behind by interrupted runs.

Workspaces still tracked by a live process are never removed, so the
command is safe to run while extractions are in progress.

Examples:
  pbo-tools clean
  pbo-tools clean --max-age 10m`,

		// No positional arguments are required for the clean command.
		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags)
		},
	}

	cmd.Flags().DurationVar(&flags.maxAge, "max-age", workspace.DefaultMaxAge,
		"Sweep workspaces older than this duration")

	return cmd
}

// runClean is the main logic function for the clean command.
func runClean(flags *cleanFlags) error {
	wm, err := workspace.NewManager(
		workspace.WithMaxAge(flags.maxAge),
		workspace.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	VerboseLog("Sweeping %s (max age %s)", wm.BaseDir(), flags.maxAge)

	swept, err := wm.SweepStale()
	if err != nil {
		return err
	}

	printCleanResult(wm.BaseDir(), swept)
	return nil
}

// printCleanResult outputs the sweep summary in text or JSON format,
// depending on the global --json flag.
func printCleanResult(baseDir string, swept int) {
	if IsJSONOutput() {
		out := struct {
			BaseDir string `json:"baseDir"`
			Swept   int    `json:"swept"`
		}{BaseDir: baseDir, Swept: swept}

		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	if swept == 0 {
		fmt.Println("No stale workspaces found.")
		return
	}
	fmt.Printf("Removed %d stale workspace(s) from %s\n", swept, baseDir)
}
