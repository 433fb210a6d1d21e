// Package cli — extract.go implements the "pbo-tools extract" command.
//
// The extract command is the primary user-facing operation. It runs the
// extraction tool against an archive inside an isolated scratch
// workspace and atomically commits the selected files to the output
// directory.
//
// Orchestration steps:
//  1. Resolve configuration (defaults, config file, flags)
//  2. Validate the archive and compile the filter
//  3. Run the tool with retries in a scratch workspace
//  4. Commit matching files to the output directory
//  5. Output results (text or JSON)
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
	"github.com/tyen-customs-a3/pbo-tools/internal/pbo"
)

// extractFlags holds the flag values for the extract command.
// These are bound to cobra flags in NewExtractCommand.
type extractFlags struct {
	filter           string // --filter: wildcard pattern selecting entries
	ignoreWarnings   bool   // --ignore-warnings: suppress warning output
	warningsAsErrors bool   // --warnings-as-errors: fail on any warning
	normalizeBins    bool   // --normalize-bins: rename derived binary files
}

// NewExtractCommand creates the "extract" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewExtractCommand() *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <archive> <output-dir>",
		Short: "Extract files from a PBO archive",
		Long: `Extract files from a PBO archive into an output directory.

The tool runs in an isolated scratch workspace; files only appear in
the output directory once the whole extraction has succeeded, so a
failed or interrupted run never leaves partial output behind.

Examples:
  pbo-tools extract weapons.pbo ./out
  pbo-tools extract --filter "*.cpp" weapons.pbo ./out
  pbo-tools extract --filter "*.cpp|*.hpp" weapons.pbo ./out
  pbo-tools extract --normalize-bins weapons.pbo ./out`,

		// Args validates that exactly two positional arguments are provided.
		Args: cobra.ExactArgs(2),

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd, args[0], args[1], flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().StringVar(&flags.filter, "filter", "", `Wildcard pattern selecting entries, alternatives separated by "|"`)
	cmd.Flags().BoolVar(&flags.ignoreWarnings, "ignore-warnings", false, "Do not print tool warnings")
	cmd.Flags().BoolVar(&flags.warningsAsErrors, "warnings-as-errors", false, "Treat tool warnings as a corrupt archive")
	cmd.Flags().BoolVar(&flags.normalizeBins, "normalize-bins", false, "Rename derived binary files to their source names (config.bin -> config.cpp)")

	return cmd
}

// runExtract is the main orchestration function for the extract command.
func runExtract(ctx context.Context, cmd *cobra.Command, archivePath, outputDir string, flags *extractFlags) error {
	// Step 1: Resolve the effective configuration, then overlay the
	// command-specific switches on top.
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if flags.warningsAsErrors || flags.normalizeBins {
		b := cfg.Builder()
		if flags.warningsAsErrors {
			b.WithTreatWarningsAsErrors(true)
		}
		if flags.normalizeBins {
			b.WithNormalizeBins(true)
		}
		cfg, err = b.Build()
		if err != nil {
			return err
		}
	}

	api, err := pbo.New(cfg, pbo.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	VerboseLog("Extracting %s to %s (filter=%q)", archivePath, outputDir, flags.filter)

	// Step 2: Run the extraction. Validation, retries, and the atomic
	// commit all happen behind this call.
	result, err := api.ExtractFiles(ctx, model.ExtractRequest{
		ArchivePath: archivePath,
		OutputDir:   outputDir,
		Filter:      flags.filter,
	})
	if err != nil {
		return err
	}

	// Step 3: Surface warnings on stderr so they remain visible when
	// stdout is piped, unless the user opted out.
	if !flags.ignoreWarnings {
		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	printExtractResult(result)
	return nil
}

// printExtractResult outputs the extraction summary in text or JSON
// format, depending on the global --json flag.
func printExtractResult(result model.ExtractResult) {
	if IsJSONOutput() {
		printExtractResultJSON(result)
	} else {
		printExtractResultText(result)
	}
}

// extractResultJSON is the JSON output structure for the extract
// command.
type extractResultJSON struct {
	Archive   string   `json:"archive"`
	OutputDir string   `json:"outputDir"`
	Files     []string `json:"files"`
	Warnings  []string `json:"warnings"`
	Attempts  int      `json:"attempts"`
	ElapsedMs int64    `json:"elapsedMs"`
}

// printExtractResultJSON outputs the extraction summary as structured JSON.
func printExtractResultJSON(result model.ExtractResult) {
	out := extractResultJSON{
		Archive:   result.ArchivePath,
		OutputDir: result.OutputDir,
		// Use empty slices instead of nil so JSON output shows [] instead
		// of null for clean extractions.
		Files:     make([]string, 0, len(result.Files)),
		Warnings:  make([]string, 0, len(result.Warnings)),
		Attempts:  result.Attempts,
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
	out.Files = append(out.Files, result.Files...)
	out.Warnings = append(out.Warnings, result.Warnings...)

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// printExtractResultText outputs the extraction summary as
// human-readable text.
func printExtractResultText(result model.ExtractResult) {
	fmt.Printf("Extracted %d file(s) to %s\n", len(result.Files), result.OutputDir)
	for _, file := range result.Files {
		fmt.Printf("  %s\n", file)
	}
	fmt.Printf("\nCompleted in %s after %d attempt(s)\n",
		result.Elapsed.Round(time.Millisecond), result.Attempts)
}
