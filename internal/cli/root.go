// Package cli implements the cobra-based CLI commands for pbo-tools.
//
// Each subcommand (list, extract, clean) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyen-customs-a3/pbo-tools/internal/config"
	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine consumption.
	// When false (default), output uses human-readable text format.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, debug-level log records are printed to stderr.
	verbose bool

	// configFile is an optional path to a YAML or JSONC config file.
	// Flags set explicitly on the command line still win over the file.
	configFile string

	// extractorPath overrides the extractpbo binary to invoke.
	extractorPath string

	// timeoutSeconds bounds each tool invocation, in whole seconds.
	timeoutSeconds int

	// maxRetries is the number of retries after the first failed attempt.
	maxRetries int

	// caseSensitive switches filter matching to exact-case mode.
	caseSensitive bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (list, extract, clean).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "pbo-tools",
		Short: "List and extract PBO archive contents via extractpbo",
		Long: `pbo-tools wraps the extractpbo tool with bounded execution time,
deterministic retries, and atomic output placement.

Listings and extractions run the tool in an isolated scratch workspace;
extracted files only appear in the output directory once the whole
operation has succeeded.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands. This is the cobra
	// mechanism for global flags — any flag defined here is automatically
	// available in every subcommand without re-declaration.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (.yaml, .yml, .json, or .jsonc)")
	rootCmd.PersistentFlags().StringVar(&extractorPath, "extractor", "", "extractpbo binary to invoke (default: extractpbo on PATH)")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0, "Per-invocation timeout in seconds (default: 30)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "retries", 0, "Retries after the first failed attempt (default: 3)")
	rootCmd.PersistentFlags().BoolVar(&caseSensitive, "case-sensitive", false, "Match filter patterns case-sensitively")

	// Register subcommands. Each subcommand is defined in its own file
	// (list.go, extract.go, clean.go) and returns a *cobra.Command.
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// buildConfig resolves the effective configuration for a command run:
// defaults, overlaid by the optional config file, overlaid by any flag
// the user set explicitly. cmd.Flags().Changed distinguishes an
// explicit zero from an unset flag.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	b := cfg.Builder()
	if cmd.Flags().Changed("timeout") {
		b.WithTimeout(time.Duration(timeoutSeconds) * time.Second)
	}
	if cmd.Flags().Changed("retries") {
		b.WithMaxRetries(maxRetries)
	}
	if cmd.Flags().Changed("case-sensitive") {
		b.WithCaseSensitive(caseSensitive)
	}
	if cmd.Flags().Changed("extractor") {
		b.WithExtractor(extractorPath)
	}
	return b.Build()
}

// newLogger builds the logger the library layers log through. Debug
// level when --verbose is set, warnings and errors only otherwise.
// Log records go to stderr so stdout stays parseable.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into OS exit codes via the error taxonomy. Typed errors carry their
// own exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(int(model.ExitCodeFor(err)))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(err error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message":  err.Error(),
				"exitCode": int(model.ExitCodeFor(err)),
			},
		}
		// Extraction failures carry a machine-readable kind worth
		// surfacing separately from the message text.
		var extractErr *model.ExtractError
		if errors.As(err, &extractErr) {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["kind"] = string(extractErr.Kind)
			}
		}
		// json.MarshalIndent produces human-readable JSON with indentation.
		// We write to stderr for errors, even in JSON mode, because stdout
		// is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		// Text format: "Error: <message>" on stderr.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// This is used throughout the CLI for debug/trace output that helps
// users understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
