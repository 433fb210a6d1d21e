// Package cli — list.go implements the "pbo-tools list" command.
//
// The list command asks the extraction tool for an archive's table of
// contents and presents it as a text table or JSON object, depending on
// the --json flag. The optional --brief flag requests the tool's
// path-only listing format, which omits timestamps and sizes.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
	"github.com/tyen-customs-a3/pbo-tools/internal/pbo"
)

// listFlags holds the flag values for the list command.
// These are bound to cobra flags in NewListCommand.
type listFlags struct {
	// brief requests the path-only listing without sizes.
	brief bool
}

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List the contents of a PBO archive",
		Long: `List the entries of a PBO archive without extracting anything.

Each entry is shown with its archive-relative path and uncompressed
size. The archive's declared prefix, if any, is shown first.

Examples:
  pbo-tools list weapons.pbo
  pbo-tools list --brief weapons.pbo
  pbo-tools list --json weapons.pbo`,

		// Args validates that exactly one positional argument (the archive) is provided.
		Args: cobra.ExactArgs(1),

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.brief, "brief", false, "List entry paths only, without sizes")

	return cmd
}

// runList is the main logic function for the list command.
// It resolves the configuration, runs the listing, and outputs the
// result in the appropriate format.
func runList(ctx context.Context, cmd *cobra.Command, archivePath string, flags *listFlags) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	api, err := pbo.New(cfg, pbo.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	VerboseLog("Listing %s (brief=%v)", archivePath, flags.brief)

	var result model.ListResult
	if flags.brief {
		result, err = api.ListContentsBrief(ctx, archivePath)
	} else {
		result, err = api.ListContents(ctx, archivePath)
	}
	if err != nil {
		return err
	}

	printListResult(result)
	return nil
}

// printListResult outputs the listing in text or JSON format,
// depending on the global --json flag.
func printListResult(result model.ListResult) {
	if IsJSONOutput() {
		printListResultJSON(result)
	} else {
		printListResultText(result)
	}
}

// listEntryJSON is the JSON output structure for a single archive entry
// in the list command.
type listEntryJSON struct {
	Path      string `json:"path"`
	SizeBytes *int64 `json:"sizeBytes,omitempty"`
}

// listResultJSON is the JSON output structure for the whole listing.
type listResultJSON struct {
	Archive string          `json:"archive"`
	Prefix  string          `json:"prefix,omitempty"`
	Entries []listEntryJSON `json:"entries"`
}

// printListResultJSON outputs the listing as structured JSON. Entries
// without a known size omit the sizeBytes key rather than reporting a
// misleading zero.
func printListResultJSON(result model.ListResult) {
	out := listResultJSON{
		Archive: result.ArchivePath,
		Prefix:  result.Prefix,
		// Use an empty slice instead of nil to ensure JSON output shows []
		// instead of null when the archive has no entries.
		Entries: make([]listEntryJSON, 0, len(result.Entries)),
	}

	for _, entry := range result.Entries {
		item := listEntryJSON{Path: entry.RelativePath}
		if entry.SizeKnown {
			size := entry.SizeBytes
			item.SizeBytes = &size
		}
		out.Entries = append(out.Entries, item)
	}

	// MarshalIndent produces human-readable JSON with 2-space indentation.
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// printListResultText outputs the listing as a human-readable text
// table with aligned columns.
//
// The table format is:
//
//	PATH                                     SIZE
//	config.cpp                               1.2 KB
//	data/body.paa                            256.0 KB
func printListResultText(result model.ListResult) {
	if result.Prefix != "" {
		fmt.Printf("Prefix: %s\n", result.Prefix)
	}
	if len(result.Entries) == 0 {
		fmt.Println("No entries found.")
		return
	}

	// Print header row.
	fmt.Printf("%-50s %s\n", "PATH", "SIZE")

	for _, entry := range result.Entries {
		fmt.Printf("%-50s %s\n", entry.RelativePath, FormatEntrySize(entry))
	}

	fmt.Printf("\n%d entries\n", len(result.Entries))
}

// FormatEntrySize renders an entry's size as a short human-readable
// string. Entries without a known size (brief listings) render as "-".
//
// This function is exported for testing purposes (tested in list_test.go).
//
// Example:
//
//	{SizeBytes: 1536, SizeKnown: true} → "1.5 KB"
//	{SizeKnown: false}                 → "-"
func FormatEntrySize(entry model.ArchiveEntry) string {
	if !entry.SizeKnown {
		return "-"
	}
	return formatByteCount(entry.SizeBytes)
}

// formatByteCount renders a byte count with a binary unit prefix and
// one decimal place above the bytes range.
func formatByteCount(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
