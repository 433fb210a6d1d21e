package extractor

import (
	"context"
	"errors"
	"strings"
)

// Mode selects which extractpbo operation a request performs.
type Mode string

const (
	// ModeList produces the standard listing with sizes.
	ModeList Mode = "list"
	// ModeListBrief produces the bare-path listing.
	ModeListBrief Mode = "list-brief"
	// ModeExtract unpacks the archive into an output directory.
	ModeExtract Mode = "extract"
)

// ErrToolNotFound reports that the extractor binary could not be
// located on the system.
var ErrToolNotFound = errors.New("extractor binary not found")

// Request describes a single tool invocation.
type Request struct {
	// Mode selects the operation.
	Mode Mode

	// ArchivePath is the archive the tool operates on.
	ArchivePath string

	// OutputDir is where extracted files land. Only meaningful for
	// ModeExtract.
	OutputDir string

	// Filter is an optional tool-side filter expression passed
	// through verbatim. Only meaningful for ModeExtract.
	Filter string
}

// Result carries the raw outcome of one tool run. A non-zero exit
// code is data rather than an error; errors are reserved for failures
// to run the tool at all.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined for marker scanning. The
// tool spreads its diagnostics across both streams.
func (r Result) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// TailLine returns the last non-empty line of stderr, falling back to
// stdout, for use as a one-line diagnostic.
func (r Result) TailLine() string {
	for _, stream := range []string{r.Stderr, r.Stdout} {
		lines := strings.Split(strings.TrimSpace(stream), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if line := strings.TrimSpace(lines[i]); line != "" {
				return line
			}
		}
	}
	return ""
}

// Backend executes extraction tool requests. Implementations must
// honor context cancellation by terminating the underlying process.
type Backend interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, req Request) (Result, error)

// Run calls f.
func (f BackendFunc) Run(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
