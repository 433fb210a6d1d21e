package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed process may linger before its
// pipes are forcibly closed.
const waitDelay = 3 * time.Second

// ExtractPbo is the Backend backed by the real extractpbo binary.
type ExtractPbo struct {
	binary string
	logger *slog.Logger
}

// NewExtractPbo creates a backend invoking the given binary. The
// binary may be a bare name resolved through PATH or an absolute path.
func NewExtractPbo(binary string, logger *slog.Logger) *ExtractPbo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractPbo{
		binary: binary,
		logger: logger,
	}
}

// buildArgs assembles the command line for a request. The -P flag
// keeps the tool from pausing for keyboard input, which would hang an
// unattended run.
func buildArgs(req Request) []string {
	args := []string{"-P"}

	switch req.Mode {
	case ModeList:
		args = append(args, "-L", req.ArchivePath)
	case ModeListBrief:
		args = append(args, "-LB", req.ArchivePath)
	case ModeExtract:
		if req.Filter != "" {
			args = append(args, "-F", req.Filter)
		}
		args = append(args, req.ArchivePath, req.OutputDir)
	}

	return args
}

// Run executes the tool and captures both streams. A non-zero exit
// lands in the Result; the returned error is reserved for not being
// able to run the binary at all.
func (e *ExtractPbo) Run(ctx context.Context, req Request) (Result, error) {
	args := buildArgs(req)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running extractor", "binary", e.binary, "args", args)

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return res, fmt.Errorf("%w: %s", ErrToolNotFound, e.binary)
		default:
			return res, fmt.Errorf("running %s: %w", e.binary, err)
		}
	}

	e.logger.Debug("extractor finished",
		"exit_code", res.ExitCode,
		"stdout_bytes", len(res.Stdout),
		"stderr_bytes", len(res.Stderr))

	return res, nil
}
