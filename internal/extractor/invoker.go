package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// Attempt is the classified outcome of one tool invocation.
type Attempt struct {
	// Result holds the raw streams and exit code.
	Result Result

	// Outcome is the attempt verdict.
	Outcome model.Outcome

	// Kind is set when Outcome is failure.
	Kind model.ExtractErrorKind

	// Diagnostic is a one-line explanation for failures, typically
	// the marker line that matched.
	Diagnostic string

	// Warnings are the recognized benign warning lines.
	Warnings []string

	// Elapsed is how long the invocation took.
	Elapsed time.Duration
}

// Failed reports whether the attempt ended in failure.
func (a Attempt) Failed() bool {
	return a.Outcome == model.OutcomeFailure
}

// Invoker performs single bounded invocations of the tool and
// classifies what came back.
type Invoker struct {
	backend    Backend
	classifier *Classifier
	timeout    time.Duration
	logger     *slog.Logger
}

// NewInvoker wires a backend and classifier with a per-attempt
// timeout.
func NewInvoker(backend Backend, classifier *Classifier, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		backend:    backend,
		classifier: classifier,
		timeout:    timeout,
		logger:     logger,
	}
}

// Invoke runs one attempt under the configured deadline and
// classifies the outcome. Marker lines are scanned even when the tool
// exits zero, since extractpbo reports some corruption that way.
func (inv *Invoker) Invoke(ctx context.Context, req Request) Attempt {
	attemptCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	start := time.Now()
	res, err := inv.backend.Run(attemptCtx, req)
	attempt := Attempt{
		Result:  res,
		Elapsed: time.Since(start),
	}

	switch {
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = model.KindTimeout
		attempt.Diagnostic = fmt.Sprintf("no result within %s", inv.timeout)

	case errors.Is(err, ErrToolNotFound):
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = model.KindToolNotFound
		attempt.Diagnostic = err.Error()

	case err != nil:
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = model.KindUnknown
		attempt.Diagnostic = err.Error()

	default:
		inv.classify(&attempt)
	}

	inv.logger.Debug("attempt classified",
		"mode", req.Mode,
		"outcome", attempt.Outcome,
		"kind", attempt.Kind,
		"elapsed", attempt.Elapsed)

	return attempt
}

// classify inspects the streams of a run that produced a result.
func (inv *Invoker) classify(attempt *Attempt) {
	output := attempt.Result.Combined()

	if kind, line, found := inv.classifier.FailureKind(output); found {
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = kind
		attempt.Diagnostic = line
		return
	}

	if attempt.Result.ExitCode != 0 {
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = model.KindUnknown
		attempt.Diagnostic = attempt.Result.TailLine()
		if attempt.Diagnostic == "" {
			attempt.Diagnostic = fmt.Sprintf("exit code %d", attempt.Result.ExitCode)
		}
		return
	}

	attempt.Warnings = inv.classifier.Warnings(output)
	if len(attempt.Warnings) > 0 && inv.classifier.TreatWarningsAsErrors() {
		attempt.Outcome = model.OutcomeFailure
		attempt.Kind = model.KindCorruptArchive
		attempt.Diagnostic = attempt.Warnings[0]
		return
	}

	if len(attempt.Warnings) > 0 {
		attempt.Outcome = model.OutcomeWarnings
		return
	}

	attempt.Outcome = model.OutcomeSuccess
}
