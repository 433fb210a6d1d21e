package retry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tyen-customs-a3/pbo-tools/internal/config"
	"github.com/tyen-customs-a3/pbo-tools/internal/extractor"
	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// State describes where a controller is in its operation.
type State string

const (
	// StateIdle means no attempt has started yet.
	StateIdle State = "idle"
	// StateAttempting means an invocation is in flight.
	StateAttempting State = "attempting"
	// StateRetrying means a failed attempt is being cleaned up before
	// the next one.
	StateRetrying State = "retrying"
	// StateSuccess means the operation ended with a usable result.
	StateSuccess State = "success"
	// StateExhausted means the operation ended in failure, either
	// non-retryable or out of budget.
	StateExhausted State = "exhausted"
)

// Invoker performs one classified tool invocation.
type Invoker interface {
	Invoke(ctx context.Context, req extractor.Request) extractor.Attempt
}

// Policy decides which failures are worth another attempt and how
// many retries the budget allows.
type Policy struct {
	// MaxRetries is the number of attempts allowed after the first.
	MaxRetries int

	// Retryable marks the failure kinds eligible for another attempt.
	Retryable map[model.ExtractErrorKind]bool
}

// PolicyFromConfig derives a policy from the configured retry
// settings.
func PolicyFromConfig(cfg config.Config) Policy {
	retryable := make(map[model.ExtractErrorKind]bool, len(cfg.RetryableKinds))
	for _, kind := range cfg.RetryableKinds {
		retryable[kind] = true
	}
	return Policy{
		MaxRetries: cfg.MaxRetries,
		Retryable:  retryable,
	}
}

// Controller runs a single operation's attempt loop.
type Controller struct {
	invoker Invoker
	policy  Policy
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	attempts int
}

// NewController creates a controller for one operation.
func NewController(invoker Invoker, policy Policy, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		invoker: invoker,
		policy:  policy,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns how many invocations have been performed so far.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) countAttempt() {
	c.mu.Lock()
	c.attempts++
	c.mu.Unlock()
}

// Run executes attempts until one succeeds, a non-retryable failure
// occurs, or the retry budget runs out. Before each retry the reset
// callback clears residue left by the failed attempt; a nil reset
// skips that step. Run returns the final attempt, the number of
// invocations performed, and a nil error only when the final attempt
// succeeded.
func (c *Controller) Run(ctx context.Context, req extractor.Request, reset func() error) (extractor.Attempt, int, error) {
	maxAttempts := c.policy.MaxRetries + 1

	var attempt extractor.Attempt
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			c.setState(StateExhausted)
			return attempt, n - 1, fmt.Errorf("extraction aborted: %w", err)
		}

		if n > 1 {
			c.setState(StateRetrying)
			if reset != nil {
				if err := reset(); err != nil {
					c.setState(StateExhausted)
					return attempt, n - 1, err
				}
			}
			c.logger.Warn("retrying after failure",
				"archive", req.ArchivePath,
				"attempt", n,
				"max_attempts", maxAttempts,
				"kind", attempt.Kind)
		}

		c.setState(StateAttempting)
		c.countAttempt()
		attempt = c.invoker.Invoke(ctx, req)

		if !attempt.Failed() {
			c.setState(StateSuccess)
			return attempt, n, nil
		}

		if !c.policy.Retryable[attempt.Kind] {
			c.logger.Debug("failure is not retryable",
				"archive", req.ArchivePath,
				"kind", attempt.Kind)
			c.setState(StateExhausted)
			return attempt, n, c.failureError(req, attempt)
		}
	}

	c.setState(StateExhausted)
	return attempt, maxAttempts, c.failureError(req, attempt)
}

// failureError converts the final failed attempt into the typed error
// surfaced to callers.
func (c *Controller) failureError(req extractor.Request, attempt extractor.Attempt) error {
	return &model.ExtractError{
		Kind:       attempt.Kind,
		Archive:    req.ArchivePath,
		Diagnostic: attempt.Diagnostic,
	}
}
