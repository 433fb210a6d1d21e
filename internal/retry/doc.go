// Package retry drives repeated extraction attempts under a fixed
// budget.
//
// A Controller runs one logical operation: it invokes the tool, and on
// failures whose kind the policy marks retryable it clears the
// workspace and tries again, up to the configured number of retries.
// Non-retryable failures and context cancellation end the operation
// immediately. The controller exposes its state for observability but
// holds no state across operations; callers create one per operation.
package retry
