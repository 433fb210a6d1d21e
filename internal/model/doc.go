// Package model defines the domain types shared across pbo-tools:
// archive entries, operation results, the error taxonomy, and the
// process exit codes the CLI maps errors onto.
//
// The package depends on nothing else in this module, which keeps it
// importable from every layer (configuration, extraction, retry, CLI)
// without cycles. All error types implement the PboError interface so
// the CLI can resolve an exit code from any error in one place.
package model
