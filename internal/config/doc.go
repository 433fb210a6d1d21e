// Package config holds the immutable settings that govern every
// archive operation: the per-attempt timeout, the retry budget, filter
// case sensitivity, the warning policy, and the outcome classification
// tables for the extractor's diagnostic output.
//
// A Config is produced by the builder (NewBuilder) or loaded from an
// optional YAML/JSONC file (LoadFile), validated once at Build time,
// and then shared read-only by all operations. There is no global or
// process-wide configuration state.
package config
