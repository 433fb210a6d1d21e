// config.go defines the Config value, its defaults, and the builder
// that validates and assembles it.
package config

import (
	"fmt"
	"time"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

const (
	// DefaultTimeout bounds a single extraction attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of re-invocations allowed after a
	// transient failure, giving 1+DefaultMaxRetries total attempts.
	DefaultMaxRetries = 3

	// DefaultExtractor is the extractor binary resolved via PATH when
	// no explicit path is configured.
	DefaultExtractor = "extractpbo"
)

// MarkerRule maps a recognizable substring of the tool's diagnostic
// output to a failure kind. Rules are checked in order; the first match
// wins, so more specific markers must come first.
type MarkerRule struct {
	Marker string
	Kind   model.ExtractErrorKind
}

// Config is the immutable settings value shared by all operations.
// Treat it as read-only after Build; to change a setting, derive a new
// value via Builder().
type Config struct {
	// Timeout bounds each individual extraction attempt. The tool
	// process is killed when the deadline passes.
	Timeout time.Duration

	// MaxRetries is the number of re-invocations allowed after a
	// retryable failure. Zero disables retries.
	MaxRetries int

	// CaseSensitive controls filter pattern matching.
	CaseSensitive bool

	// TreatWarningsAsErrors escalates a clean run with warning output
	// into a failure.
	TreatWarningsAsErrors bool

	// Extractor is the extractor binary name or path.
	Extractor string

	// NormalizeBins renames known binarized files (config.bin and
	// friends) to their text counterparts after extraction.
	NormalizeBins bool

	// WarningMarkers are substrings of tool output that indicate a
	// non-fatal warning.
	WarningMarkers []string

	// FailureMarkers map diagnostic substrings to failure kinds,
	// checked in order.
	FailureMarkers []MarkerRule

	// RetryableKinds lists the failure kinds worth re-attempting.
	RetryableKinds []model.ExtractErrorKind

	// BinMappings maps lower-cased binarized file names to their
	// normalized names. Unmapped *.bin files fall back to a .txt
	// extension when NormalizeBins is on.
	BinMappings map[string]string
}

// defaultWarningMarkers are the known non-fatal warning lines the tool
// prints for slightly malformed but extractable archives.
func defaultWarningMarkers() []string {
	return []string{
		"1st/last entry has non-zero real_size",
		"reserved field non zero",
		"no shakey on arma",
		"arma pbo is missing a prefix",
	}
}

// defaultFailureMarkers map the tool's known error text to failure
// kinds. Order matters: longer, more specific markers come before their
// shorter prefixes, and the generic catch-alls come last.
func defaultFailureMarkers() []MarkerRule {
	return []MarkerRule{
		{Marker: "DePbo:Pbo unknown header type", Kind: model.KindCorruptArchive},
		{Marker: "Bad Sha detected", Kind: model.KindCorruptArchive},
		{Marker: "Bad Sha", Kind: model.KindCorruptArchive},
		{Marker: "this warning is set as an error", Kind: model.KindCorruptArchive},
		{Marker: "residual bytes in file", Kind: model.KindCorruptArchive},
		{Marker: "Cannot open", Kind: model.KindArchiveNotFound},
		{Marker: "unsupported encoding", Kind: model.KindUnsupportedEncoding},
		{Marker: "unknown codepage", Kind: model.KindUnsupportedEncoding},
		{Marker: "Error:", Kind: model.KindUnknown},
		{Marker: "Failed to", Kind: model.KindUnknown},
	}
}

// defaultRetryableKinds returns the failure kinds retried by default:
// timeouts and unclassified tool failures. Recognized permanent kinds
// (missing or corrupt archives) always fail fast.
func defaultRetryableKinds() []model.ExtractErrorKind {
	return []model.ExtractErrorKind{model.KindTimeout, model.KindUnknown}
}

// DefaultBinMappings returns the standard binarized-to-text renames
// applied when NormalizeBins is enabled. Keys are lower-cased file
// names.
func DefaultBinMappings() map[string]string {
	return map[string]string{
		"config.bin":      "config.cpp",
		"model.bin":       "model.cfg",
		"stringtable.bin": "stringtable.xml",
		"texheaders.bin":  "texheaders.txt",
		"script.bin":      "script.cpp",
	}
}

// Default returns the configuration used when the caller specifies
// nothing: 30s per attempt, 3 retries, case-insensitive matching,
// warnings surfaced but not escalated.
func Default() Config {
	return Config{
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		Extractor:      DefaultExtractor,
		WarningMarkers: defaultWarningMarkers(),
		FailureMarkers: defaultFailureMarkers(),
		RetryableKinds: defaultRetryableKinds(),
		BinMappings:    DefaultBinMappings(),
	}
}

// Builder assembles a Config step by step. Methods return the builder
// for chaining; Build performs all validation in one place.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder seeded with the default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: Default()}
}

// Builder derives a new builder from an existing configuration, used to
// overlay explicit settings (e.g. CLI flags) on a loaded config.
func (c Config) Builder() *Builder {
	return &Builder{cfg: c}
}

// WithTimeout sets the per-attempt timeout.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.cfg.Timeout = d
	return b
}

// WithMaxRetries sets the number of re-invocations after a retryable
// failure.
func (b *Builder) WithMaxRetries(n int) *Builder {
	b.cfg.MaxRetries = n
	return b
}

// WithCaseSensitive sets filter case sensitivity.
func (b *Builder) WithCaseSensitive(v bool) *Builder {
	b.cfg.CaseSensitive = v
	return b
}

// WithTreatWarningsAsErrors sets the warning escalation policy.
func (b *Builder) WithTreatWarningsAsErrors(v bool) *Builder {
	b.cfg.TreatWarningsAsErrors = v
	return b
}

// WithExtractor sets the extractor binary name or path.
func (b *Builder) WithExtractor(path string) *Builder {
	b.cfg.Extractor = path
	return b
}

// WithNormalizeBins enables or disables bin-file normalization.
func (b *Builder) WithNormalizeBins(v bool) *Builder {
	b.cfg.NormalizeBins = v
	return b
}

// WithWarningMarkers replaces the warning marker table.
func (b *Builder) WithWarningMarkers(markers ...string) *Builder {
	b.cfg.WarningMarkers = markers
	return b
}

// WithFailureMarkers replaces the failure marker table.
func (b *Builder) WithFailureMarkers(rules ...MarkerRule) *Builder {
	b.cfg.FailureMarkers = rules
	return b
}

// WithRetryableKinds replaces the set of failure kinds worth retrying.
func (b *Builder) WithRetryableKinds(kinds ...model.ExtractErrorKind) *Builder {
	b.cfg.RetryableKinds = kinds
	return b
}

// WithBinMappings replaces the binarized-file rename table. Keys are
// matched case-insensitively against entry base names.
func (b *Builder) WithBinMappings(m map[string]string) *Builder {
	b.cfg.BinMappings = m
	return b
}

// Build validates the assembled settings and returns the finished
// Config. Slices and maps are copied so later builder reuse cannot
// mutate a returned value.
func (b *Builder) Build() (Config, error) {
	cfg := b.cfg

	if cfg.Timeout <= 0 {
		return Config{}, &model.ConfigError{
			Field:  "timeout",
			Value:  cfg.Timeout.String(),
			Reason: "must be positive",
		}
	}
	if cfg.MaxRetries < 0 {
		return Config{}, &model.ConfigError{
			Field:  "max retries",
			Value:  fmt.Sprintf("%d", cfg.MaxRetries),
			Reason: "must not be negative",
		}
	}
	if cfg.Extractor == "" {
		return Config{}, &model.ConfigError{
			Field:  "extractor",
			Reason: "must name a binary",
		}
	}
	for _, rule := range cfg.FailureMarkers {
		if rule.Marker == "" {
			return Config{}, &model.ConfigError{
				Field:  "failure markers",
				Reason: "marker text must not be empty",
			}
		}
		if !rule.Kind.IsValid() {
			return Config{}, &model.ConfigError{
				Field:  "failure markers",
				Value:  rule.Kind.String(),
				Reason: "unknown failure kind",
			}
		}
	}
	for _, kind := range cfg.RetryableKinds {
		if !kind.IsValid() {
			return Config{}, &model.ConfigError{
				Field:  "retryable kinds",
				Value:  kind.String(),
				Reason: "unknown failure kind",
			}
		}
	}

	cfg.WarningMarkers = append([]string(nil), cfg.WarningMarkers...)
	cfg.FailureMarkers = append([]MarkerRule(nil), cfg.FailureMarkers...)
	cfg.RetryableKinds = append([]model.ExtractErrorKind(nil), cfg.RetryableKinds...)
	mappings := make(map[string]string, len(cfg.BinMappings))
	for k, v := range cfg.BinMappings {
		mappings[k] = v
	}
	cfg.BinMappings = mappings

	return cfg, nil
}
