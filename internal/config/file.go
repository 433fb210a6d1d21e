// file.go loads configuration from an optional file. Both YAML and
// JSONC are accepted: YAML because it is the comfortable hand-written
// format, JSONC because generated configs tend to be JSON and comments
// should not break them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// fileConfig is the wire representation of a config file. Pointer
// fields distinguish "absent" from zero values so a partial file only
// overrides what it names.
type fileConfig struct {
	TimeoutSeconds        *int              `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries            *int              `yaml:"max_retries" json:"max_retries"`
	CaseSensitive         *bool             `yaml:"case_sensitive" json:"case_sensitive"`
	TreatWarningsAsErrors *bool             `yaml:"treat_warnings_as_errors" json:"treat_warnings_as_errors"`
	Extractor             *string           `yaml:"extractor" json:"extractor"`
	NormalizeBins         *bool             `yaml:"normalize_bins" json:"normalize_bins"`
	WarningMarkers        []string          `yaml:"warning_markers" json:"warning_markers"`
	FailureMarkers        []fileMarkerRule  `yaml:"failure_markers" json:"failure_markers"`
	RetryableKinds        []string          `yaml:"retryable_kinds" json:"retryable_kinds"`
	BinMappings           map[string]string `yaml:"bin_mappings" json:"bin_mappings"`
}

// fileMarkerRule is the wire form of a MarkerRule; the kind is a plain
// string and validated during conversion.
type fileMarkerRule struct {
	Marker string `yaml:"marker" json:"marker"`
	Kind   string `yaml:"kind" json:"kind"`
}

// LoadFile reads a config file, overlays it on the defaults, and
// validates the result. The format is chosen by extension: .yaml/.yml
// parse as YAML, .json/.jsonc parse as JSONC (comments and trailing
// commas permitted).
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &model.ConfigError{
			Field:  "config file",
			Value:  path,
			Reason: fmt.Sprintf("cannot read: %v", err),
		}
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, &model.ConfigError{
				Field:  "config file",
				Value:  path,
				Reason: fmt.Sprintf("invalid YAML: %v", err),
			}
		}
	case ".json", ".jsonc":
		// Strip comments and trailing commas before handing the bytes
		// to encoding/json.
		if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
			return Config{}, &model.ConfigError{
				Field:  "config file",
				Value:  path,
				Reason: fmt.Sprintf("invalid JSON: %v", err),
			}
		}
	default:
		return Config{}, &model.ConfigError{
			Field:  "config file",
			Value:  path,
			Reason: "unsupported extension (want .yaml, .yml, .json, or .jsonc)",
		}
	}

	b := NewBuilder()
	if err := applyFile(b, fc); err != nil {
		return Config{}, err
	}
	return b.Build()
}

// applyFile copies the fields present in the file onto the builder.
func applyFile(b *Builder, fc fileConfig) error {
	if fc.TimeoutSeconds != nil {
		b.WithTimeout(time.Duration(*fc.TimeoutSeconds) * time.Second)
	}
	if fc.MaxRetries != nil {
		b.WithMaxRetries(*fc.MaxRetries)
	}
	if fc.CaseSensitive != nil {
		b.WithCaseSensitive(*fc.CaseSensitive)
	}
	if fc.TreatWarningsAsErrors != nil {
		b.WithTreatWarningsAsErrors(*fc.TreatWarningsAsErrors)
	}
	if fc.Extractor != nil {
		b.WithExtractor(*fc.Extractor)
	}
	if fc.NormalizeBins != nil {
		b.WithNormalizeBins(*fc.NormalizeBins)
	}
	if fc.WarningMarkers != nil {
		b.WithWarningMarkers(fc.WarningMarkers...)
	}
	if fc.FailureMarkers != nil {
		rules := make([]MarkerRule, 0, len(fc.FailureMarkers))
		for _, fr := range fc.FailureMarkers {
			kind, err := model.ParseExtractErrorKind(fr.Kind)
			if err != nil {
				return &model.ConfigError{
					Field:  "failure markers",
					Value:  fr.Kind,
					Reason: "unknown failure kind",
				}
			}
			rules = append(rules, MarkerRule{Marker: fr.Marker, Kind: kind})
		}
		b.WithFailureMarkers(rules...)
	}
	if fc.RetryableKinds != nil {
		kinds := make([]model.ExtractErrorKind, 0, len(fc.RetryableKinds))
		for _, s := range fc.RetryableKinds {
			kind, err := model.ParseExtractErrorKind(s)
			if err != nil {
				return &model.ConfigError{
					Field:  "retryable kinds",
					Value:  s,
					Reason: "unknown failure kind",
				}
			}
			kinds = append(kinds, kind)
		}
		b.WithRetryableKinds(kinds...)
	}
	if fc.BinMappings != nil {
		mappings := make(map[string]string, len(fc.BinMappings))
		for k, v := range fc.BinMappings {
			mappings[strings.ToLower(k)] = v
		}
		b.WithBinMappings(mappings)
	}
	return nil
}
