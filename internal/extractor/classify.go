package extractor

import (
	"strings"

	"github.com/tyen-customs-a3/pbo-tools/internal/config"
	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// Classifier interprets tool output. extractpbo signals many failures
// only through marker lines in its output, sometimes while exiting
// zero, so classification scans the text regardless of exit code.
type Classifier struct {
	warningMarkers        []string
	failureMarkers        []config.MarkerRule
	treatWarningsAsErrors bool
}

// NewClassifier builds a classifier from the configured marker tables.
func NewClassifier(cfg config.Config) *Classifier {
	return &Classifier{
		warningMarkers:        cfg.WarningMarkers,
		failureMarkers:        cfg.FailureMarkers,
		treatWarningsAsErrors: cfg.TreatWarningsAsErrors,
	}
}

// FailureKind scans output for failure markers in table order and
// returns the kind of the first match along with the line that
// matched. Table order encodes specificity: a marker earlier in the
// table wins even when a later one also appears.
func (c *Classifier) FailureKind(output string) (model.ExtractErrorKind, string, bool) {
	for _, rule := range c.failureMarkers {
		if !strings.Contains(output, rule.Marker) {
			continue
		}
		return rule.Kind, matchingLine(output, rule.Marker), true
	}
	return "", "", false
}

// Warnings returns the trimmed output lines recognized as known
// benign warnings, in the order they appear.
func (c *Classifier) Warnings(output string) []string {
	var warnings []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, marker := range c.warningMarkers {
			if strings.Contains(line, marker) {
				warnings = append(warnings, line)
				break
			}
		}
	}
	return warnings
}

// TreatWarningsAsErrors reports whether recognized warnings escalate
// an otherwise successful attempt to a failure.
func (c *Classifier) TreatWarningsAsErrors() bool {
	return c.treatWarningsAsErrors
}

// matchingLine returns the first trimmed line containing the marker.
func matchingLine(output, marker string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, marker) {
			return strings.TrimSpace(line)
		}
	}
	return marker
}
