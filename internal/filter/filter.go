package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// Filter matches archive entry paths against a compiled expression.
// The zero value is not usable; obtain one from Compile.
type Filter struct {
	expression    string
	caseSensitive bool
	globs         []glob.Glob
}

// Compile parses an expression of pipe-separated glob patterns. An
// empty expression yields a filter that matches every path. Each
// alternative must be non-empty after trimming and must be a valid
// glob; otherwise Compile returns a FilterError naming the original
// expression.
func Compile(expression string, caseSensitive bool) (*Filter, error) {
	f := &Filter{
		expression:    expression,
		caseSensitive: caseSensitive,
	}

	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return f, nil
	}

	alternatives := strings.Split(trimmed, "|")
	f.globs = make([]glob.Glob, 0, len(alternatives))

	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return nil, &model.FilterError{
				Pattern: expression,
				Err:     fmt.Errorf("empty alternative"),
			}
		}

		if !caseSensitive {
			alt = strings.ToLower(alt)
		}

		// Compiled without separator runes so that *.cpp matches
		// entries in nested directories as well as at the root.
		g, err := glob.Compile(alt)
		if err != nil {
			return nil, &model.FilterError{
				Pattern: expression,
				Err:     fmt.Errorf("compiling %q: %w", alt, err),
			}
		}

		f.globs = append(f.globs, g)
	}

	return f, nil
}

// Match reports whether the given entry path matches the filter.
// Backslash separators are normalized to forward slashes first, and
// the comparison folds case unless the filter is case-sensitive.
func (f *Filter) Match(entryPath string) bool {
	if f.MatchesAll() {
		return true
	}

	candidate := strings.ReplaceAll(entryPath, "\\", "/")
	if !f.caseSensitive {
		candidate = strings.ToLower(candidate)
	}

	for _, g := range f.globs {
		if g.Match(candidate) {
			return true
		}
	}

	return false
}

// MatchesAll reports whether the filter accepts every path, which is
// the case for the empty expression.
func (f *Filter) MatchesAll() bool {
	return len(f.globs) == 0
}

// String returns the original expression the filter was compiled from.
func (f *Filter) String() string {
	return f.expression
}
