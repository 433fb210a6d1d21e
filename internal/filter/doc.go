// Package filter compiles extraction filter expressions into matchers
// for archive entry paths.
//
// An expression is one or more glob patterns joined by "|". A path
// matches the filter when it matches any alternative. The empty
// expression matches everything. Matching is case-insensitive unless
// requested otherwise, and entry paths are normalized to forward
// slashes before matching so patterns behave the same for archives
// listed with either separator.
package filter
