// types.go defines the core value types of the archive access layer:
// listing entries, extraction requests/results, outcome classification,
// and path/extension validation helpers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Outcome classifies the result of a single extraction attempt.
type Outcome string

const (
	// OutcomeSuccess means the tool exited cleanly with no warning or
	// failure markers in its output.
	OutcomeSuccess Outcome = "success"

	// OutcomeWarnings means the tool exited cleanly but printed one or
	// more known warning lines (e.g. a missing prefix header).
	OutcomeWarnings Outcome = "success-with-warnings"

	// OutcomeFailure means the attempt failed; the failure kind carries
	// the classified cause.
	OutcomeFailure Outcome = "failure"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsValid reports whether the outcome is one of the defined values.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeWarnings, OutcomeFailure:
		return true
	}
	return false
}

// ExtractErrorKind identifies the classified cause of a failed
// extraction attempt. Kinds are derived from the tool's exit status and
// recognizable substrings in its diagnostic output.
type ExtractErrorKind string

const (
	// KindArchiveNotFound: the archive path does not exist or is not a
	// readable file.
	KindArchiveNotFound ExtractErrorKind = "archive-not-found"

	// KindCorruptArchive: the tool reported structural damage (bad SHA,
	// unknown header type, residual bytes).
	KindCorruptArchive ExtractErrorKind = "corrupt-archive"

	// KindUnsupportedEncoding: the tool could not handle the archive's
	// character encoding.
	KindUnsupportedEncoding ExtractErrorKind = "unsupported-encoding"

	// KindTimeout: the attempt exceeded the configured per-attempt
	// timeout and the tool process was killed.
	KindTimeout ExtractErrorKind = "timeout"

	// KindToolNotFound: the extractor binary is not installed or not on
	// PATH.
	KindToolNotFound ExtractErrorKind = "tool-not-found"

	// KindUnknown: the attempt failed but no diagnostic substring was
	// recognized.
	KindUnknown ExtractErrorKind = "unknown"
)

// String returns the string representation of the kind.
func (k ExtractErrorKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the defined values.
func (k ExtractErrorKind) IsValid() bool {
	switch k {
	case KindArchiveNotFound, KindCorruptArchive, KindUnsupportedEncoding,
		KindTimeout, KindToolNotFound, KindUnknown:
		return true
	}
	return false
}

// ParseExtractErrorKind converts a string (e.g. from a config file) to
// an ExtractErrorKind. Matching is case-insensitive.
func ParseExtractErrorKind(s string) (ExtractErrorKind, error) {
	k := ExtractErrorKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown failure kind %q", s)
	}
	return k, nil
}

// ArchiveEntry is one logical file inside a PBO archive. Entries are
// produced only by listing operations and are never persisted.
type ArchiveEntry struct {
	// RelativePath is the entry's path inside the archive, normalized
	// to forward slashes.
	RelativePath string

	// SizeBytes is the entry's uncompressed size. Only meaningful when
	// SizeKnown is true; brief listings carry no sizes.
	SizeBytes int64

	// SizeKnown reports whether SizeBytes was present in the listing.
	SizeKnown bool
}

// String renders the entry for diagnostics and table output.
func (e ArchiveEntry) String() string {
	if e.SizeKnown {
		return fmt.Sprintf("%s (%d bytes)", e.RelativePath, e.SizeBytes)
	}
	return e.RelativePath
}

// ListResult is the outcome of a listing operation. It is immutable and
// owned solely by the caller after return.
type ListResult struct {
	// ArchivePath is the archive that was listed.
	ArchivePath string

	// Prefix is the archive's internal root path declared in its
	// header, empty if the archive declares none.
	Prefix string

	// Entries holds the parsed entries in the order the tool reported
	// them.
	Entries []ArchiveEntry

	// Raw preserves the tool's unparsed diagnostic text.
	Raw string
}

// EntryPaths returns the relative paths of all entries, in order.
func (r *ListResult) EntryPaths() []string {
	paths := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		paths[i] = e.RelativePath
	}
	return paths
}

// ExtractRequest describes one extraction operation. The request is
// validated before any side effect occurs.
type ExtractRequest struct {
	// ArchivePath is the archive to extract from. Must exist and be a
	// readable file.
	ArchivePath string

	// OutputDir receives the extracted files. Created if missing.
	OutputDir string

	// Filter is an optional wildcard pattern selecting which entries to
	// extract. Empty means all entries.
	Filter string
}

// Validate checks the request fields that need no filesystem access.
func (r ExtractRequest) Validate() error {
	if strings.TrimSpace(r.ArchivePath) == "" {
		return &ConfigError{Field: "archive path", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return &ConfigError{Field: "output directory", Reason: "must not be empty"}
	}
	return nil
}

// ExtractResult is the outcome of a successful extraction operation.
type ExtractResult struct {
	// ArchivePath is the archive that was extracted.
	ArchivePath string

	// OutputDir is the directory the files were committed to.
	OutputDir string

	// Files lists the committed files as sorted output-relative paths.
	Files []string

	// Warnings holds the known warning lines the tool printed, empty
	// when the extraction was fully clean.
	Warnings []string

	// Attempts is the number of tool invocations the operation needed.
	Attempts int

	// Elapsed is the total wall-clock time of the operation, including
	// retries and the commit step.
	Elapsed time.Duration
}

// CommonArchiveExtensions are the file extensions PBO archives are
// usually found under.
var CommonArchiveExtensions = []string{".pbo", ".xbo", ".ifa"}

// KnownArchiveExtension reports whether the path carries one of the
// usual archive extensions. Unusual extensions are advisory only; the
// tool decides what it can open.
func KnownArchiveExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range CommonArchiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// reservedDeviceNames are Windows device names that must not appear as
// a path segment's base name. Archives are frequently produced on
// Windows, so hostile entry names are checked on every platform.
var reservedDeviceNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// suspiciousPathChars never belong in an archive entry name. Most are
// shell metacharacters or illegal on Windows filesystems.
const suspiciousPathChars = `<>|*?"` + "`" + `$&{};#=`

// ValidateEntryPath checks that an archive entry path is safe to place
// under an output directory. The path must be relative, must not
// traverse upward, and must not contain control characters, shell
// metacharacters, or reserved device names. Paths are expected to be
// slash-normalized; backslash separators are tolerated.
func ValidateEntryPath(p string) error {
	if p == "" {
		return fmt.Errorf("empty entry path")
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return fmt.Errorf("absolute entry path %q", p)
	}
	if strings.Contains(p, ":") {
		return fmt.Errorf("entry path %q contains a colon", p)
	}

	normalized := strings.ReplaceAll(p, "\\", "/")
	if strings.Contains(normalized, "//") {
		return fmt.Errorf("entry path %q contains an empty segment", p)
	}

	for _, r := range normalized {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("entry path %q contains a control character", p)
		}
		if strings.ContainsRune(suspiciousPathChars, r) {
			return fmt.Errorf("entry path %q contains forbidden character %q", p, r)
		}
	}

	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return fmt.Errorf("entry path %q traverses upward", p)
		}
		if strings.HasPrefix(seg, ".") {
			return fmt.Errorf("entry path %q has a dot-prefixed segment", p)
		}
		if strings.HasSuffix(seg, ".") {
			return fmt.Errorf("entry path %q has a segment ending in a dot", p)
		}
		if strings.HasPrefix(seg, " ") || strings.HasSuffix(seg, " ") {
			return fmt.Errorf("entry path %q has a segment with surrounding spaces", p)
		}

		base := seg
		if i := strings.IndexByte(base, '.'); i >= 0 {
			base = base[:i]
		}
		if reservedDeviceNames[strings.ToLower(base)] {
			return fmt.Errorf("entry path %q uses a reserved device name", p)
		}
	}
	return nil
}
