package pbo

import (
	"strconv"
	"strings"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

// listNoisePrefixes open lines of tool chatter that carry no entry
// data: banners, progress notes, and header fields other than the
// archive prefix.
var listNoisePrefixes = []string{
	"Active code page:",
	"ExtractPbo Version",
	"Opening",
	"==",
	"//",
	"Mikero=",
	"version=",
	"PboType=",
}

// parseListOutput extracts archive entries from raw listing output.
// Standard listings carry one entry per line as path:timestamp: N
// bytes; brief listings carry bare paths. The prefix header is
// captured when present, and every other recognized header or banner
// line is dropped.
func parseListOutput(archivePath, raw string, brief bool) model.ListResult {
	result := model.ListResult{
		ArchivePath: archivePath,
		Raw:         raw,
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if value, ok := strings.CutPrefix(line, "prefix="); ok {
			result.Prefix = strings.TrimSuffix(strings.TrimSpace(value), ";")
			continue
		}

		if isNoiseLine(line) {
			continue
		}

		if entry, ok := parseEntry(line, brief); ok {
			result.Entries = append(result.Entries, entry)
		}
	}

	return result
}

// isNoiseLine reports whether the line is tool chatter.
func isNoiseLine(line string) bool {
	for _, prefix := range listNoisePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// parseEntry parses a single listing line into an entry. Standard
// lines put the entry path before the first colon; the byte count
// lives after the last colon. A line without the expected shape is
// not an entry.
func parseEntry(line string, brief bool) (model.ArchiveEntry, bool) {
	if brief {
		return model.ArchiveEntry{
			RelativePath: normalizeEntryPath(line),
		}, true
	}

	path, rest, found := strings.Cut(line, ":")
	path = strings.TrimSpace(path)
	if !found || path == "" {
		return model.ArchiveEntry{}, false
	}

	entry := model.ArchiveEntry{
		RelativePath: normalizeEntryPath(path),
	}
	if size, ok := parseSize(rest); ok {
		entry.SizeBytes = size
		entry.SizeKnown = true
	}
	return entry, true
}

// parseSize pulls the byte count out of the fields following the
// entry path, shaped like "1576500000: 1024 bytes". A malformed or
// negative count leaves the size unknown rather than failing the
// entry.
func parseSize(rest string) (int64, bool) {
	tail := rest
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		tail = rest[idx+1:]
	}

	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return 0, false
	}

	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || size < 0 {
		return 0, false
	}
	return size, true
}

// normalizeEntryPath converts archive-internal backslash separators
// to forward slashes.
func normalizeEntryPath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
}
