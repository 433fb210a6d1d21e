package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOutcome_String verifies that Outcome values produce the expected
// string representations for logging and JSON serialization.
func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeWarnings, "success-with-warnings"},
		{OutcomeFailure, "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.String())
		})
	}
}

// TestOutcome_IsValid checks that only defined outcomes pass validation.
func TestOutcome_IsValid(t *testing.T) {
	assert.True(t, OutcomeSuccess.IsValid())
	assert.True(t, OutcomeWarnings.IsValid())
	assert.True(t, OutcomeFailure.IsValid())
	assert.False(t, Outcome("invalid").IsValid())
	assert.False(t, Outcome("").IsValid())
}

// TestExtractErrorKind_IsValid checks that only defined failure kinds
// pass validation.
func TestExtractErrorKind_IsValid(t *testing.T) {
	assert.True(t, KindArchiveNotFound.IsValid())
	assert.True(t, KindCorruptArchive.IsValid())
	assert.True(t, KindUnsupportedEncoding.IsValid())
	assert.True(t, KindTimeout.IsValid())
	assert.True(t, KindToolNotFound.IsValid())
	assert.True(t, KindUnknown.IsValid())
	assert.False(t, ExtractErrorKind("flaky").IsValid())
	assert.False(t, ExtractErrorKind("").IsValid())
}

// TestParseExtractErrorKind verifies string-to-kind conversion,
// including case normalization, surrounding whitespace, and error cases.
func TestParseExtractErrorKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ExtractErrorKind
		hasError bool
	}{
		{"timeout", KindTimeout, false},
		{"corrupt-archive", KindCorruptArchive, false},
		{"TIMEOUT", KindTimeout, false},          // case insensitive
		{"  unknown  ", KindUnknown, false},      // whitespace trimmed
		{"archive-not-found", KindArchiveNotFound, false},
		{"tool-not-found", KindToolNotFound, false},
		{"unsupported-encoding", KindUnsupportedEncoding, false},
		{"bogus", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseExtractErrorKind(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestArchiveEntry_String verifies the human-readable entry rendering
// with and without a known size.
func TestArchiveEntry_String(t *testing.T) {
	withSize := ArchiveEntry{RelativePath: "sub/b.cpp", SizeBytes: 1234, SizeKnown: true}
	assert.Equal(t, "sub/b.cpp (1234 bytes)", withSize.String())

	withoutSize := ArchiveEntry{RelativePath: "a.txt"}
	assert.Equal(t, "a.txt", withoutSize.String())
}

// TestListResult_EntryPaths verifies that entry paths are returned in
// listing order.
func TestListResult_EntryPaths(t *testing.T) {
	result := &ListResult{
		Entries: []ArchiveEntry{
			{RelativePath: "a.txt"},
			{RelativePath: "sub/b.cpp"},
		},
	}
	assert.Equal(t, []string{"a.txt", "sub/b.cpp"}, result.EntryPaths())

	empty := &ListResult{}
	assert.Empty(t, empty.EntryPaths())
}

// TestExtractRequest_Validate checks the field-level validation that
// runs before any filesystem access.
func TestExtractRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		request  ExtractRequest
		hasError bool
	}{
		{
			name:     "valid request",
			request:  ExtractRequest{ArchivePath: "mission.pbo", OutputDir: "out"},
			hasError: false,
		},
		{
			name:     "valid request with filter",
			request:  ExtractRequest{ArchivePath: "mission.pbo", OutputDir: "out", Filter: "*.cpp"},
			hasError: false,
		},
		{
			name:     "empty archive path",
			request:  ExtractRequest{OutputDir: "out"},
			hasError: true,
		},
		{
			name:     "whitespace archive path",
			request:  ExtractRequest{ArchivePath: "   ", OutputDir: "out"},
			hasError: true,
		},
		{
			name:     "empty output dir",
			request:  ExtractRequest{ArchivePath: "mission.pbo"},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.hasError {
				require.Error(t, err)
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr, "validation failures should be ConfigErrors")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestKnownArchiveExtension verifies the advisory extension check for
// the usual PBO archive extensions.
func TestKnownArchiveExtension(t *testing.T) {
	assert.True(t, KnownArchiveExtension("mission.pbo"))
	assert.True(t, KnownArchiveExtension("MISSION.PBO")) // case insensitive
	assert.True(t, KnownArchiveExtension("terrain.xbo"))
	assert.True(t, KnownArchiveExtension("island.ifa"))
	assert.False(t, KnownArchiveExtension("archive.zip"))
	assert.False(t, KnownArchiveExtension("mission.pbo.bak"))
	assert.False(t, KnownArchiveExtension(""))
}

// TestValidateEntryPath checks the safety rules applied to archive
// entry paths before they are placed under an output directory:
// relative only, no upward traversal, no control or shell
// metacharacters, and no Windows reserved device names.
func TestValidateEntryPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		hasError bool
	}{
		{"simple file", "a.txt", false},
		{"nested file", "sub/b.cpp", false},
		{"deeply nested", "models/interior/door.p3d", false},
		{"dots inside name", "config.v2.cpp", false},
		{"backslash separators", `scripts\init.sqf`, false},
		{"space inside name", "my mission.sqm", false},
		{"empty path", "", true},
		{"absolute path", "/etc/passwd", true},
		{"backslash absolute", "\\windows\\system32", true},
		{"drive letter", "c:/windows", true},
		{"colon in name", "data:stream.txt", true},
		{"upward traversal", "../escape.txt", true},
		{"nested traversal", "sub/../../escape.txt", true},
		{"empty segment", "sub//b.cpp", true},
		{"control character", "bad\x01name.txt", true},
		{"shell metacharacter", "run$(id).txt", true},
		{"wildcard character", "all*.cpp", true},
		{"redirect character", "out>file.txt", true},
		{"dot-prefixed segment", ".hidden/config.cpp", true},
		{"dot-prefixed file", "sub/.secret", true},
		{"segment ending in dot", "broken./a.txt", true},
		{"leading space in segment", "sub/ padded.txt", true},
		{"trailing space in segment", "padded /a.txt", true},
		{"reserved device name", "CON", true},
		{"reserved device with extension", "con.txt", true},
		{"reserved device in subdir", "sub/nul.cfg", true},
		{"reserved com port", "COM1.bin", true},
		{"name containing reserved word", "console.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryPath(tt.path)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
