package pbo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleListing mimics the standard listing the tool prints, with its
// banner, header fields, and sized entries using archive-internal
// backslash separators.
const sampleListing = `Active code page: 65001
ExtractPbo Version 2.28, Dll 9.96 "weapons.pbo"
Opening weapons.pbo...
==========================
prefix=ca\weapons;
Mikero=DePbo.dll.9.96
version=1.32
PboType=Arma
//this line is tool commentary
config.bin:1576500000: 4096 bytes
data\barrel.paa:1576500001: 81920 bytes
scripts\fn_reload.sqf:1576500002: 2048 bytes
No Error(s)
`

// TestParseListOutput_Standard verifies entry extraction from a full
// standard listing: noise dropped, prefix captured, sizes parsed, and
// separators normalized.
func TestParseListOutput_Standard(t *testing.T) {
	result := parseListOutput("weapons.pbo", sampleListing, false)

	assert.Equal(t, "weapons.pbo", result.ArchivePath)
	assert.Equal(t, `ca\weapons`, result.Prefix, "prefix should keep its own separators, minus the trailing semicolon")
	assert.Equal(t, sampleListing, result.Raw, "raw output should be preserved verbatim")

	require.Len(t, result.Entries, 3)

	assert.Equal(t, "config.bin", result.Entries[0].RelativePath)
	assert.True(t, result.Entries[0].SizeKnown)
	assert.Equal(t, int64(4096), result.Entries[0].SizeBytes)

	assert.Equal(t, "data/barrel.paa", result.Entries[1].RelativePath,
		"entry separators should be normalized to forward slashes")
	assert.Equal(t, int64(81920), result.Entries[1].SizeBytes)

	assert.Equal(t, "scripts/fn_reload.sqf", result.Entries[2].RelativePath)
	assert.Equal(t, int64(2048), result.Entries[2].SizeBytes)
}

// TestParseListOutput_Brief verifies bare-path parsing with the same
// noise filtering.
func TestParseListOutput_Brief(t *testing.T) {
	raw := "Active code page: 65001\n" +
		"ExtractPbo Version 2.28, Dll 9.96 \"weapons.pbo\"\n" +
		"prefix=ca\\weapons;\n" +
		"config.bin\n" +
		"data\\barrel.paa\n" +
		"scripts\\fn_reload.sqf\n"

	result := parseListOutput("weapons.pbo", raw, true)

	assert.Equal(t, `ca\weapons`, result.Prefix)
	assert.Equal(t,
		[]string{"config.bin", "data/barrel.paa", "scripts/fn_reload.sqf"},
		result.EntryPaths())

	for _, entry := range result.Entries {
		assert.False(t, entry.SizeKnown, "brief listings carry no sizes")
	}
}

// TestParseListOutput_ExactEntrySet verifies that a two-entry archive
// yields exactly those two relative paths and nothing else.
func TestParseListOutput_ExactEntrySet(t *testing.T) {
	raw := "Opening test.pbo...\n" +
		"a.txt:1576500000: 10 bytes\n" +
		"sub\\b.cpp:1576500001: 20 bytes\n"

	result := parseListOutput("test.pbo", raw, false)

	assert.Equal(t, []string{"a.txt", "sub/b.cpp"}, result.EntryPaths())
}

// TestParseListOutput_MalformedSize verifies that a garbled size field
// keeps the entry with its size marked unknown.
func TestParseListOutput_MalformedSize(t *testing.T) {
	raw := "a.txt:1576500000: lots of bytes\n" +
		"b.txt:garbage\n" +
		"c.txt:1576500002: -5 bytes\n"

	result := parseListOutput("test.pbo", raw, false)

	require.Len(t, result.Entries, 3)
	for _, entry := range result.Entries {
		assert.False(t, entry.SizeKnown, "entry %s should have unknown size", entry.RelativePath)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, result.EntryPaths())
}

// TestParseListOutput_Empty verifies behavior on empty and noise-only
// output.
func TestParseListOutput_Empty(t *testing.T) {
	assert.Empty(t, parseListOutput("test.pbo", "", false).Entries)

	noiseOnly := "Active code page: 65001\nOpening test.pbo...\n==\n"
	result := parseListOutput("test.pbo", noiseOnly, false)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Prefix)
}

// TestParseListOutput_PrefixWithoutSemicolon verifies prefix capture
// when the header omits the trailing semicolon.
func TestParseListOutput_PrefixWithoutSemicolon(t *testing.T) {
	result := parseListOutput("test.pbo", "prefix=ca\\weapons\n", false)
	assert.Equal(t, `ca\weapons`, result.Prefix)
}

// TestParseSize exercises the size field parser directly.
func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		rest     string
		wantSize int64
		wantOK   bool
	}{
		{
			name:     "timestamp and size",
			rest:     "1576500000: 4096 bytes",
			wantSize: 4096,
			wantOK:   true,
		},
		{
			name:     "size only",
			rest:     " 128 bytes",
			wantSize: 128,
			wantOK:   true,
		},
		{
			name:     "zero bytes",
			rest:     "1576500000: 0 bytes",
			wantSize: 0,
			wantOK:   true,
		},
		{
			name:   "no digits",
			rest:   "1576500000: many bytes",
			wantOK: false,
		},
		{
			name:   "negative size",
			rest:   "1576500000: -1 bytes",
			wantOK: false,
		},
		{
			name:   "empty",
			rest:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, ok := parseSize(tt.rest)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSize, size)
			}
		})
	}
}

// TestNormalizeBinName verifies the derived-name mapping, the .txt
// fallback, and directory preservation.
func TestNormalizeBinName(t *testing.T) {
	mappings := map[string]string{
		"config.bin":      "config.cpp",
		"model.bin":       "model.cfg",
		"stringtable.bin": "stringtable.xml",
	}

	tests := []struct {
		name string
		rel  string
		want string
	}{
		{
			name: "mapped name",
			rel:  "config.bin",
			want: "config.cpp",
		},
		{
			name: "mapped name in subdirectory",
			rel:  "addons/core/model.bin",
			want: "addons/core/model.cfg",
		},
		{
			name: "mapped name with mixed case",
			rel:  "Config.BIN",
			want: "config.cpp",
		},
		{
			name: "unmapped bin falls back to txt",
			rel:  "weapons/unknown.bin",
			want: "weapons/unknown.txt",
		},
		{
			name: "non-bin file untouched",
			rel:  "data/texture.paa",
			want: "data/texture.paa",
		},
		{
			name: "bin-like extension untouched",
			rel:  "data/model.binpbo",
			want: "data/model.binpbo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBinName(tt.rel, mappings))
		})
	}
}
