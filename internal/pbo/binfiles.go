package pbo

import (
	"path"
	"strings"
)

// normalizeBinName maps a derived binary file name back to its source
// form: config.bin becomes config.cpp, model.bin becomes model.cfg,
// and so on per the configured table. A .bin file with no mapping
// becomes .txt so its content is at least openable. Non-bin names
// pass through untouched, and the directory part is always kept.
func normalizeBinName(rel string, mappings map[string]string) string {
	dir, base := path.Split(rel)
	lower := strings.ToLower(base)

	if mapped, ok := mappings[lower]; ok {
		return dir + mapped
	}

	if strings.HasSuffix(lower, ".bin") {
		return dir + base[:len(base)-len(".bin")] + ".txt"
	}

	return rel
}
