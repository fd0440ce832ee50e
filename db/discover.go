package db

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoverStores collects every store file reachable from paths.
//
// A file path is accepted verbatim when its name ends with suffix. A directory
// is scanned one level deep (no recursion). Paths that do not exist are ignored.
func DiscoverStores(paths []string, suffix string) []string {
	var stores []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			if strings.HasSuffix(filepath.Base(path), suffix) {
				stores = append(stores, path)
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.HasSuffix(entry.Name(), suffix) {
				continue
			}
			full := filepath.Join(path, entry.Name())
			// only files, and symlinks that resolve to files
			if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
				stores = append(stores, full)
			}
		}
	}

	return stores
}
