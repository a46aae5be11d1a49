// Package discovery locates the VapourSynth scripts an encode run should
// process.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Discover returns the encode scripts reachable from path in natural
// order. A file path must name a .vpy script directly. A directory is
// walked recursively, skipping the artifacts earlier runs produced.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		if !isScript(path) {
			return nil, fmt.Errorf("input file must be a .vpy script: %s", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() || !isScript(p) || isProcessed(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	sortNatural(files)
	return files, nil
}

// sortNatural orders paths the way a human reads them, with digit runs
// compared numerically so episode 2 sorts ahead of episode 10.
func sortNatural(files []string) {
	c := collate.New(language.Und, collate.Numeric, collate.Loose)
	sort.Slice(files, func(i, j int) bool {
		return c.CompareString(files[i], files[j]) < 0
	})
}

func isScript(path string) bool {
	return filepath.Ext(path) == ".vpy"
}

// isProcessed reports whether the stem carries an encode artifact marker.
// Output files are named <stem>.<encoder ident>.<ext>, and scripts that
// shadow them must not be rediscovered as sources.
func isProcessed(path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, marker := range []string{".aom-q", ".rav1e-q", ".svt-q", ".x264-q", ".x265-q"} {
		if strings.Contains(stem, marker) {
			return true
		}
	}
	return strings.HasSuffix(stem, ".copy")
}
