package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/muxprobe/internal/probe"
)

// Supported media file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".vob":  true,
	".ogv":  true,
	".3gp":  true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".opus": true,
}

// Discover walks inputDir, collects files with media extensions, prunes
// directories named "extras" (case-insensitive), and returns the paths
// sorted lexicographically for deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.EqualFold(d.Name(), "extras") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if mediaExtensions[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Expand turns CLI inputs into the list of resources to probe. URLs and
// plain files pass through unchanged (a missing file is reported by the
// probe, not here); directories are replaced by their discovered media.
// Duplicates are dropped, keeping the first occurrence.
func Expand(inputs []string) ([]string, error) {
	seen := make(map[string]bool, len(inputs))
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		if probe.IsRemote(in) {
			add(in)
			continue
		}
		fi, err := os.Stat(in)
		if err != nil || !fi.IsDir() {
			add(in)
			continue
		}
		files, err := Discover(in)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", in, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
