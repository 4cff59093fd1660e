package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// CollectImages walks root and returns the price-tag images under it, sorted
// by path. Unreadable entries are counted as failed and the walk continues.
func CollectImages(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && isHidden(path) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
