package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/theirongolddev/fehbrank/internal/source"
	"github.com/theirongolddev/fehbrank/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers dataset files, diffs them against the cache by
// mtime and size, parses only changed files, and merges everything in
// path order. The bundled sample is never cached.
func LoadWithCache(dataPath string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	if dataPath == "" {
		res, err := LoadSample()
		if err != nil {
			return nil, err
		}
		return &CachedLoadResult{LoadResult: *res}, nil
	}

	files, err := source.ScanDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataPath, err)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	results := make([]fileResult, len(files))
	stats := make([]os.FileInfo, len(files))
	var toReparse []source.DiscoveredFile
	var reparseIdx []int
	hits := 0

	for i, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			results[i] = fileResult{path: f.Path, err: err}
			continue
		}
		stats[i] = info

		cached, ok := tracked[f.Path]
		if ok && cached.Fresh(info.ModTime().UnixNano(), info.Size()) {
			plans, err := cache.LoadFile(f.Path)
			if err == nil {
				results[i] = fileResult{path: f.Path, plans: plans, skipped: cached.SkippedRows, warnings: cached.CellWarnings}
				hits++
				continue
			}
			zap.L().Warn("cache read failed, reparsing", zap.String("file", f.Path), zap.Error(err))
		}
		toReparse = append(toReparse, f)
		reparseIdx = append(reparseIdx, i)
	}

	pruneStale(cache, dataPath, tracked, files)

	if progressFn != nil && hits > 0 {
		progressFn(hits, len(files))
	}

	parsed := parseFiles(toReparse, hits, len(files), progressFn)
	for j, fr := range parsed {
		i := reparseIdx[j]
		results[i] = fr
		if fr.err != nil {
			continue
		}
		info := stats[i]
		err := cache.SaveFile(fr.path, fr.plans, store.FileInfo{
			MtimeNs:      info.ModTime().UnixNano(),
			SizeBytes:    info.Size(),
			SkippedRows:  fr.skipped,
			CellWarnings: fr.warnings,
		})
		if err != nil {
			zap.L().Warn("cache write failed", zap.String("file", fr.path), zap.Error(err))
		}
	}

	merged, err := merge(results, len(files))
	if err != nil {
		return nil, err
	}
	return &CachedLoadResult{LoadResult: *merged, CacheHits: hits, Reparsed: len(toReparse)}, nil
}

// pruneStale drops cache entries for files under dataPath that no longer exist.
func pruneStale(cache *store.Cache, dataPath string, tracked map[string]store.FileInfo, files []source.DiscoveredFile) {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Path] = true
	}
	root := filepath.Clean(dataPath)
	for path := range tracked {
		if present[path] {
			continue
		}
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			zap.L().Warn("cache prune failed", zap.String("file", path), zap.Error(err))
		}
	}
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fehbrank")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fehbrank")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "datasets.db")
}
