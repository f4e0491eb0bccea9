package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/fehbrank/internal/model"
	"github.com/theirongolddev/fehbrank/internal/source"
)

// LoadResult holds the output of the dataset loading pipeline.
type LoadResult struct {
	// Plans is sorted by plan ID with duplicates removed.
	Plans        []model.PlanRecord
	TotalFiles   int
	ParsedFiles  int
	FileErrors   int
	SkippedRows  int
	CellWarnings int
	Duplicates   int
	UsedSample   bool
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// fileResult is one parsed file, from disk or the cache.
type fileResult struct {
	path     string
	plans    []model.PlanRecord
	skipped  int
	warnings int
	err      error
}

func fromParse(pr source.ParseResult) fileResult {
	for _, e := range pr.Skipped {
		zap.L().Debug("skipped row", zap.String("file", e.File), zap.Int("row", e.Row), zap.Error(e.Err))
	}
	for _, e := range pr.Warnings {
		zap.L().Debug("dropped cell", zap.String("file", e.File), zap.Int("row", e.Row),
			zap.String("column", e.Column), zap.Error(e.Err))
	}
	return fileResult{
		path:     pr.File.Path,
		plans:    pr.Plans,
		skipped:  len(pr.Skipped),
		warnings: len(pr.Warnings),
		err:      pr.Err,
	}
}

// Load discovers and parses every dataset file under dataPath. An empty
// dataPath loads the bundled sample. Files are parsed by a bounded worker
// pool; the merge is deterministic regardless of completion order.
func Load(dataPath string, progressFn ProgressFunc) (*LoadResult, error) {
	if dataPath == "" {
		return LoadSample()
	}

	files, err := source.ScanDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataPath, err)
	}

	results := parseFiles(files, 0, len(files), progressFn)
	return merge(results, len(files))
}

// LoadSample loads the dataset embedded in the binary.
func LoadSample() (*LoadResult, error) {
	res, err := merge([]fileResult{fromParse(source.ParseSample())}, 1)
	if err != nil {
		return nil, err
	}
	res.UsedSample = true
	return res, nil
}

// parseFiles parses files concurrently. Progress counts start at done
// out of total so cached files can be reported first.
func parseFiles(files []source.DiscoveredFile, done, total int, progressFn ProgressFunc) []fileResult {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	var processed atomic.Int64

	for i, f := range files {
		g.Go(func() error {
			results[i] = fromParse(source.ParseFile(f))
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(done+int(n), total)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in fileResult

	return results
}

// merge combines per-file results in the given order. The first file to
// define a plan ID wins; later definitions are counted as duplicates.
func merge(results []fileResult, totalFiles int) (*LoadResult, error) {
	out := &LoadResult{TotalFiles: totalFiles}
	seen := make(map[string]string)

	for _, fr := range results {
		if fr.err != nil {
			out.FileErrors++
			zap.L().Warn("skipping dataset file", zap.String("file", fr.path), zap.Error(fr.err))
			continue
		}
		out.ParsedFiles++
		out.SkippedRows += fr.skipped
		out.CellWarnings += fr.warnings

		for _, p := range fr.plans {
			if first, dup := seen[p.ID]; dup {
				out.Duplicates++
				zap.L().Debug("duplicate plan id", zap.String("plan", p.ID),
					zap.String("kept", first), zap.String("dropped", fr.path))
				continue
			}
			seen[p.ID] = fr.path
			out.Plans = append(out.Plans, p)
		}
	}

	sort.Slice(out.Plans, func(i, j int) bool { return out.Plans[i].ID < out.Plans[j].ID })

	if len(out.Plans) == 0 {
		return out, fmt.Errorf("%d files, %d unreadable: %w", out.TotalFiles, out.FileErrors, ErrNoPlans)
	}
	return out, nil
}
