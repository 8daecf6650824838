package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/pkg/types"
)

// Walker scans a source tree with a bounded worker pool and returns every
// endpoint usage found, in deterministic order.
type Walker struct {
	scanner FileScanner
	workers int
	log     logger.Logger
}

// NewWalker creates a tree walker over the given file scanner.
func NewWalker(scanner FileScanner, workers int, log logger.Logger) *Walker {
	if workers <= 0 {
		workers = 4
	}
	return &Walker{
		scanner: scanner,
		workers: workers,
		log:     log,
	}
}

type fileResult struct {
	usages []types.EndpointUsage
}

// ScanTree walks the tree rooted at root and scans every supported file.
// A file that cannot be read is logged and skipped; one unreadable file
// never fails the scan. Usages come back sorted by (file path, line number)
// so repeated scans of the same tree are byte-for-byte comparable.
func (w *Walker) ScanTree(ctx context.Context, root string) (*types.ScanResult, error) {
	files, err := w.collectFiles(root)
	if err != nil {
		return nil, err
	}

	paths := make(chan string, len(files))
	results := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- w.scanOne(root, path)
			}
		}()
	}

	for _, f := range files {
		paths <- f
	}
	close(paths)
	wg.Wait()
	close(results)

	var usages []types.EndpointUsage
	for r := range results {
		usages = append(usages, r.usages...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].FilePath != usages[j].FilePath {
			return usages[i].FilePath < usages[j].FilePath
		}
		return usages[i].LineNumber < usages[j].LineNumber
	})

	return &types.ScanResult{
		FilesScanned:   len(files),
		EndpointsFound: len(usages),
		Usages:         usages,
	}, nil
}

// collectFiles gathers the supported files under root, skipping the usual
// dependency and build directories. Entries that cannot be stat'd or read
// are logged and skipped; they never fail the walk.
func (w *Walker) collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.WithFields(map[string]interface{}{
				"path": path,
			}).Warn("skipping unreadable entry: " + err.Error())
			return nil
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.scanner.SupportsFile(fileExt(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Walker) scanOne(root, path string) fileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		w.log.WithFields(map[string]interface{}{
			"file": path,
		}).Warn("skipping unreadable file: " + err.Error())
		return fileResult{}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	return fileResult{usages: w.scanner.ScanFile(rel, string(content))}
}
