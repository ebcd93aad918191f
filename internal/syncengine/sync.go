// Package syncengine drives incremental reindexing: either a targeted set
// of paths (the watcher's common case) or a full walk-and-diff pass,
// serialized so two syncs never race against the same store.
package syncengine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/indexer"
	"github.com/standardbeagle/codeindex/internal/markov"
	"github.com/standardbeagle/codeindex/internal/resolve"
)

// Request parameterizes one Sync call. An empty Files slice means "full
// walk of the project root"; a non-empty one means "only these paths".
type Request struct {
	Files         []string
	RebuildChains bool
}

// Summary reports what a Sync call actually did.
type Summary struct {
	Reindexed   int
	Removed     int
	Unchanged   int
	Errors      []string
	Duration    time.Duration
	ChainIDs    []string
}

// Engine wraps one Indexer with a mutex so concurrent sync requests (e.g. a
// watcher-triggered sync overlapping a manual one) serialize instead of
// racing on the same sqlite connection.
type Engine struct {
	idx  *indexer.Indexer
	root string
	cfg  *config.Config

	mu sync.Mutex
}

func New(idx *indexer.Indexer, root string, cfg *config.Config) *Engine {
	return &Engine{idx: idx, root: root, cfg: cfg}
}

// Sync runs req, holding the engine's lock for its entire duration so a
// second call blocks until the first finishes rather than interleaving
// writes.
func (e *Engine) Sync(ctx context.Context, req Request) (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	summary := &Summary{}

	if len(req.Files) == 0 {
		res, err := e.idx.IndexDirectory(ctx)
		if err != nil {
			return nil, err
		}
		summary.Reindexed = res.IndexedFiles
		summary.Removed = res.RemovedFiles
		summary.Unchanged = res.SkippedFiles
		summary.Errors = res.Errors
	} else {
		for _, path := range req.Files {
			abs := path
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(e.root, path)
			}
			status, err := e.idx.IndexFile(abs)
			if err != nil {
				summary.Errors = append(summary.Errors, abs+": "+err.Error())
				continue
			}
			switch status {
			case indexer.FileRemoved:
				summary.Removed++
			case indexer.FileChanged:
				summary.Reindexed++
			default:
				summary.Unchanged++
			}
		}
	}

	if _, err := resolve.Run(e.idx.Store()); err != nil {
		summary.Errors = append(summary.Errors, "resolve: "+err.Error())
	}

	if req.RebuildChains {
		ids, err := markov.RebuildAll(e.idx.Store(), e.cfg.Markov)
		if err != nil {
			summary.Errors = append(summary.Errors, "markov rebuild: "+err.Error())
		} else {
			summary.ChainIDs = ids
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}
