// Package indexer walks a project tree, hashes each candidate file against
// what's already stored, and parses and saves whatever changed. It is the
// component both a one-shot CLI run and the sync engine drive.
package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/parser"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

// FileStatus reports what IndexFile actually did to the store, distinguishing
// a removal (file no longer on disk) from a content change so callers can
// tally each separately.
type FileStatus string

const (
	FileUnchanged FileStatus = "unchanged"
	FileChanged   FileStatus = "changed"
	FileRemoved   FileStatus = "removed"
)

// Result summarizes one indexDirectory or sync pass.
type Result struct {
	TotalFiles   int
	IndexedFiles int
	SkippedFiles int
	RemovedFiles int
	Errors       []string
	Duration     time.Duration
}

// Indexer owns the walk/hash/parse/save pipeline against one Store.
type Indexer struct {
	cfg       *config.Config
	store     *storage.Store
	registry  *parser.Registry
	gitignore *config.GitignoreMatcher
}

// New loads the project's .gitignore (if RespectGitignore is set) and
// returns an Indexer bound to store.
func New(cfg *config.Config, store *storage.Store) (*Indexer, error) {
	idx := &Indexer{cfg: cfg, store: store, registry: parser.Default()}
	if cfg.RespectGitignore {
		gi, err := config.LoadGitignore(cfg.RootDirectory)
		if err != nil {
			return nil, err
		}
		idx.gitignore = gi
	}
	return idx, nil
}

// IndexDirectory walks the whole project root, reindexing every changed
// file and, because it observes every path on disk, removing stored files
// that are no longer present. Concurrency across files is capped by
// cfg.WalkConcurrency (SPEC_FULL.md concurrency model).
func (ix *Indexer) IndexDirectory(ctx context.Context) (*Result, error) {
	start := time.Now()
	paths, err := ix.walk()
	if err != nil {
		return nil, err
	}

	res := &Result{TotalFiles: len(paths)}
	seen := make(map[string]bool, len(paths))
	var mu sync.Mutex

	sem := semaphore.NewWeighted(int64(walkConcurrency(ix.cfg)))
	g, gctx := errgroup.WithContext(ctx)

	for _, relPath := range paths {
		relPath := relPath
		absPath := filepath.Join(ix.cfg.RootDirectory, relPath)
		mu.Lock()
		seen[relPath] = true
		mu.Unlock()

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			changed, ferr := ix.indexOne(absPath, relPath)
			mu.Lock()
			if ferr != nil {
				res.Errors = append(res.Errors, absPath+": "+ferr.Error())
			} else if changed {
				res.IndexedFiles++
			} else {
				res.SkippedFiles++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, stored := range ix.store.AllRelativePaths() {
		if !seen[stored] {
			abs := filepath.Join(ix.cfg.RootDirectory, stored)
			if err := ix.store.RemoveFile(abs); err != nil {
				res.Errors = append(res.Errors, abs+": "+err.Error())
				continue
			}
			res.RemovedFiles++
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// IndexFile reindexes a single file (or removes it from the store if it no
// longer exists), used by the watcher and by the sync engine's targeted
// mode. It reports which of the three outcomes actually happened so callers
// can tally removals separately from content changes.
func (ix *Indexer) IndexFile(absPath string) (FileStatus, error) {
	relPath, rerr := filepath.Rel(ix.cfg.RootDirectory, absPath)
	if rerr != nil {
		relPath = absPath
	}
	relPath = filepath.ToSlash(relPath)

	if _, statErr := os.Stat(absPath); statErr != nil {
		if os.IsNotExist(statErr) {
			if rerr := ix.store.RemoveFile(absPath); rerr != nil {
				return FileUnchanged, rerr
			}
			return FileRemoved, nil
		}
		return FileUnchanged, statErr
	}
	changed, err := ix.indexOne(absPath, relPath)
	if err != nil {
		return FileUnchanged, err
	}
	if changed {
		return FileChanged, nil
	}
	return FileUnchanged, nil
}

// RemoveFile drops absPath from the store, used when the watcher observes
// a deletion directly (skipping the os.Stat IndexFile would otherwise do).
func (ix *Indexer) RemoveFile(absPath string) error {
	return ix.store.RemoveFile(absPath)
}

// Store exposes the underlying Store so callers (the sync engine, the
// Markov builder) can run further operations against the same database
// without reopening it.
func (ix *Indexer) Store() *storage.Store { return ix.store }

// indexOne hashes absPath's current content against the stored checksum,
// and only reparses when they differ (or there's no stored row yet).
func (ix *Indexer) indexOne(absPath, relPath string) (changed bool, err error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, err
	}
	checksum := hashContent(content)

	if existing, gerr := ix.store.GetFile(relPath); gerr == nil && existing.Checksum == checksum {
		return false, nil
	}

	langParser, ok := ix.registry.ForPath(absPath)
	if !ok || isBinary(absPath, content) {
		return false, nil
	}

	result, perr := langParser.ParseFile(absPath, content, ix.cfg.MaxFileSize, ix.cfg.IncludePrivate)
	if perr != nil {
		return false, perr
	}

	status := types.ParseComplete
	if len(result.Errors) > 0 {
		status = types.ParsePartial
	}

	rec := types.FileRecord{
		AbsolutePath: absPath,
		RelativePath: relPath,
		Language:     langParser.Language(),
		Checksum:     checksum,
		LineCount:    strings.Count(string(content), "\n") + 1,
		ParseStatus:  status,
	}
	for _, pe := range result.Errors {
		rec.ParseWarnings = append(rec.ParseWarnings, pe.Message)
	}

	if err := ix.store.SaveFile(rec, result); err != nil {
		return false, err
	}
	return true, nil
}

// walk enumerates every project-relative path that matches the configured
// include globs (or every file, if none are configured) and isn't excluded
// by the exclude globs or gitignore.
func (ix *Indexer) walk() ([]string, error) {
	var out []string
	err := filepath.Walk(ix.cfg.RootDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(ix.cfg.RootDirectory, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if ix.excluded(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !ix.included(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

func (ix *Indexer) excluded(rel string, isDir bool) bool {
	for _, pattern := range ix.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	if ix.gitignore != nil && ix.gitignore.Ignored(rel, isDir) {
		return true
	}
	return false
}

func (ix *Indexer) included(rel string) bool {
	if len(ix.cfg.Include) == 0 {
		return ix.registry.CanParse(rel)
	}
	for _, pattern := range ix.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func hashContent(content []byte) string {
	h := xxhash.New()
	h.Write(content)
	return xxhashHex(h.Sum64())
}

func xxhashHex(v uint64) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hextable[v&0xf]
		v >>= 4
	}
	return string(buf)
}

func walkConcurrency(cfg *config.Config) int {
	if cfg.WalkConcurrency <= 0 {
		return 12
	}
	return cfg.WalkConcurrency
}
