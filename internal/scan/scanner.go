// Package scan walks the input directories and assembles the per-run
// fingerprint store, using the cache to skip re-analysis of unchanged
// files. Directory-argument order, then lexical traversal order, defines
// first-seen order; every later tie-break depends on it.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"similarimages/internal/analyze"
	"similarimages/internal/cache"
	"similarimages/internal/models"
	"similarimages/internal/store"
)

// SkippedFile is a file that could not be analyzed. Skips are local: the
// run continues without the file.
type SkippedFile struct {
	Path string
	Err  error
}

// Result is the outcome of one scan.
type Result struct {
	Records  *store.Store
	Skipped  []SkippedFile
	Total    int // candidate files found
	Cached   int // served from the fingerprint cache
	Analyzed int // freshly decoded and hashed
}

// Scanner assembles image records from directories.
type Scanner struct {
	analyzer   *analyze.Analyzer
	cache      *cache.Cache // nil disables caching
	workers    int
	timeout    time.Duration
	progressFn func(done, total int, current string)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of parallel analysis workers.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the per-image analysis timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithProgress sets a callback invoked after each fresh analysis. done and
// total only count files that were not served from the cache.
func WithProgress(fn func(done, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a Scanner. c may be nil to disable the cache.
func NewScanner(c *cache.Cache, opts ...Option) *Scanner {
	s := &Scanner{
		analyzer: analyze.New(),
		cache:    c,
		workers:  8,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectPaths returns the candidate image paths under dirs, in directory
// argument order then lexical traversal order, with cross-directory
// duplicates dropped (the earlier directory wins).
func CollectPaths(dirs []string) []string {
	var paths []string
	seen := make(map[string]bool)

	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are not fatal
			}
			if d.IsDir() {
				return nil
			}
			if seen[path] {
				return nil
			}
			seen[path] = true
			if analyze.IsSupportedImage(path) {
				paths = append(paths, path)
			}
			return nil
		})
	}

	return paths
}

// Scan walks dirs and returns the populated store. Unreadable or
// undecodable files end up in Result.Skipped; only cache corruption or
// cancellation abort the scan.
func (s *Scanner) Scan(ctx context.Context, dirs []string) (*Result, error) {
	paths := CollectPaths(dirs)

	res := &Result{
		Records: store.New(),
		Total:   len(paths),
	}
	if len(paths) == 0 {
		return res, nil
	}

	// Phase one: digest every file and resolve cache hits. Digesting is
	// cheap next to decoding, so this runs on the calling goroutine.
	digests := make(map[string]string, len(paths))
	byDigest := make(map[string]*models.ImageRecord)
	var missing []string

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		digest, err := analyze.Digest(path)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedFile{Path: path, Err: err})
			continue
		}
		digests[path] = digest

		if _, ok := byDigest[digest]; ok {
			continue // same content seen already this run
		}

		if s.cache != nil {
			entry, err := s.cache.Lookup(digest)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				byDigest[digest] = recordFromEntry(entry)
				res.Cached++
				continue
			}
		}

		missing = append(missing, path)
	}

	// Phase two: analyze cache misses on a bounded worker pool. Results
	// are merged by a single collector; the store itself is built after
	// the barrier so first-seen order never depends on scheduling.
	analyzed, skipped := s.analyzeAll(ctx, missing)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Skipped = append(res.Skipped, skipped...)
	res.Analyzed = len(analyzed)

	var newEntries []*cache.Entry
	for _, rec := range analyzed {
		byDigest[rec.Digest] = rec
		newEntries = append(newEntries, &cache.Entry{
			Digest:      rec.Digest,
			Fingerprint: rec.Fingerprint,
			Width:       rec.Width,
			Height:      rec.Height,
			Format:      rec.Format,
			HasExif:     rec.HasExif,
		})
	}

	if s.cache != nil {
		if err := s.cache.StoreBatch(newEntries); err != nil {
			return nil, err
		}
	}

	// Assemble the store in first-seen path order. Each path gets its own
	// record: several paths can share a digest but byte size and mod time
	// are per file.
	for _, path := range paths {
		digest, ok := digests[path]
		if !ok {
			continue // skipped during digesting
		}
		base, ok := byDigest[digest]
		if !ok {
			continue // skipped during analysis
		}

		rec := *base
		rec.Path = path
		rec.Digest = digest
		if stat, err := os.Stat(path); err == nil {
			rec.ByteSize = stat.Size()
			rec.ModTime = stat.ModTime()
		}
		if err := res.Records.Put(&rec); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// analyzeAll runs the analyzer over paths on s.workers goroutines and
// returns the records keyed by nothing in particular; ordering is restored
// by the caller.
func (s *Scanner) analyzeAll(ctx context.Context, paths []string) ([]*models.ImageRecord, []SkippedFile) {
	if len(paths) == 0 {
		return nil, nil
	}

	type outcome struct {
		rec     *models.ImageRecord
		skipped *SkippedFile
	}

	work := make(chan string)
	results := make(chan outcome)
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				rec, err := s.analyzer.AnalyzeWithTimeout(path, s.timeout)
				if err != nil {
					results <- outcome{skipped: &SkippedFile{Path: path, Err: err}}
					continue
				}
				results <- outcome{rec: rec}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, p := range paths {
			select {
			case work <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var recs []*models.ImageRecord
	var skipped []SkippedFile
	done := 0
	for out := range results {
		done++
		if out.skipped != nil {
			skipped = append(skipped, *out.skipped)
		} else {
			recs = append(recs, out.rec)
			if s.progressFn != nil {
				s.progressFn(done, len(paths), out.rec.Path)
			}
		}
	}

	return recs, skipped
}

// recordFromEntry builds a path-less record from a cache hit. The caller
// fills in path, byte size and mod time.
func recordFromEntry(e *cache.Entry) *models.ImageRecord {
	return &models.ImageRecord{
		Fingerprint: e.Fingerprint,
		Digest:      e.Digest,
		PixelCount:  e.Width * e.Height,
		Width:       e.Width,
		Height:      e.Height,
		Format:      e.Format,
		HasExif:     e.HasExif,
	}
}
