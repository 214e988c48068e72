// Package downloader is the caching layer: it resolves a target URL to
// metadata and guarantees each returned item has its audio file on disk,
// fetching at most once per (provider, id) no matter how many requests or
// processes race for it.
package downloader

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/tutube/tutube/internal/cache"
	"github.com/tutube/tutube/internal/extractor"
	"github.com/tutube/tutube/internal/flock"
	"github.com/tutube/tutube/internal/history"
	"github.com/tutube/tutube/internal/metrics"
)

// Downloader owns the cache directory for its lifetime. It never deletes
// cached files; the filesystem is the only shared state, so completed entries
// survive restarts and in-flight locks do not.
type Downloader struct {
	CacheDir     string
	Extractor    extractor.Interface
	Limiter      *rate.Limiter  // optional: caps Resolve calls against the upstream
	History      *history.Store // optional: records successful fetches
	FetchTimeout time.Duration  // optional: bound on a single materialization
}

func New(cacheDir string, ext extractor.Interface) *Downloader {
	return &Downloader{CacheDir: cacheDir, Extractor: ext}
}

// Resolve returns metadata for every item url names. Failures carry the
// extractor's message (see extractor.CannotResolveError).
func (d *Downloader) Resolve(ctx context.Context, url string) ([]extractor.VideoInfo, error) {
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return d.Extractor.Resolve(ctx, url)
}

// GetVideos resolves url and ensures every returned item has a non-empty
// audio file at Path(item). The cache key is the resolved (provider, id),
// never the input URL, so normalized duplicates share one entry.
func (d *Downloader) GetVideos(ctx context.Context, url string) ([]extractor.VideoInfo, error) {
	infos, err := d.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if err := d.ensure(ctx, info); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

// Path returns the absolute cache path for a resolved item.
func (d *Downloader) Path(info extractor.VideoInfo) string {
	return cache.Path(d.CacheDir, info.Provider, info.ID)
}

// ensure makes the item's audio file present. The hit path is a bare stat:
// no lock is taken for items already cached. On a miss the per-path flock
// serializes materialization with any other thread or process targeting the
// same item; different items proceed in parallel.
func (d *Downloader) ensure(ctx context.Context, info extractor.VideoInfo) error {
	finalPath := d.Path(info)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return err
	}
	if cached(finalPath) {
		metrics.CacheHits.Inc()
		return nil
	}
	metrics.CacheMisses.Inc()
	lockPath := cache.LockPath(d.CacheDir, info.Provider, info.ID)
	return flock.With(lockPath, func() error {
		// Whoever held the lock before us may have completed the fetch.
		if cached(finalPath) {
			return nil
		}
		return d.materialize(ctx, info, finalPath)
	})
}

func (d *Downloader) materialize(ctx context.Context, info extractor.VideoInfo, finalPath string) error {
	log.Printf("downloader: not in cache, fetching provider=%s id=%s title=%q", info.Provider, info.ID, info.Title)
	metrics.FetchesInFlight.Inc()
	defer metrics.FetchesInFlight.Dec()
	start := time.Now()

	if d.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.FetchTimeout)
		defer cancel()
	}
	partial := cache.PartialPath(d.CacheDir, info.Provider, info.ID)
	if err := d.Extractor.Fetch(ctx, info.URL, partial); err != nil {
		os.Remove(partial)
		metrics.FetchFailures.Inc()
		return err
	}
	// Rename only on success so the existence check never sees a truncated file.
	if err := os.Rename(partial, finalPath); err != nil {
		os.Remove(partial)
		metrics.FetchFailures.Inc()
		return err
	}
	elapsed := time.Since(start)
	metrics.FetchDuration.Observe(elapsed.Seconds())

	var size int64
	if fi, err := os.Stat(finalPath); err == nil {
		size = fi.Size()
	}
	log.Printf("downloader: cached provider=%s id=%s bytes=%d dur=%s", info.Provider, info.ID, size, elapsed.Round(time.Millisecond))
	if d.History != nil {
		err := d.History.Record(ctx, history.Entry{
			Provider: info.Provider,
			ID:       info.ID,
			Title:    info.Title,
			URL:      info.URL,
			Bytes:    size,
			FetchMS:  elapsed.Milliseconds(),
		})
		if err != nil {
			log.Printf("downloader: history record failed id=%s err=%v", info.ID, err)
		}
	}
	return nil
}

// cached treats only a non-empty file as a hit; a zero-byte leftover from a
// crashed process is re-fetched.
func cached(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}
