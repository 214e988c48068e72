// Command tutube serves cached audio extracted from media URLs.
//
// Usage: tutube [flags] CACHE_DIR
//
// GET http://host:port/<media-url> resolves the URL with yt-dlp (or fetches
// it directly when it already names an audio file), caches the MP3 under
// CACHE_DIR/<provider>/<id>.mp3, and streams it back. Repeated requests hit
// the cache; concurrent misses for one item fetch exactly once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/tutube/tutube/internal/config"
	"github.com/tutube/tutube/internal/downloader"
	"github.com/tutube/tutube/internal/extractor"
	"github.com/tutube/tutube/internal/health"
	"github.com/tutube/tutube/internal/history"
	"github.com/tutube/tutube/internal/httpclient"
	"github.com/tutube/tutube/internal/server"
)

func main() {
	bind := flag.String("bind", "", "host:port to bind to (default "+config.DefaultBind+", or TUTUBE_BIND)")
	envFile := flag.String("env", ".env", "optional env file with TUTUBE_* settings")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] CACHE_DIR\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Printf("env file %s: %v", *envFile, err)
	}
	cfg := config.Load()
	if flag.NArg() > 0 {
		cfg.CacheDir = flag.Arg(0)
	}
	if *bind != "" {
		cfg.Bind = *bind
	}
	if cfg.CacheDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := health.CheckCacheDir(cfg.CacheDir); err != nil {
		log.Fatalf("cache dir: %v", err)
	}
	if err := health.CheckExtractor(cfg.YTDLPBinary); err != nil {
		log.Printf("warning: %v (only direct audio URLs will work)", err)
	}

	histPath := cfg.HistoryFile
	if histPath == "" {
		histPath = filepath.Join(cfg.CacheDir, "history.db")
	}
	hist, err := history.Open(histPath)
	if err != nil {
		log.Printf("history disabled: %v", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	ext := &extractor.Router{
		Direct: &extractor.Direct{Client: httpclient.Default()},
		YTDLP:  &extractor.YTDLP{Binary: cfg.YTDLPBinary},
	}
	dl := &downloader.Downloader{
		CacheDir:     cfg.CacheDir,
		Extractor:    ext,
		Limiter:      rate.NewLimiter(rate.Limit(float64(cfg.ResolvePerMinute)/60.0), cfg.ResolveBurst),
		History:      hist,
		FetchTimeout: cfg.FetchTimeout,
	}
	srv := &server.Server{
		Addr:       cfg.Bind,
		Downloader: dl,
		History:    hist,
		MaxConns:   cfg.MaxConns,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
