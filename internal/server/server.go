// Package server exposes the caching downloader over HTTP. One endpoint does
// the work: GET /<target-url> resolves, fetches on miss, and streams the audio
// back. /healthz, /metrics, and /history.json are operational side doors.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/tutube/tutube/internal/downloader"
	"github.com/tutube/tutube/internal/extractor"
	"github.com/tutube/tutube/internal/history"
	"github.com/tutube/tutube/internal/metrics"
	"github.com/tutube/tutube/internal/safeurl"
)

// Server holds no mutable state of its own; concurrent dispatch is safe
// because the downloader's per-path locking is the only coordination needed.
type Server struct {
	Addr       string
	Downloader *downloader.Downloader
	History    *history.Store // nil disables /history.json
	MaxConns   int            // cap on concurrent connections; 0 = unlimited

	started time.Time
}

// historyLimit bounds /history.json responses.
const historyLimit = 100

// Handler assembles the full route table. The audio endpoint is dispatched
// outside the ServeMux: target URLs contain "//", which the mux's path
// cleaning would mangle into a redirect.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", s.serveHealth())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/history.json", s.serveHistory())
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz", "/metrics", "/history.json":
			mux.ServeHTTP(w, r)
		default:
			s.serveAudio(w, r)
		}
	})
	return logRequests(root)
}

// Run serves until ctx is cancelled, then drains with a 10s grace period.
func (s *Server) Run(ctx context.Context) error {
	s.started = time.Now()
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}
	srv := &http.Server{Handler: s.Handler()}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s (cache %s)", ln.Addr(), s.Downloader.CacheDir)
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Print("server: shutting down ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
		<-serverErr
		return nil
	}
}

// serveAudio is the request state machine: parse target, resolve and fetch,
// stream. Every recognized failure becomes a plain-text status; nothing else
// is written before the file opens, so error responses are never half-sent.
func (s *Server) serveAudio(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	target := targetURL(r)
	if target == "" {
		http.Error(w, "no URL provided", http.StatusBadRequest)
		return
	}
	if err := safeurl.Validate(target); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	videos, err := s.Downloader.GetVideos(r.Context(), target)
	if err != nil {
		s.failAudio(w, target, err)
		return
	}
	if len(videos) != 1 {
		http.Error(w, "playlists not supported", http.StatusBadRequest)
		return
	}
	video := videos[0]

	f, err := os.Open(s.Downloader.Path(video))
	if err != nil {
		log.Printf("server: open cached file id=%s err=%v", video.ID, err)
		http.Error(w, "cached file unavailable", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		http.Error(w, "cached file unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", video.Title))
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	// Streamed, not buffered: files can run to hundreds of MB. A client
	// disconnect aborts this copy without touching other requests.
	io.Copy(w, f)
}

// failAudio maps downloader errors onto statuses: collaborator failures are
// the client's problem (400), lock and filesystem faults are ours (500).
func (s *Server) failAudio(w http.ResponseWriter, target string, err error) {
	var resolveErr *extractor.CannotResolveError
	var downloadErr *extractor.CannotDownloadError
	switch {
	case errors.As(err, &resolveErr):
		http.Error(w, resolveErr.Msg, http.StatusBadRequest)
	case errors.As(err, &downloadErr):
		http.Error(w, downloadErr.Msg, http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// Client went away; status is moot but 499-style logging helps.
		log.Printf("server: request cancelled target=%q", target)
		http.Error(w, "request cancelled", http.StatusBadRequest)
	default:
		log.Printf("server: fetch failed target=%q err=%v", target, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// targetURL recovers the target from path+query with surrounding slashes
// stripped, so GET /https://youtu.be/x?t=1 yields https://youtu.be/x?t=1.
func targetURL(r *http.Request) string {
	t := r.URL.Path
	if r.URL.RawQuery != "" {
		t += "?" + r.URL.RawQuery
	}
	t = strings.Trim(t, "/")
	if t == "" || t == "?" {
		return ""
	}
	return t
}

func (s *Server) serveHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"cached": countAudioFiles(s.Downloader.CacheDir),
			"uptime": time.Since(s.started).Round(time.Second).String(),
		})
	})
}

func (s *Server) serveHistory() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.History == nil {
			http.Error(w, "history disabled", http.StatusNotFound)
			return
		}
		entries, err := s.History.Recent(r.Context(), historyLimit)
		if err != nil {
			log.Printf("server: history query: %v", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		var out io.Writer = w
		if strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			w.Header().Set("Content-Encoding", "br")
			bw := brotli.NewWriter(w)
			defer bw.Close()
			out = bw
		}
		json.NewEncoder(out).Encode(entries)
	})
}

func countAudioFiles(dir string) int {
	n := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".mp3") {
			n++
		}
		return nil
	})
	return n
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *loggingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)
		status := lw.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		log.Printf(
			"http: %s %s status=%d bytes=%d dur=%s remote=%s",
			r.Method, r.URL.Path, status, lw.bytes, time.Since(start).Round(time.Millisecond), r.RemoteAddr,
		)
	})
}
