// Package extractor resolves media URLs to metadata and materializes their
// audio tracks. Two implementations exist: YTDLP drives the yt-dlp binary for
// provider sites, Direct downloads URLs that already point at an audio file.
// Router picks between them per URL.
package extractor

import "context"

// VideoInfo describes one resolved media item. Constructed fresh on every
// Resolve call; nothing here is persisted except the audio file itself.
type VideoInfo struct {
	URL      string // canonical URL as resolved by the provider (may differ from the input)
	Provider string // stable lowercase source key, e.g. "youtube"
	ID       string // stable identifier within the provider's namespace
	Title    string // display title; not unique, not filesystem-safe
}

// Interface is the contract the caching layer depends on.
type Interface interface {
	// Resolve returns metadata for every item url names: one element for a
	// single item, all entries for a playlist. No files are written.
	Resolve(ctx context.Context, url string) ([]VideoInfo, error)

	// Fetch downloads and transcodes the item's audio into destPath.
	// destPath is written exactly; nothing else in its directory is touched.
	Fetch(ctx context.Context, url string, destPath string) error
}

// CannotResolveError: the resource could not be resolved or extracted
// (bad URL, removed content, geo-block, network failure). Carries the
// underlying tool's message for the client.
type CannotResolveError struct {
	URL string
	Msg string
}

func (e *CannotResolveError) Error() string { return "cannot resolve " + e.URL + ": " + e.Msg }

// CannotDownloadError: metadata resolved but the audio could not be fetched.
type CannotDownloadError struct {
	URL string
	Msg string
}

func (e *CannotDownloadError) Error() string { return "cannot download " + e.URL + ": " + e.Msg }

// Router dispatches per URL: Direct for links that already name an audio
// file, YTDLP for everything else. Fetch sees the canonical URL from Resolve,
// so both calls for one item route to the same implementation.
type Router struct {
	Direct *Direct
	YTDLP  *YTDLP
}

func (r *Router) pick(url string) Interface {
	if r.Direct != nil && DirectHandles(url) {
		return r.Direct
	}
	return r.YTDLP
}

func (r *Router) Resolve(ctx context.Context, url string) ([]VideoInfo, error) {
	return r.pick(url).Resolve(ctx, url)
}

func (r *Router) Fetch(ctx context.Context, url string, destPath string) error {
	return r.pick(url).Fetch(ctx, url, destPath)
}
