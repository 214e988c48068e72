package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// YTDLP resolves and fetches through the yt-dlp binary. Resolve runs
// `yt-dlp -J` and decodes the info JSON; Fetch runs `yt-dlp -x` with the
// configured audio format.
type YTDLP struct {
	Binary      string // path or name of the yt-dlp binary; "" = "yt-dlp" on PATH
	AudioFormat string // extracted audio format; "" = "mp3"
	Quality     string // audio quality passed to yt-dlp; "" = "192"
}

func (y *YTDLP) bin() string {
	if y.Binary != "" {
		return y.Binary
	}
	return "yt-dlp"
}

func (y *YTDLP) format() string {
	if y.AudioFormat != "" {
		return y.AudioFormat
	}
	return "mp3"
}

// ytdlpInfo is the subset of yt-dlp's info JSON we consume. A playlist dump
// nests the same shape under entries.
type ytdlpInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Extractor  string      `json:"extractor"`
	WebpageURL string      `json:"webpage_url"`
	Entries    []ytdlpInfo `json:"entries"`
}

func (y *YTDLP) Resolve(ctx context.Context, url string) ([]VideoInfo, error) {
	cmd := exec.CommandContext(ctx, y.bin(), "-J", "--no-warnings", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CannotResolveError{URL: url, Msg: toolMessage(err, stderr.Bytes())}
	}
	infos, err := parseInfoJSON(stdout.Bytes())
	if err != nil {
		return nil, &CannotResolveError{URL: url, Msg: err.Error()}
	}
	return infos, nil
}

func parseInfoJSON(data []byte) ([]VideoInfo, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode info JSON: %w", err)
	}
	items := info.Entries
	if len(items) == 0 {
		items = []ytdlpInfo{info}
	}
	out := make([]VideoInfo, 0, len(items))
	for _, it := range items {
		if it.ID == "" || it.Extractor == "" {
			return nil, fmt.Errorf("info JSON missing id or extractor")
		}
		out = append(out, VideoInfo{
			URL:      it.WebpageURL,
			Provider: strings.ToLower(it.Extractor),
			ID:       it.ID,
			Title:    it.Title,
		})
	}
	return out, nil
}

func (y *YTDLP) Fetch(ctx context.Context, url string, destPath string) error {
	args := []string{
		"-x",
		"--audio-format", y.format(),
		"--audio-quality", y.quality(),
		"--no-playlist",
		"--no-warnings",
		"-o", destPath,
		url,
	}
	cmd := exec.CommandContext(ctx, y.bin(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &CannotDownloadError{URL: url, Msg: toolMessage(err, stderr.Bytes())}
	}
	// The audio post-processor rewrites the output template's extension to the
	// audio format, so the file may land next to destPath instead of at it.
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}
	alt := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + "." + y.format()
	if _, err := os.Stat(alt); err == nil {
		return os.Rename(alt, destPath)
	}
	return &CannotDownloadError{URL: url, Msg: "yt-dlp produced no output file"}
}

func (y *YTDLP) quality() string {
	if y.Quality != "" {
		return y.Quality
	}
	return "192"
}

// toolMessage prefers the tool's stderr over Go's generic exit-status error.
func toolMessage(err error, stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg != "" {
		// Last line carries yt-dlp's actual ERROR: text.
		lines := strings.Split(msg, "\n")
		return lines[len(lines)-1]
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return err.Error()
}
