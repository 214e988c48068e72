//go:build unix

package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseInfoJSON_singleVideo(t *testing.T) {
	data := []byte(`{
		"id": "C0DPdy98e4c",
		"title": "TEST VIDEO",
		"extractor": "youtube",
		"webpage_url": "https://www.youtube.com/watch?v=C0DPdy98e4c"
	}`)
	infos, err := parseInfoJSON(data)
	if err != nil {
		t.Fatalf("parseInfoJSON: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("len = %d, want 1", len(infos))
	}
	want := VideoInfo{
		URL:      "https://www.youtube.com/watch?v=C0DPdy98e4c",
		Provider: "youtube",
		ID:       "C0DPdy98e4c",
		Title:    "TEST VIDEO",
	}
	if infos[0] != want {
		t.Errorf("got %+v, want %+v", infos[0], want)
	}
}

func TestParseInfoJSON_playlistEntries(t *testing.T) {
	data := []byte(`{
		"id": "PL123",
		"title": "Some list",
		"extractor": "youtube:tab",
		"entries": [
			{"id": "a", "title": "A", "extractor": "Youtube", "webpage_url": "https://youtu.be/a"},
			{"id": "b", "title": "B", "extractor": "Youtube", "webpage_url": "https://youtu.be/b"}
		]
	}`)
	infos, err := parseInfoJSON(data)
	if err != nil {
		t.Fatalf("parseInfoJSON: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	if infos[0].Provider != "youtube" {
		t.Errorf("extractor key should be lowercased: %q", infos[0].Provider)
	}
	if infos[1].ID != "b" {
		t.Errorf("second entry id = %q", infos[1].ID)
	}
}

func TestParseInfoJSON_missingID(t *testing.T) {
	if _, err := parseInfoJSON([]byte(`{"title": "no id", "extractor": "youtube"}`)); err == nil {
		t.Error("want error for info JSON without an id")
	}
}

// fakeYTDLP writes a shell script standing in for the real binary: -J dumps
// fixed info JSON, anything else writes a file at the -o argument.
func fakeYTDLP(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYTDLP_Resolve(t *testing.T) {
	bin := fakeYTDLP(t, `#!/bin/sh
cat <<'EOF'
{"id": "C0DPdy98e4c", "title": "TEST VIDEO", "extractor": "youtube", "webpage_url": "https://www.youtube.com/watch?v=C0DPdy98e4c"}
EOF
`)
	y := &YTDLP{Binary: bin}
	infos, err := y.Resolve(context.Background(), "https://youtu.be/C0DPdy98e4c")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "C0DPdy98e4c" {
		t.Errorf("infos = %+v", infos)
	}
}

func TestYTDLP_ResolveFailureCarriesStderr(t *testing.T) {
	bin := fakeYTDLP(t, `#!/bin/sh
echo "ERROR: Video unavailable" >&2
exit 1
`)
	y := &YTDLP{Binary: bin}
	_, err := y.Resolve(context.Background(), "https://youtu.be/gone")
	var ce *CannotResolveError
	if !errors.As(err, &ce) {
		t.Fatalf("want CannotResolveError, got %v", err)
	}
	if ce.Msg != "ERROR: Video unavailable" {
		t.Errorf("Msg = %q, want the tool's stderr line", ce.Msg)
	}
}

func TestYTDLP_FetchWritesDest(t *testing.T) {
	bin := fakeYTDLP(t, `#!/bin/sh
while [ $# -gt 1 ]; do
  if [ "$1" = "-o" ]; then dest="$2"; fi
  shift
done
printf 'audio' > "$dest"
`)
	y := &YTDLP{Binary: bin}
	dest := filepath.Join(t.TempDir(), "x.partial")
	if err := y.Fetch(context.Background(), "https://youtu.be/x", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio" {
		t.Errorf("dest content = %q", data)
	}
}

func TestYTDLP_FetchPicksUpRewrittenExtension(t *testing.T) {
	// yt-dlp's audio post-processor replaces the template extension with the
	// audio format; Fetch must still end up with the exact dest path.
	bin := fakeYTDLP(t, `#!/bin/sh
while [ $# -gt 1 ]; do
  if [ "$1" = "-o" ]; then dest="$2"; fi
  shift
done
base="${dest%.*}"
printf 'audio' > "$base.mp3"
`)
	y := &YTDLP{Binary: bin}
	dest := filepath.Join(t.TempDir(), "x.partial")
	if err := y.Fetch(context.Background(), "https://youtu.be/x", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("dest missing after extension rewrite handling: %v", err)
	}
}

func TestYTDLP_FetchFailure(t *testing.T) {
	bin := fakeYTDLP(t, `#!/bin/sh
echo "ERROR: no formats" >&2
exit 1
`)
	y := &YTDLP{Binary: bin}
	err := y.Fetch(context.Background(), "https://youtu.be/x", filepath.Join(t.TempDir(), "x.partial"))
	var de *CannotDownloadError
	if !errors.As(err, &de) {
		t.Fatalf("want CannotDownloadError, got %v", err)
	}
}
