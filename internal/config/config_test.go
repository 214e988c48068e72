package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.Bind != DefaultBind {
		t.Errorf("Bind = %q, want %q", c.Bind, DefaultBind)
	}
	if c.YTDLPBinary != "yt-dlp" {
		t.Errorf("YTDLPBinary = %q", c.YTDLPBinary)
	}
	if c.ResolvePerMinute != 60 || c.ResolveBurst != 10 {
		t.Errorf("rate defaults = %d/%d", c.ResolvePerMinute, c.ResolveBurst)
	}
	if c.FetchTimeout != 0 {
		t.Errorf("FetchTimeout = %v, want 0", c.FetchTimeout)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("TUTUBE_CACHE", "/tmp/audio")
	os.Setenv("TUTUBE_BIND", "0.0.0.0:8080")
	os.Setenv("TUTUBE_YTDLP", "/opt/bin/yt-dlp")
	os.Setenv("TUTUBE_RESOLVE_PER_MINUTE", "10")
	os.Setenv("TUTUBE_FETCH_TIMEOUT", "5m")
	c := Load()
	if c.CacheDir != "/tmp/audio" || c.Bind != "0.0.0.0:8080" || c.YTDLPBinary != "/opt/bin/yt-dlp" {
		t.Errorf("env not applied: %+v", c)
	}
	if c.ResolvePerMinute != 10 {
		t.Errorf("ResolvePerMinute = %d", c.ResolvePerMinute)
	}
	if c.FetchTimeout != 5*time.Minute {
		t.Errorf("FetchTimeout = %v", c.FetchTimeout)
	}
}

func TestLoad_badValuesFallBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("TUTUBE_RESOLVE_PER_MINUTE", "-3")
	os.Setenv("TUTUBE_MAX_CONNS", "not-a-number")
	c := Load()
	if c.ResolvePerMinute <= 0 {
		t.Errorf("ResolvePerMinute = %d, want positive fallback", c.ResolvePerMinute)
	}
	if c.MaxConns != 64 {
		t.Errorf("MaxConns = %d, want default 64", c.MaxConns)
	}
}

func TestLoadEnvFile(t *testing.T) {
	os.Clearenv()
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nTUTUBE_BIND=127.0.0.1:9999\nTUTUBE_YTDLP=\"/usr/local/bin/yt-dlp\"\n\nBROKEN LINE\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("TUTUBE_BIND"); got != "127.0.0.1:9999" {
		t.Errorf("TUTUBE_BIND = %q", got)
	}
	if got := os.Getenv("TUTUBE_YTDLP"); got != "/usr/local/bin/yt-dlp" {
		t.Errorf("quotes should be stripped: %q", got)
	}
}

func TestLoadEnvFile_processEnvWins(t *testing.T) {
	os.Clearenv()
	os.Setenv("TUTUBE_BIND", "explicit:1")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TUTUBE_BIND=file:2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TUTUBE_BIND"); got != "explicit:1" {
		t.Errorf("process env should win over .env, got %q", got)
	}
}

func TestLoadEnvFile_missingFileOK(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing env file should not error: %v", err)
	}
}
