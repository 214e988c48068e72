// Package cache maps resolved media items to their on-disk locations.
// The layout is <cacheDir>/<provider>/<id>.mp3 with sibling .partial and
// .lock files used only while an item is being materialized.
package cache

import (
	"path/filepath"
	"strings"
)

const audioExt = ".mp3"

// Rel returns the cache-relative path for an item. Pure and stable: the same
// (provider, id) always maps to the same path. The display title never
// participates; titles contain separators and unicode and are not unique.
func Rel(provider, id string) string {
	return sanitize(provider) + "/" + sanitize(id) + audioExt
}

// Path returns the absolute cache path for an item.
func Path(cacheDir, provider, id string) string {
	return filepath.Join(cacheDir, filepath.FromSlash(Rel(provider, id)))
}

// PartialPath is written to during materialization; the caller renames it to
// Path only when the fetch completed, so Path never names a truncated file.
func PartialPath(cacheDir, provider, id string) string {
	return strings.TrimSuffix(Path(cacheDir, provider, id), audioExt) + ".partial"
}

// LockPath names the flock file guarding materialization of one item.
func LockPath(cacheDir, provider, id string) string {
	return strings.TrimSuffix(Path(cacheDir, provider, id), audioExt) + ".lock"
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "\x00", "_")
	if s == "" {
		s = "unknown"
	}
	return s
}
