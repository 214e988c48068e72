package safeurl

import (
	"fmt"
	"net/url"
)

// Validate rejects target URLs whose scheme is not http or https. The target
// comes straight off the request path, so file://, ftp://, and friends must be
// refused before they reach the extractor (SSRF / local file access).
func Validate(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %s", raw)
	}
	if s := parsed.Scheme; s != "http" && s != "https" {
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}

// IsHTTPOrHTTPS reports whether u is a valid absolute http(s) URL.
func IsHTTPOrHTTPS(u string) bool {
	return Validate(u) == nil
}
