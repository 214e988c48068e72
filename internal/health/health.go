// Package health verifies startup preconditions so failures surface at boot
// instead of on the first request.
package health

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CheckCacheDir ensures dir exists (creating it if needed) and is writable.
func CheckCacheDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	probe := filepath.Join(dir, ".tutube-writecheck")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("cache dir not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}

// CheckExtractor confirms the extractor binary can be found on PATH.
func CheckExtractor(binary string) error {
	if binary == "" {
		binary = "yt-dlp"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("extractor binary %q not found: %w", binary, err)
	}
	return nil
}
