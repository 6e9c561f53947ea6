// Package cache provides cache directory resolution for the sdui CLI.
//
// Priority order: --cache-dir flag > SDUI_CACHE_DIR env > ~/.sdui default.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvCacheDir names the environment variable overriding the cache root.
const EnvCacheDir = "SDUI_CACHE_DIR"

var global struct {
	version  string
	cacheDir string
}

// SetGlobal records the CLI version. This should be called at startup from
// root.go.
func SetGlobal(version string) {
	global.version = NormalizeVersion(version)
}

// NormalizeVersion returns a clean release version, or empty if the version
// is not a valid release (e.g., dev builds, pseudo-versions from go install).
// Explicit prerelease tags (v0.2.0-rc1) are allowed.
//
// Examples:
//
//	"v0.1.0"                          -> "v0.1.0"
//	"0.1.0"                           -> "v0.1.0"
//	"sdui-v0.1.0"                     -> "v0.1.0"
//	"v0.2.0-rc1"                      -> "v0.2.0-rc1" (prerelease allowed)
//	"0.1.0-dev"                       -> "" (dev build)
//	"v0.2.1-0.20260122153045-abc123"  -> "" (pseudo-version)
func NormalizeVersion(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "sdui-")

	if strings.HasSuffix(version, "-dev") {
		return ""
	}
	if strings.Contains(version, "-0.") {
		return ""
	}

	base := version
	if idx := strings.Index(version, "-"); idx != -1 {
		base = version[:idx]
	}
	base = strings.TrimPrefix(base, "v")
	if strings.Count(base, ".") != 2 {
		return ""
	}

	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// SetCacheDir sets an override for the cache directory.
// This is typically called when parsing the --cache-dir flag.
func SetCacheDir(dir string) {
	global.cacheDir = dir
}

// Root returns the cache root directory.
// Priority: --cache-dir flag > SDUI_CACHE_DIR env > ~/.sdui default.
func Root() (string, error) {
	if global.cacheDir != "" {
		return global.cacheDir, nil
	}

	if envDir := os.Getenv(EnvCacheDir); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".sdui"), nil
}

// BitmapDir returns the directory remote bitmaps are cached in.
// Returns: <cache_root>/bitmaps/<version>
// Non-release builds share the "dev" directory.
func BitmapDir() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	version := global.version
	if version == "" {
		version = "dev"
	}
	return filepath.Join(root, "bitmaps", version), nil
}
