package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const cacheRoot = "cache/tracker"

// ProjectCachePath returns the cache file path for a project detail page.
func ProjectCachePath(projectID int) string {
	hash := generateHash(fmt.Sprintf("project:%d", projectID))
	return filepath.Join(cacheRoot, fmt.Sprintf("project_%d_%s.html", projectID, hash[:16]))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	hash := xxhash.Sum64String(s)
	return fmt.Sprintf("%016x", hash)
}

// EnsureCacheDir ensures the cache directory exists
func EnsureCacheDir() error {
	return os.MkdirAll(cacheRoot, 0755)
}

// WriteProject writes a rendered project page to its cache file.
func WriteProject(projectID int, html string) error {
	if err := EnsureCacheDir(); err != nil {
		return err
	}

	return os.WriteFile(ProjectCachePath(projectID), []byte(html), 0644)
}

// ReadProject reads a cached project page if it exists and is not expired.
func ReadProject(projectID int, maxAge time.Duration) (string, bool) {
	cachePath := ProjectCachePath(projectID)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}

	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// ClearProject removes the cached page for a project. Mutating handlers call
// this so a stale page is never served after an edit.
func ClearProject(projectID int) error {
	err := os.Remove(ProjectCachePath(projectID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll removes every cached tracker page.
func ClearAll() error {
	return os.RemoveAll(cacheRoot)
}

// ClearOldCache removes cache files older than the specified duration.
func ClearOldCache(maxAge time.Duration) error {
	return filepath.Walk(cacheRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".html") {
			return nil
		}

		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}

		return nil
	})
}
