package downloads

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one row of the download cache, keyed by the normalized source URL.
// Artifact paths are absolute; the cache never deletes the files themselves.
type Entry struct {
	URL       string   `json:"url"`
	Platform  string   `json:"platform"`
	Files     []string `json:"files"`
	Timestamp string   `json:"timestamp"`
	TS        int64    `json:"ts"`
}

// CachedDownload is the lookup result handed back to callers.
type CachedDownload struct {
	Files     []string
	Platform  string
	FromCache bool
}

// Cache deduplicates expensive external fetches by normalized URL. The whole
// map is read and rewritten as a single JSON document on every mutation, so a
// single in-process mutex serializes writers; the file is not safe for
// concurrent writers across processes.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[string]Entry
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache loads the backing file. A missing, unreadable or corrupt file
// reinitializes the cache to an empty map: a cold cache is an acceptable
// degraded mode, a crash is not.
func NewCache(path string, logger *zap.Logger) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]Entry),
		logger:  logger,
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Download cache unreadable, starting cold",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		logger.Warn("Download cache corrupt, starting cold",
			zap.String("path", path),
			zap.Error(err),
		)
		c.entries = make(map[string]Entry)
		return c
	}

	logger.Info("Download cache loaded",
		zap.String("path", path),
		zap.Int("entries", len(c.entries)),
	)
	return c
}

// NormalizeKey trims whitespace and lower-cases the URL. No other
// canonicalization happens: query parameters, trailing slashes and shortener
// hosts are taken literally, so only textually identical URLs deduplicate.
func NormalizeKey(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}

// Lookup returns the cached download for a URL, or nil when absent. An entry
// is valid only while every one of its artifact files still exists on disk;
// a single missing file invalidates the whole entry, which is then pruned.
func (c *Cache) Lookup(url string) *CachedDownload {
	key := NormalizeKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	for _, filePath := range entry.Files {
		if _, err := os.Stat(filePath); err != nil {
			c.logger.Info("Cached artifact missing, invalidating entry",
				zap.String("url", url),
				zap.String("file", filePath),
			)
			delete(c.entries, key)
			if err := c.persistLocked(); err != nil {
				c.logger.Error("Failed to persist cache after prune", zap.Error(err))
			}
			return nil
		}
	}

	c.logger.Info("Download cache hit", zap.String("url", url))
	files := make([]string, len(entry.Files))
	copy(files, entry.Files)
	return &CachedDownload{
		Files:     files,
		Platform:  entry.Platform,
		FromCache: true,
	}
}

// Store upserts the entry for a URL and persists the whole map.
func (c *Cache) Store(url, platform string, files []string) error {
	key := NormalizeKey(url)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		URL:       url,
		Platform:  platform,
		Files:     files,
		Timestamp: now.Format("2006-01-02 15:04:05"),
		TS:        now.Unix(),
	}

	return c.persistLocked()
}

// SweepExpired removes every entry older than maxAge, regardless of whether
// its files still exist. Intended to be driven by a periodic scheduler.
func (c *Cache) SweepExpired(maxAge time.Duration) (int, error) {
	cutoff := c.now().Add(-maxAge).Unix()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.TS < cutoff {
			delete(c.entries, key)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}

	if err := c.persistLocked(); err != nil {
		return removed, err
	}

	c.logger.Info("Swept expired download cache entries",
		zap.Int("removed", removed),
		zap.Duration("max_age", maxAge),
	)
	return removed, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// persistLocked rewrites the backing file atomically: write to a temp file in
// the same directory, then rename over the target. Callers hold c.mu.
func (c *Cache) persistLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal download cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}

	return nil
}
