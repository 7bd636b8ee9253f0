package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/moothz/ravena-go/internal/constants"
	"github.com/moothz/ravena-go/internal/service/downloads"
	"github.com/moothz/ravena-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Downloader fetches media artifacts for social-media URLs. Every fetch
// consults the download cache first; only a miss pays for the scrape and the
// file transfers.
type Downloader struct {
	httpClient *http.Client
	cache      *downloads.Cache
	dir        string
	logger     *zap.Logger
}

func NewDownloader(cache *downloads.Cache, dir string, logger *zap.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: constants.DownloadConfig.FileTimeout,
		},
		cache:  cache,
		dir:    dir,
		logger: logger,
	}
}

// DetectPlatform maps a URL's hostname to a known platform tag. Unknown
// hosts return the empty string.
func DetectPlatform(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return ""
	}

	hostname := strings.ToLower(parsed.Hostname())
	hostname = strings.TrimPrefix(hostname, "www.")

	if platform, ok := constants.DownloadPlatforms[hostname]; ok {
		return platform
	}

	// Subdomains like m.tiktok.com or vm.tiktok.com.
	for host, platform := range constants.DownloadPlatforms {
		if strings.HasSuffix(hostname, "."+host) {
			return platform
		}
	}

	return ""
}

// Fetch returns the artifacts for a URL, from cache when possible. On a miss
// it scrapes the page for media references, downloads them and records the
// result so the next request for the same URL is free.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*downloads.CachedDownload, error) {
	platform := DetectPlatform(rawURL)
	if platform == "" {
		return nil, errors.NewServiceError("unsupported platform", "media", "fetch", nil)
	}

	if hit := d.cache.Lookup(rawURL); hit != nil {
		return hit, nil
	}

	mediaURLs, err := d.scrapeMediaURLs(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(mediaURLs) == 0 {
		return nil, errors.NewServiceError("no media found on page", "media", "scrape", nil)
	}

	files, err := d.downloadAll(ctx, mediaURLs)
	if err != nil {
		return nil, err
	}

	if err := d.cache.Store(rawURL, platform, files); err != nil {
		// The artifacts are on disk; a bookkeeping failure only costs the
		// next request a re-fetch.
		d.logger.Error("Failed to record download in cache",
			zap.String("url", rawURL),
			zap.Error(err),
		)
	}

	d.logger.Info("Media downloaded",
		zap.String("url", rawURL),
		zap.String("platform", platform),
		zap.Int("files", len(files)),
	)

	return &downloads.CachedDownload{
		Files:     files,
		Platform:  platform,
		FromCache: false,
	}, nil
}

// scrapeMediaURLs pulls og:video / og:image references out of the page head.
func (d *Downloader) scrapeMediaURLs(ctx context.Context, pageURL string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DownloadConfig.PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.NewServiceError("failed to build page request", "media", "scrape", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ravena/2.0)")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewServiceError("failed to fetch page", "media", "scrape", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewServiceError(
			fmt.Sprintf("page returned %s", resp.Status), "media", "scrape", nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewServiceError("failed to parse page", "media", "scrape", err)
	}

	seen := make(map[string]struct{})
	mediaURLs := make([]string, 0, 2)
	appendURL := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if _, dup := seen[raw]; dup {
			return
		}
		seen[raw] = struct{}{}
		mediaURLs = append(mediaURLs, raw)
	}

	for _, prop := range []string{"og:video:secure_url", "og:video:url", "og:video"} {
		doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				appendURL(content)
			}
		})
	}

	// Fall back to the og:image only when the page exposes no video.
	if len(mediaURLs) == 0 {
		doc.Find(`meta[property="og:image"]`).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				appendURL(content)
			}
		})
	}

	return mediaURLs, nil
}

// downloadAll fetches every media URL in parallel, preserving input order in
// the returned paths. One failed transfer fails the whole batch; partially
// written files are removed.
func (d *Downloader) downloadAll(ctx context.Context, mediaURLs []string) ([]string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, errors.NewServiceError("failed to create download dir", "media", "download", err)
	}

	p := pool.New().WithMaxGoroutines(constants.DownloadConfig.MaxParallel)

	files := make([]string, len(mediaURLs))
	errs := make([]error, len(mediaURLs))
	var mu sync.Mutex

	for idx, mediaURL := range mediaURLs {
		idx, mediaURL := idx, mediaURL
		p.Go(func() {
			filePath, err := d.downloadFile(ctx, mediaURL)
			mu.Lock()
			files[idx] = filePath
			errs[idx] = err
			mu.Unlock()
		})
	}

	p.Wait()

	for _, err := range errs {
		if err != nil {
			for _, filePath := range files {
				if filePath != "" {
					os.Remove(filePath)
				}
			}
			return nil, err
		}
	}

	return files, nil
}

func (d *Downloader) downloadFile(ctx context.Context, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", errors.NewServiceError("failed to build media request", "media", "download", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", errors.NewServiceError("failed to download media", "media", "download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewServiceError(
			fmt.Sprintf("media returned %s", resp.Status), "media", "download", nil)
	}

	filePath := filepath.Join(d.dir, artifactName(mediaURL, resp.Header.Get("Content-Type")))
	out, err := os.Create(filePath)
	if err != nil {
		return "", errors.NewServiceError("failed to create artifact file", "media", "download", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(filePath)
		return "", errors.NewServiceError("failed to write artifact file", "media", "download", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(filePath)
		return "", errors.NewServiceError("failed to close artifact file", "media", "download", err)
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return filePath, nil
	}
	return abs, nil
}

// artifactName derives a stable file name from the media URL so repeated
// downloads of the same resource overwrite rather than accumulate.
func artifactName(mediaURL, contentType string) string {
	sum := sha1.Sum([]byte(mediaURL))
	name := hex.EncodeToString(sum[:])[:16]

	ext := ""
	if parsed, err := url.Parse(mediaURL); err == nil {
		ext = path.Ext(parsed.Path)
	}
	if ext == "" {
		switch {
		case strings.HasPrefix(contentType, "video/"):
			ext = ".mp4"
		case contentType == "image/png":
			ext = ".png"
		case strings.HasPrefix(contentType, "image/"):
			ext = ".jpg"
		case strings.HasPrefix(contentType, "audio/"):
			ext = ".mp3"
		default:
			ext = ".bin"
		}
	}

	return name + ext
}
