// Package etl builds the occupation dataset artifacts: it downloads the BLS
// OEWS wage statistics and the O*NET occupation database, parses and merges
// them into the occupation table, builds the title index, and validates both
// artifacts before they are published for the matcher to consume.
package etl

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the per-request timeout for dataset downloads. The OEWS
// archive is tens of megabytes, so this is deliberately generous.
const DefaultTimeout = 5 * time.Minute

// DefaultUserAgent identifies the ETL client to the dataset hosts.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobEvalETL/1.0)"

// Source names one remote file to download and where to put it.
type Source struct {
	Name string
	URL  string
	Dest string
}

// Downloader fetches dataset files with retry and backoff.
type Downloader struct {
	client    *http.Client
	retry     RetryConfig
	userAgent string
}

// NewDownloader returns a Downloader with default timeout and retry policy.
func NewDownloader() *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: DefaultTimeout},
		retry:     DefaultRetryConfig,
		userAgent: DefaultUserAgent,
	}
}

// Fetch retrieves a URL into memory, retrying transient failures.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	return retryDo(ctx, d.retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
		}
		req.Header.Set("User-Agent", d.userAgent)

		resp, err := d.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			// Drain so the connection can be reused across retries.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}

		return io.ReadAll(resp.Body)
	})
}

// Download retrieves a URL to a file on disk. The file is written atomically
// via a temp file so a failed download never leaves a partial artifact.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	data, err := d.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", tmp, err)
	}

	return nil
}

// DownloadAll fetches all sources concurrently. The first failure cancels
// the remaining downloads.
func (d *Downloader) DownloadAll(ctx context.Context, sources []Source) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, src := range sources {
		g.Go(func() error {
			log.Printf("[etl] downloading %s from %s", src.Name, src.URL)
			if err := d.Download(ctx, src.URL, src.Dest); err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			log.Printf("[etl] downloaded %s to %s", src.Name, src.Dest)
			return nil
		})
	}

	return g.Wait()
}
