// Package fetch ensures the data files the router loads at startup are
// present locally, downloading them from remote storage when missing.
// Failures here are fatal to startup; nothing in the query path touches it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fetcher downloads files over HTTP with exponential backoff.
type Fetcher struct {
	client     *http.Client
	maxElapsed time.Duration
}

// New creates a Fetcher. maxElapsed bounds the total retry window per file.
func New(maxElapsed time.Duration) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: 5 * time.Minute},
		maxElapsed: maxElapsed,
	}
}

// EnsureFile makes sure path exists, downloading it from url if missing.
// The download goes to a temp file and is renamed into place only when
// complete, so a crashed download never leaves a truncated file that a later
// startup would trust.
func (f *Fetcher) EnsureFile(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}

	log.Printf("Downloading %s from %s...", filepath.Base(path), url)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.maxElapsed

	op := func() error {
		return f.download(ctx, url, path)
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}

	log.Printf("Downloaded %s.", filepath.Base(path))
	return nil
}

func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// proceed
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("server returned %s", resp.Status)
	default:
		// 4xx other than 429 will not get better by retrying.
		return backoff.Permanent(fmt.Errorf("server returned %s", resp.Status))
	}

	tmpPath := path + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer func() {
		out.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
