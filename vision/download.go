package vision

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Downloader fetches and decodes gallery images over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a Downloader with a bounded request timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads one image URL and decodes it. A non-200 response or a
// decode failure is an error; callers treat it as "no candidate region for
// this image" rather than a pipeline failure.
func (d *Downloader) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download: build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %d for %s", resp.StatusCode, url)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download: decode %s: %w", url, err)
	}
	return img, nil
}
