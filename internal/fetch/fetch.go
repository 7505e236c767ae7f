// Package fetch loads the JSON data sources panes render from.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// Fetcher decodes the JSON document at url into v.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// HTTPFetcher resolves data URLs against a base URL and always bypasses
// caches so edits to the data files show up on the next page load.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. Relative data URLs are resolved
// against baseURL.
func NewHTTPFetcher(baseURL string) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &HTTPFetcher{
		base: base,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// FetchJSON implements Fetcher.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, rawURL string, v any) error {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to load JSON: %s (%w)", rawURL, err)
	}
	target := f.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to load JSON: %s (%w)", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load JSON: %s (%w)", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to load JSON: %s (%d)", rawURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

// FSFetcher reads data URLs as paths inside a file system. It stands in for
// the page's origin when rendering without a server.
type FSFetcher struct {
	FS fs.FS
}

// NewDirFetcher returns an FSFetcher rooted at dir.
func NewDirFetcher(dir string) FSFetcher {
	return FSFetcher{FS: os.DirFS(dir)}
}

// FetchJSON implements Fetcher.
func (f FSFetcher) FetchJSON(ctx context.Context, rawURL string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to load JSON: %s (%w)", rawURL, err)
	}
	name := strings.TrimPrefix(path.Clean("/"+ref.Path), "/")
	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load JSON: %s (%d)", rawURL, http.StatusNotFound)
		}
		return fmt.Errorf("failed to load JSON: %s (%w)", rawURL, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}
