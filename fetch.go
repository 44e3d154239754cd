package docspdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
)

// maxResourceSize bounds a fetched resource (32 MB).
const maxResourceSize = 32 << 20

// HTTPFetcher fetches resources over HTTP(S), from file:// URLs or from local
// paths. Transient HTTP failures are retried.
type HTTPFetcher struct {
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
}

// NewHTTPFetcher returns a fetcher with a 30 second client timeout and three
// attempts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Attempts: 3,
		Delay:    250 * time.Millisecond,
	}
}

// Fetch implements [Fetcher].
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("docspdf: invalid resource URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "file":
		return readFileResource(u.Path)
	case "":
		return readFileResource(rawURL)
	default:
		// Windows drive letters parse as a one letter scheme.
		if len(u.Scheme) == 1 {
			return readFileResource(rawURL)
		}
		return nil, fmt.Errorf("docspdf: unsupported resource scheme %q", u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, rawURL string) (*Resource, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	attempts := f.Attempts
	if attempts == 0 {
		attempts = 1
	}

	var res *Resource
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("status %d", resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("status %d", resp.StatusCode))
			}
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
			if err != nil {
				return err
			}
			res = &Resource{Data: data, ContentType: resp.Header.Get("Content-Type")}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(f.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("docspdf: fetching %s: %w", rawURL, err)
	}
	return res, nil
}

func readFileResource(path string) (*Resource, error) {
	if path == "" {
		return nil, errors.New("docspdf: empty resource path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docspdf: reading %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &Resource{Data: data, ContentType: ct}, nil
}
