package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTreeURL = "https://api.github.com/repos/github/gitignore/git/trees/main?recursive=1"
	DefaultRawURL  = "https://raw.githubusercontent.com/github/gitignore/main"
	DefaultTimeout = 10 * time.Second

	userAgent = "gitignore-gen/1.0"

	maxTreeBytes = 16 << 20
	maxBodyBytes = 2 << 20
)

// Source is the remote side of the catalog as seen by the caches.
type Source interface {
	FetchTree(ctx context.Context) ([]byte, error)
	FetchRaw(ctx context.Context, path string) ([]byte, error)
}

// Client talks to the upstream catalog over HTTP.
type Client struct {
	TreeURL string
	RawURL  string
	HTTP    *http.Client
}

// NewClient builds a client with a finite per-request timeout. Empty URLs
// fall back to the public GitHub catalog.
func NewClient(treeURL, rawURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(treeURL) == "" {
		treeURL = DefaultTreeURL
	}
	if strings.TrimSpace(rawURL) == "" {
		rawURL = DefaultRawURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		TreeURL: treeURL,
		RawURL:  strings.TrimRight(rawURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchTree downloads the recursive tree listing.
func (c *Client) FetchTree(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.TreeURL, "application/vnd.github+json", maxTreeBytes)
}

// FetchRaw downloads the body of the template at catalog path (suffix-stripped).
func (c *Client) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	endpoint, err := c.RawURLFor(path)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, endpoint, "text/plain", maxBodyBytes)
}

// RawURLFor builds the raw content URL for a catalog path.
func (c *Client) RawURLFor(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", errors.New("empty catalog path")
	}
	segments := strings.Split(path+TemplateSuffix, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.RawURL + "/" + strings.Join(segments, "/"), nil
}

func (c *Client) get(ctx context.Context, endpoint, accept string, limit int64) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: unexpected status %s", endpoint, resp.Status)
	}

	// Read fully before returning so callers never persist a partial body.
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("read %s: response exceeds %d bytes", endpoint, limit)
	}
	return data, nil
}
