// Package resource retrieves suite resources (the manifest, test templates and their
// dependencies) by relative URI, keeping a local copy of everything it downloads.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/lxsc/irp-harness/framework"
)

const (
	DefaultBaseURL  = "http://www.w3.org/Voice/2013/SCXML-irp/"
	DefaultCacheDir = "spec-cache"
)

// Resolver returns the bytes of a resource given its URI relative to the suite base.
type Resolver interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPError is returned when the server answers with a non-2xx status.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP status %d", e.URL, e.Status)
}

var errNotLocal = errors.New("resource path is not local to the suite")

// CachingResolver downloads resources from a base URL and stores each one under a cache
// directory at the same relative path. A cached copy is always preferred, so after the
// first run the suite works offline.
type CachingResolver struct {
	base     *url.URL
	cacheDir string
	client   *http.Client
	logger   framework.Logger
}

// Option customizes a CachingResolver.
type Option func(*CachingResolver)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(r *CachingResolver) { r.client = c }
}

// WithLogger sets the logger for cache and download activity.
func WithLogger(l framework.Logger) Option {
	return func(r *CachingResolver) { r.logger = l }
}

// NewCachingResolver creates a resolver. baseURL must be absolute; a trailing slash is
// added if missing so that relative URIs resolve below it.
func NewCachingResolver(baseURL, cacheDir string, opts ...Option) (*CachingResolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}
	r := &CachingResolver{
		base:     base,
		cacheDir: cacheDir,
		client:   http.DefaultClient,
		logger:   framework.NullLogger(),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// CachePath returns where the resource for uri is stored.
func (r *CachingResolver) CachePath(uri string) (string, error) {
	p := filepath.FromSlash(uri)
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("%q: %w", uri, errNotLocal)
	}
	return filepath.Join(r.cacheDir, p), nil
}

// Fetch returns the resource, downloading and caching it on first use.
func (r *CachingResolver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	path, err := r.CachePath(uri)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err == nil {
		r.logger.Printf("Using cached %s", uri)
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err = r.download(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return nil, fmt.Errorf("cannot cache %s: %w", uri, err)
	}
	return data, nil
}

func (r *CachingResolver) download(ctx context.Context, uri string) ([]byte, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	target := r.base.ResolveReference(ref).String()
	r.logger.Printf("Downloading %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: target, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
