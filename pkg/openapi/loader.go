package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// LoaderOptions configures how a Loader resolves sources. HTTP is disabled
// unless a client or the fallback is configured.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem serves SourceKindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects the client used for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// Loader fetches raw OpenAPI documents from files, an fs.FS or HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var client *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if cfg.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = cfg.RequestTimeout
		}
		client = &clone
	case cfg.AllowHTTPFallback:
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Loader{fs: cfg.FileSystem, http: client, timeout: cfg.RequestTimeout}
}

// Load returns the raw document behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("openapi loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("openapi loader: http support disabled")
		}
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("openapi loader: load %s: %w", src.Location(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openapi loader: %s is empty", src.Location())
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
