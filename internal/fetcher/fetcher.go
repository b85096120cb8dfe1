package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultTimeout is the default timeout for a single fetch attempt
	DefaultTimeout = 15 * time.Second

	// DefaultMaxTries is the default number of attempts for transient failures
	DefaultMaxTries = 2

	// MaxResponseSize is the maximum allowed response size (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 5 * time.Second
)

// Fetcher is an interface for retrieving a document or resource by reference
type Fetcher interface {
	// Fetch retrieves the raw bytes behind ref, which may be an HTTP(S) URL,
	// a file:// URL, or a bare local filesystem path
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Options configures a default fetcher
type Options struct {
	// Timeout bounds a single attempt; 0 means DefaultTimeout
	Timeout time.Duration

	// MaxTries bounds attempts for transient failures; 0 means DefaultMaxTries
	MaxTries int
}

// defaultFetcher is the default Fetcher implementation
type defaultFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxTries int
}

var _ Fetcher = (*defaultFetcher)(nil)

// New creates a fetcher with the given options
func New(opts Options) Fetcher {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxTries := opts.MaxTries
	if maxTries == 0 {
		maxTries = DefaultMaxTries
	}

	return &defaultFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout:  timeout,
		maxTries: maxTries,
	}
}

// Fetch retrieves the raw bytes behind ref
func (f *defaultFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("ref cannot be empty")
	}

	if isLocalRef(ref) {
		return fetchLocal(ref)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = retryBaseDelay
	expo.MaxInterval = retryMaxDelay

	start := time.Now()
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return f.fetchHTTP(ctx, ref)
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(uint(f.maxTries)))
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetched resource",
		"ref", ref,
		"bytes", len(body),
		"duration", time.Since(start).String())
	return body, nil
}

// fetchHTTP performs one HTTP GET attempt. Transient failures (network
// errors, 5xx, 429) are returned as-is so the retry policy can act on them;
// everything else is wrapped in backoff.Permanent.
func (f *defaultFetcher) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, backoff.Permanent(NewUnreachableError(ref, 0, err))
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(NewUnreachableError(ref, 0, ctx.Err()))
		}
		// Connection resets and timeouts are worth a retry
		return nil, NewUnreachableError(ref, 0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		fetchErr := NewUnreachableError(ref, resp.StatusCode, nil)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fetchErr
		}
		// 4xx is permanent, retrying will not change the answer
		return nil, backoff.Permanent(fetchErr)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf(
			"response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize))
	}

	// +1 to detect if the limit was exceeded
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, NewUnreachableError(ref, 0, err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf(
			"response size exceeds maximum allowed size of %d bytes", MaxResponseSize))
	}

	return body, nil
}

// fetchLocal reads a file:// URL or bare filesystem path
func fetchLocal(ref string) ([]byte, error) {
	path := ref
	if strings.HasPrefix(ref, "file://") {
		parsed, err := url.Parse(ref)
		if err != nil {
			return nil, NewUnreachableError(ref, 0, err)
		}
		path = parsed.Path
	}

	//nolint:gosec // Paths come from user configuration, this is expected behavior
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, NewUnreachableError(ref, 0, err)
	}
	return data, nil
}

// isLocalRef reports whether ref points at the local filesystem
func isLocalRef(ref string) bool {
	if strings.HasPrefix(ref, "file://") {
		return true
	}
	return !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}

// IsUnreachable reports whether err is an UnreachableError
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}
