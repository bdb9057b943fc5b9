// Package download fetches remote media files into local temporary storage.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/maauso/ffmpeg-api/internal/artifact"
)

// Static errors for download operations.
var (
	// ErrTempDirRequired is returned when the temp directory is not provided.
	ErrTempDirRequired = errors.New("download: temp directory is required")
	// ErrUnsupportedURL is returned for anything that is not an http(s) URL.
	ErrUnsupportedURL = errors.New("download: only http and https URLs are supported")
	// ErrTooLarge is returned when the remote file exceeds the size limit.
	ErrTooLarge = errors.New("download: remote file exceeds size limit")
	// ErrServerError is returned when the server responds with a 5xx status code.
	ErrServerError = errors.New("download: server error")
	// ErrRateLimited is returned when the server responds with a 429 status code.
	ErrRateLimited = errors.New("download: rate limited")
	// ErrRequestFailed is returned when the request fails in transit or with
	// an unexpected status code.
	ErrRequestFailed = errors.New("download: request failed")
)

var urlRe = regexp.MustCompile(`^https?://`)

// IsURL reports whether path is an HTTP or HTTPS URL.
func IsURL(path string) bool {
	return urlRe.MatchString(path)
}

// Fetcher downloads a remote file and returns the local path it was saved to.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher is the HTTP implementation of the Fetcher interface. Transient
// failures are retried with exponential backoff.
type HTTPFetcher struct {
	tempDir     string
	maxBytes    int64
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// FetcherOption is a function that configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.httpClient = c
	}
}

// WithMaxBytes caps the size of a downloaded file. Zero or negative disables
// the check.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBytes = n
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.baseBackoff = d
	}
}

// NewFetcher creates a new HTTPFetcher that saves downloads under tempDir.
// The directory is created if it does not exist.
func NewFetcher(tempDir string, opts ...FetcherOption) (*HTTPFetcher, error) {
	if tempDir == "" {
		return nil, ErrTempDirRequired
	}

	f := &HTTPFetcher{
		tempDir:     tempDir,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	if err := os.MkdirAll(f.tempDir, 0o750); err != nil {
		return nil, fmt.Errorf("download: create temp directory: %w", err)
	}

	return f, nil
}

// Fetch downloads url into the temp directory under a unique file name and
// returns the local path. Partial downloads are removed on failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if !IsURL(rawURL) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}

	dest := filepath.Join(f.tempDir, artifact.TempVideoName())

	var lastErr error
	backoff := f.baseBackoff

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("download: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		err := f.fetchOnce(ctx, rawURL, dest)
		if err == nil {
			return dest, nil
		}

		// Check if error is retryable
		if !isRetryable(err) {
			return "", err
		}

		lastErr = err
	}

	return "", fmt.Errorf("download: max retries exceeded: %w", lastErr)
}

// fetchOnce performs a single download attempt into dest.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("download: create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	// Handle non-2xx status codes
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		// 5xx errors are retryable
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, body)}
		}
		// 429 (rate limit) is retryable
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, body)}
		}
		// Other errors are not retryable
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, body)
	}

	// Reject oversized files early when the server announces the length
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	out, err := os.Create(dest) // #nosec G304 - dest is generated by this package
	if err != nil {
		return fmt.Errorf("download: create temp file: %w", err)
	}

	_, copyErr := copyLimited(out, resp.Body, f.maxBytes)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		// Drop the partial download
		_ = os.Remove(dest)
		if errors.Is(copyErr, ErrTooLarge) {
			return copyErr
		}
		return &retryableError{err: fmt.Errorf("%w: copy body: %w", ErrRequestFailed, copyErr)}
	}

	return nil
}

// copyLimited copies src to dst, failing with ErrTooLarge once more than
// limit bytes have been read. A non-positive limit disables the check.
func copyLimited(dst io.Writer, src io.Reader, limit int64) (int64, error) {
	if limit <= 0 {
		return io.Copy(dst, src)
	}

	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return n, nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
