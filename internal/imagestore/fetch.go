package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/wallproof/internal/constants"
)

// ErrNotFound is returned when an image does not exist at the given reference.
var ErrNotFound = errors.New("image not found")

// ErrTooLarge is returned when an image exceeds the read limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// maxRedirects is the number of redirect hops a fetch follows.
const maxRedirects = 1

// Fetcher downloads remote images with a fixed timeout, no retries and at
// most one redirect hop.
type Fetcher struct {
	client  *http.Client
	maxSize int64
}

// NewFetcher creates a Fetcher. A non-positive timeout selects the default.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = constants.DefaultFetchTimeoutMS * time.Millisecond
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirect", maxRedirects)
				}
				return nil
			},
		},
		maxSize: constants.MaxImageBufferSize,
	}
}

// Fetch performs a single GET and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := f.client.Do(req) //nolint:gosec // URL comes from a stored configuration record
	if err != nil {
		return nil, fmt.Errorf("could not fetch image: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return readLimited(resp.Body, f.maxSize)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// readErrorBody returns the first line of an error response body.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(b), "\n")
	return strings.TrimSpace(line)
}
