// Package imagestore resolves image references from configuration records
// into byte buffers, either from the local asset root or over HTTP.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/wallproof/internal/constants"
)

// ErrPathOutsideRoot is returned for local references escaping the asset root.
var ErrPathOutsideRoot = errors.New("path outside asset root")

// Reader reads an image reference into memory.
type Reader interface {
	ReadBuffer(ctx context.Context, ref string) ([]byte, error)
}

// Store reads images from a local root directory and remote URLs.
type Store struct {
	Root    string
	BaseURL string
	Fetcher *Fetcher
}

// NewStore creates a Store. An empty root disables local reads.
func NewStore(root, baseURL string, fetcher *Fetcher) *Store {
	if fetcher == nil {
		fetcher = NewFetcher(0)
	}
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/"), Fetcher: fetcher}
}

// ReadBuffer resolves ref: absolute http(s) URLs are fetched, anything else is
// read from Root and, when missing there, fetched relative to BaseURL.
func (s *Store) ReadBuffer(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if isRemote(ref) {
		return s.Fetcher.Fetch(ctx, ref)
	}

	if s.Root != "" {
		data, err := s.readLocal(ref)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) || s.BaseURL == "" {
			return nil, err
		}
	}
	if s.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s (no asset root or base URL)", ErrNotFound, ref)
	}
	return s.Fetcher.Fetch(ctx, s.BaseURL+"/"+strings.TrimLeft(ref, "/"))
}

func (s *Store) readLocal(ref string) ([]byte, error) {
	path, err := s.resolvePath(ref)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, ref)
	}
	if info.Size() > constants.MaxImageBufferSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is confined to the asset root
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// resolvePath maps ref under Root and rejects traversal.
func (s *Store) resolvePath(ref string) (string, error) {
	for _, part := range strings.Split(filepath.ToSlash(ref), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, ref)
		}
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset root: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(ref))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, ref)
	}
	return path, nil
}

func isRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HostMatcher returns a predicate reporting whether a URL is hosted on one of
// the given hosts or their subdomains.
func HostMatcher(hosts []string) func(string) bool {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, ".")
		if h != "" {
			normalized = append(normalized, h)
		}
	}
	return func(ref string) bool {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, h := range normalized {
			if host == h || strings.HasSuffix(host, "."+h) {
				return true
			}
		}
		return false
	}
}
