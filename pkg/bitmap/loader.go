// Package bitmap provides the default bitmap loader for image nodes.
//
// A [Loader] resolves these references:
//
//	logo.png                    file, relative to the loader's base directory
//	file:///srv/assets/logo.png absolute file URL
//	https://cdn.example/a.webp  remote, rate limited and optionally disk cached
//	data:image/png;base64,...   inline
//
// Decoded bitmaps are kept in an in-memory [Cache] keyed by reference.
package bitmap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxBytes bounds the encoded size of one bitmap.
const DefaultMaxBytes = 8 << 20

// ErrTooLarge is returned when a bitmap exceeds the loader's size limit.
var ErrTooLarge = errors.New("bitmap exceeds size limit")

// Loader loads bitmaps from files, remote URLs and data URIs.
// It is safe for concurrent use.
type Loader struct {
	baseDir  string
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
	cache    *Cache
	diskDir  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithBaseDir resolves relative file references against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithHTTPClient sets the client used for remote references.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithRateLimit limits remote fetches to rps requests per second with the
// given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(l *Loader) {
		if rps <= 0 {
			l.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBytes bounds the encoded size of a bitmap.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithCache shares a memory cache between loaders. Pass nil to disable
// caching.
func WithCache(c *Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// WithDiskCache stores remote bitmaps under dir so later runs skip the
// network.
func WithDiskCache(dir string) Option {
	return func(l *Loader) { l.diskDir = dir }
}

// NewLoader creates a loader with a 30 second HTTP timeout, a private memory
// cache and no rate limit.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		cache:    NewCache(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves ref to a decoded bitmap.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, errors.New("bitmap: empty reference")
	}
	return l.cache.Get(ref, func() (image.Image, error) {
		data, err := l.read(ctx, ref)
		if err != nil {
			return nil, err
		}
		img, _, err := Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		return img, nil
	})
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err := parseDataURI(ref)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > l.maxBytes {
			return nil, ErrTooLarge
		}
		return data, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		return l.readFile(strings.TrimPrefix(ref, "file://"))
	case strings.Contains(ref, "://"):
		return nil, fmt.Errorf("bitmap: unsupported scheme in %q", ref)
	default:
		path := ref
		if !filepath.IsAbs(path) && l.baseDir != "" {
			path = filepath.Join(l.baseDir, path)
		}
		return l.readFile(path)
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bitmap: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read bitmap: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	cachePath := l.diskPath(url)
	if cachePath != "" {
		if data, err := l.readFile(cachePath); err == nil {
			return data, nil
		}
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: %s returned %s", url, resp.Status)
	}
	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		// A failed cache write leaves the fetched bitmap usable.
		_ = writeAtomic(cachePath, data)
	}
	return data, nil
}

// diskPath names the disk cache entry for url, or "" without a disk cache.
func (l *Loader) diskPath(url string) string {
	if l.diskDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(l.diskDir, hex.EncodeToString(sum[:]))
}

// writeAtomic writes data to a temp file next to path and renames it into
// place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".bitmap-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
