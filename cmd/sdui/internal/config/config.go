package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/sdui/pkg/bitmap"
	"github.com/go-drift/sdui/pkg/layout"
)

// FileName is the optional project configuration file.
const FileName = "sdui.yaml"

// DefaultBitmapTimeout bounds a single bitmap load when sdui.yaml sets none.
const DefaultBitmapTimeout = 10 * time.Second

// Config represents the optional sdui.yaml configuration.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Bitmaps BitmapConfig  `yaml:"bitmaps"`
	Schema  SchemaConfig  `yaml:"schema"`
}

// RenderConfig contains build and output settings.
type RenderConfig struct {
	Synchronous  *bool  `yaml:"synchronous,omitempty"`
	Document     *bool  `yaml:"document,omitempty"`
	Minify       bool   `yaml:"minify,omitempty"`
	Strict       bool   `yaml:"strict,omitempty"`
	EmbedBitmaps bool   `yaml:"embedBitmaps,omitempty"`
	MaxDepth     int    `yaml:"maxDepth,omitempty"`
	Title        string `yaml:"title,omitempty"`
}

// BitmapConfig contains bitmap loading settings.
type BitmapConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
	Burst             int     `yaml:"burst,omitempty"`
	Timeout           string  `yaml:"timeout,omitempty"`
	MaxBytes          int64   `yaml:"maxBytes,omitempty"`
	CacheDir          string  `yaml:"cacheDir,omitempty"`
}

// SchemaConfig pins the newest layout version the project accepts.
type SchemaConfig struct {
	Version string `yaml:"version,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root string

	Synchronous  bool
	Document     bool
	Minify       bool
	Strict       bool
	EmbedBitmaps bool
	MaxDepth     int
	Title        string

	RequestsPerSecond float64
	Burst             int
	BitmapTimeout     time.Duration
	MaxBytes          int64
	// CacheDir is empty when sdui.yaml does not set one.
	CacheDir string

	SchemaVersion string
}

// LoadOptional reads sdui.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads sdui.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:              dir,
		Synchronous:       true,
		Document:          true,
		Minify:            cfg.Render.Minify,
		Strict:            cfg.Render.Strict,
		EmbedBitmaps:      cfg.Render.EmbedBitmaps,
		MaxDepth:          cfg.Render.MaxDepth,
		Title:             strings.TrimSpace(cfg.Render.Title),
		RequestsPerSecond: cfg.Bitmaps.RequestsPerSecond,
		Burst:             cfg.Bitmaps.Burst,
		BitmapTimeout:     DefaultBitmapTimeout,
		MaxBytes:          cfg.Bitmaps.MaxBytes,
		SchemaVersion:     layout.SchemaVersion,
	}
	if cfg.Render.Synchronous != nil {
		r.Synchronous = *cfg.Render.Synchronous
	}
	if cfg.Render.Document != nil {
		r.Document = *cfg.Render.Document
	}

	if r.MaxDepth < 0 {
		return nil, fmt.Errorf("render.maxDepth must not be negative, got %d", r.MaxDepth)
	}
	if r.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("bitmaps.requestsPerSecond must not be negative, got %v", r.RequestsPerSecond)
	}
	if r.Burst < 0 {
		return nil, fmt.Errorf("bitmaps.burst must not be negative, got %d", r.Burst)
	}
	if r.MaxBytes < 0 {
		return nil, fmt.Errorf("bitmaps.maxBytes must not be negative, got %d", r.MaxBytes)
	}
	if r.MaxBytes == 0 {
		r.MaxBytes = bitmap.DefaultMaxBytes
	}

	if t := strings.TrimSpace(cfg.Bitmaps.Timeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid bitmaps.timeout %q: %w", t, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("bitmaps.timeout must not be negative, got %s", d)
		}
		r.BitmapTimeout = d
	}

	if c := strings.TrimSpace(cfg.Bitmaps.CacheDir); c != "" {
		if !filepath.IsAbs(c) {
			c = filepath.Join(dir, c)
		}
		r.CacheDir = c
	}

	if v := strings.TrimSpace(cfg.Schema.Version); v != "" {
		if err := validateSchemaVersion(v); err != nil {
			return nil, err
		}
		r.SchemaVersion = semver.Canonical(canonicalize(v))
	}

	return r, nil
}

// CheckDocument rejects documents published at a version newer than the
// project's pinned schema.
func (r *Resolved) CheckDocument(doc *layout.Document) error {
	if doc == nil || doc.Version == "" {
		return nil
	}
	v := semver.Canonical(canonicalize(doc.Version))
	if v != "" && semver.Compare(v, r.SchemaVersion) > 0 {
		return fmt.Errorf("layout version %s is newer than the project schema %s", doc.Version, r.SchemaVersion)
	}
	return nil
}

// FindProjectRoot walks up from dir to the nearest directory holding
// sdui.yaml. It returns dir itself when there is none.
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for d := abs; ; {
		if _, err := os.Stat(filepath.Join(d, FileName)); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return abs, nil
		}
		d = parent
	}
}

func validateSchemaVersion(v string) error {
	if !semver.IsValid(canonicalize(v)) {
		return fmt.Errorf("invalid schema.version %q (expected semver like v1.2.0)", v)
	}
	if err := layout.CheckVersion(v); err != nil {
		return fmt.Errorf("schema.version: %w", err)
	}
	return nil
}

func canonicalize(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
