package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-drift/sdui/cmd/sdui/internal/cache"
	"github.com/go-drift/sdui/cmd/sdui/internal/config"
	"github.com/go-drift/sdui/pkg/bitmap"
	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/dsl"
	"github.com/go-drift/sdui/pkg/layout"
	"github.com/go-drift/sdui/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Render a layout to HTML",
		Long: `Build a layout document and write it as HTML.

Layouts may be YAML, JSON or the compact .sdui syntax. Defaults come from
sdui.yaml in the layout's directory or the nearest parent that has one.

Flags:
  -o, --out FILE     Write to FILE instead of stdout
  --data FILE        Bind the layout to data from FILE (YAML or JSON)
  --fragment         Write only the layout's markup, not a full page
  --title TITLE      Page title (default: the layout's file name)
  --minify           Minify the output
  --embed            Load images and embed them as data URIs
  --strict           Fail on unknown node types or attributes
  --async            Load images concurrently
  --max-depth N      Reject layouts nested deeper than N (0: unlimited)`,
		Usage: "sdui render <file> [-o FILE] [--data FILE] [--fragment] [--minify] [--embed] [--strict]",
		Run:   runRender,
	})
}

// renderOptions are the resolved settings for one render.
type renderOptions struct {
	input    string
	out      string
	dataFile string
	settings config.Resolved
}

func runRender(args []string) error {
	opts, err := parseRenderArgs("render", args)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderFile(&buf, opts); err != nil {
		return err
	}
	return writeOutput(opts.out, buf.Bytes())
}

// parseRenderArgs resolves sdui.yaml for the input file and applies flags on
// top of it.
func parseRenderArgs(name string, args []string) (*renderOptions, error) {
	opts := &renderOptions{}
	var flags []func(*config.Resolved)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "-o", "--out":
			v, err := value()
			if err != nil {
				return nil, err
			}
			opts.out = v
		case "--data":
			v, err := value()
			if err != nil {
				return nil, err
			}
			opts.dataFile = v
		case "--title":
			v, err := value()
			if err != nil {
				return nil, err
			}
			flags = append(flags, func(r *config.Resolved) { r.Title = v })
		case "--max-depth":
			v, err := value()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("--max-depth expects a non-negative integer, got %q", v)
			}
			flags = append(flags, func(r *config.Resolved) { r.MaxDepth = n })
		case "--fragment":
			flags = append(flags, func(r *config.Resolved) { r.Document = false })
		case "--minify":
			flags = append(flags, func(r *config.Resolved) { r.Minify = true })
		case "--embed":
			flags = append(flags, func(r *config.Resolved) { r.EmbedBitmaps = true })
		case "--strict":
			flags = append(flags, func(r *config.Resolved) { r.Strict = true })
		case "--async":
			flags = append(flags, func(r *config.Resolved) { r.Synchronous = false })
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %q", arg)
			}
			if opts.input != "" {
				return nil, fmt.Errorf("%s takes one layout file, got %q and %q", name, opts.input, arg)
			}
			opts.input = arg
		}
	}

	if opts.input == "" {
		return nil, fmt.Errorf("layout file is required\n\nUsage: sdui %s <file>", name)
	}

	root, err := config.FindProjectRoot(filepath.Dir(opts.input))
	if err != nil {
		return nil, err
	}
	settings, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}
	for _, apply := range flags {
		apply(settings)
	}
	if settings.Title == "" {
		base := filepath.Base(opts.input)
		settings.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	opts.settings = *settings
	return opts, nil
}

// loadDocument decodes a layout file by extension: .sdui files use the
// compact syntax, everything else is YAML or JSON.
func loadDocument(path string) (*layout.Document, error) {
	if filepath.Ext(path) == ".sdui" {
		return dsl.Load(path)
	}
	return layout.DecodeFile(path)
}

// newBuilder creates a toolkit builder for the settings. Images are only
// loaded when they will be embedded.
func newBuilder(s *config.Resolved, baseDir string, listener core.Listener) (*core.LayoutBuilder, error) {
	opts := []core.Option{
		core.WithListener(listener),
		core.WithSynchronousRendering(s.Synchronous),
		core.WithMaxDepth(s.MaxDepth),
		core.WithBitmapTimeout(s.BitmapTimeout),
	}
	if s.EmbedBitmaps {
		dir := s.CacheDir
		if dir == "" {
			var err error
			if dir, err = cache.BitmapDir(); err != nil {
				return nil, err
			}
		}
		loader := bitmap.NewLoader(
			bitmap.WithBaseDir(baseDir),
			bitmap.WithRateLimit(s.RequestsPerSecond, s.Burst),
			bitmap.WithMaxBytes(s.MaxBytes),
			bitmap.WithDiskCache(dir),
		)
		opts = append(opts, core.WithBitmapLoader(loader))
	}
	return widgets.NewBuilder(nil, opts...), nil
}

// renderFile builds the input layout and writes its HTML to w.
func renderFile(w io.Writer, opts *renderOptions) error {
	s := &opts.settings

	doc, err := loadDocument(opts.input)
	if err != nil {
		return err
	}
	if err := s.CheckDocument(doc); err != nil {
		return fmt.Errorf("%s: %w", opts.input, err)
	}

	data := doc.Data
	if opts.dataFile != "" {
		raw, err := os.ReadFile(opts.dataFile)
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
		if data, err = layout.DecodeData(raw); err != nil {
			return fmt.Errorf("%s: %w", opts.dataFile, err)
		}
	}

	listener := &widgets.PlaceholderListener{Strict: s.Strict}
	b, err := newBuilder(s, filepath.Dir(opts.input), listener)
	if err != nil {
		return err
	}

	root, err := b.Build(nil, doc.Layout, data, 0, doc.Styles)
	b.WaitBitmaps()
	if err != nil {
		return fmt.Errorf("%s: %w", opts.input, err)
	}
	if s.Strict && listener.Count() > 0 {
		return unknownContentError(opts.input, listener)
	}

	return widgets.Render(w, root, widgets.RenderOptions{
		Document:     s.Document,
		Title:        s.Title,
		EmbedBitmaps: s.EmbedBitmaps,
		Minify:       s.Minify,
	})
}

func unknownContentError(path string, l *widgets.PlaceholderListener) error {
	var parts []string
	if types := l.UnknownTypes(); len(types) > 0 {
		parts = append(parts, "unknown types: "+strings.Join(types, ", "))
	}
	if attrs := l.UnknownAttributes(); len(attrs) > 0 {
		parts = append(parts, "unknown attributes: "+strings.Join(attrs, ", "))
	}
	return fmt.Errorf("%s: %s", path, strings.Join(parts, "; "))
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
