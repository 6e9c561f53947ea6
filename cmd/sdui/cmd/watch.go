package cmd

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/sdui/cmd/sdui/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "watch",
		Short: "Re-render a layout whenever it changes",
		Long: `Render a layout, then render it again every time the layout, its data
file or sdui.yaml changes. Takes the same flags as render.

Build errors are logged and the previous output is kept until the layout
renders again. Press Ctrl+C to stop.`,
		Usage: "sdui watch <file> -o FILE [render flags]",
		Run:   runWatch,
	})
}

var watchLog = log.New(os.Stderr, "[watch] ", log.LstdFlags)

func runWatch(args []string) error {
	opts, err := parseRenderArgs("watch", args)
	if err != nil {
		return err
	}

	rerender := func(changed string) error {
		if changed != "" {
			watchLog.Printf("%s changed", changed)
			// Re-resolve so sdui.yaml edits apply.
			fresh, err := parseRenderArgs("watch", args)
			if err != nil {
				return err
			}
			opts = fresh
		}
		var buf bytes.Buffer
		if err := renderFile(&buf, opts); err != nil {
			return err
		}
		if err := writeOutput(opts.out, buf.Bytes()); err != nil {
			return err
		}
		if opts.out != "" {
			watchLog.Printf("wrote %s", opts.out)
		}
		return nil
	}

	if err := rerender(""); err != nil {
		watchLog.Printf("render failed: %v", err)
	}

	paths := []string{opts.input}
	if opts.dataFile != "" {
		paths = append(paths, opts.dataFile)
	}
	if root, err := config.FindProjectRoot(filepath.Dir(opts.input)); err == nil {
		paths = append(paths, filepath.Join(root, config.FileName))
	}

	w, err := NewWatcher(paths, rerender)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.input, err)
	}
	w.Start()
	defer w.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Fprintln(stderr, "\nWatch stopped.")
	return nil
}

// Watcher calls onChange whenever one of a fixed set of files is written or
// recreated. Parent directories are watched so editors that replace files
// on save are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	onChange func(path string) error
	done     chan struct{}
}

// NewWatcher creates a watcher for paths. Files that do not exist yet are
// picked up once created.
func NewWatcher(paths []string, onChange func(string) error) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool),
		onChange: onChange,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !w.files[name] {
					continue
				}
				if err := w.onChange(event.Name); err != nil {
					watchLog.Printf("render failed: %v", err)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				watchLog.Printf("error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
