package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gekko3d/rtaccel"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli"
)

// Rebuild a scene every time the scene file or one of its OBJ files changes.
func WatchScene(ctx *cli.Context) error {
	path, err := sceneArg(ctx)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rebuild := func(ctx context.Context) []string {
		scene, res, err := e.build(ctx, path)
		if err != nil {
			e.logger.Errorf("build failed: %v", err)
			if scene != nil {
				return scene.Files
			}
			return []string{path}
		}
		if _, err := writeArtefacts(e.cfg.Output.Dir, scene, res); err != nil {
			e.logger.Errorf("writing %s: %v", e.cfg.Output.Dir, err)
		}
		return scene.Files
	}

	w, err := newWatcher(e.cfg.Watch.Debounce, rebuild, e.logger)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(sigCtx)
}

// watcher calls rebuild once at start and again after every burst of
// changes to the files the previous rebuild returned. Directories are
// watched rather than files so editors that replace files are seen too.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	rebuild  func(ctx context.Context) []string
	logger   rtaccel.Logger

	files map[string]bool
	dirs  map[string]bool
}

func newWatcher(debounce time.Duration, rebuild func(ctx context.Context) []string, logger rtaccel.Logger) (*watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fs:       fsWatch,
		debounce: debounce,
		rebuild:  rebuild,
		logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

func (w *watcher) Run(ctx context.Context) error {
	w.track(w.rebuild(ctx))

	// Non-nil while a rebuild is pending.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debugf("%s changed (%s)", event.Name, event.Op)
			pending = time.After(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watch error: %v", err)
		case <-pending:
			pending = nil
			w.logger.Infof("rebuilding")
			w.track(w.rebuild(ctx))
		}
	}
}

func (w *watcher) track(files []string) {
	w.files = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		w.files[filepath.Clean(abs)] = true
		w.files[filepath.Clean(f)] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Warnf("cannot watch %s: %v", dir, err)
			continue
		}
		w.dirs[dir] = true
	}
}
