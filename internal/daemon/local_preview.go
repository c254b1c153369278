package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/config"
	derrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

const debounceDelay = 300 * time.Millisecond

// StartLocalPreview serves the page and rebuilds it whenever a file under the
// source directory changes. It blocks until ctx is canceled.
func StartLocalPreview(ctx context.Context, cfg *config.Config, opts Options) error {
	absDocs, err := validateAndResolveDocsDir(cfg)
	if err != nil {
		return err
	}

	watcher, err := setupFileWatcher(absDocs)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	rt, err := newRuntime(cfg, opts, cfg.Preview.LiveReload, false)
	if err != nil {
		return err
	}
	if err := rt.start(ctx); err != nil {
		return err
	}
	slog.Info("Preview server listening",
		logfields.URL("http://"+rt.srv.Addr()),
		logfields.Path(absDocs),
		slog.Bool("live_reload", cfg.Preview.LiveReload))

	trigger, stopDebounce := setupRebuildDebouncer(func() {
		rt.queue.Enqueue(build.TriggerWatch)
	})
	defer stopDebounce()

	return runPreviewLoop(ctx, watcher, trigger, rt)
}

// validateAndResolveDocsDir validates and resolves the absolute path of the docs directory.
func validateAndResolveDocsDir(cfg *config.Config) (string, error) {
	if cfg.Source.Repository != nil {
		return "", derrors.ConfigError("preview watches a local directory; use serve for repository sources").
			WithContext("url", cfg.Source.Repository.URL).
			UserAction().
			Build()
	}
	absDocs, err := filepath.Abs(cfg.Source.Dir)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryFileSystem, "resolve docs dir").Build()
	}
	if st, statErr := os.Stat(absDocs); statErr != nil || !st.IsDir() {
		return "", derrors.NewError(derrors.CategoryNotFound, "docs dir not found or not a directory").
			WithContext("dir", absDocs).
			UserAction().
			Build()
	}
	return absDocs, nil
}

// setupFileWatcher creates and configures the filesystem watcher.
func setupFileWatcher(absDocs string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, absDocs); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// setupRebuildDebouncer returns a trigger that calls fire once events have
// been quiet for debounceDelay, and a stop function for shutdown.
func setupRebuildDebouncer(fire func()) (trigger func(), stop func()) {
	var mu sync.Mutex
	var timer *time.Timer
	stopped := false

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, fire)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

// runPreviewLoop handles filesystem events and graceful shutdown.
func runPreviewLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), rt *runtime) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server...")
			rt.stop()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				rt.stop()
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				rt.stop()
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// handleFileEvent processes a filesystem event and triggers rebuild if needed.
func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// addDirsRecursive watches root and every non-hidden directory below it.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including .DS_Store and emacs .# lock files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
