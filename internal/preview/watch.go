package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jcreekmore/rustache/internal/workspace"
)

// debounceInterval coalesces the event bursts editors produce on save.
const debounceInterval = 100 * time.Millisecond

// Watch invokes onChange, debounced, whenever a workspace input changes.
// It blocks until ctx is cancelled.
func Watch(ctx context.Context, ws *workspace.Workspace, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range ws.WatchPaths() {
		if err := watchPath(watcher, path); err != nil {
			logger.Error("failed to watch path", "path", path, "error", err)
			// Don't fail - continue without watching this path
		}
	}

	filter := newChangeFilter(ws.Config())

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			// Editors that replace files on save emit Rename or Remove.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !filter.relevant(event.Name) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				logger.Debug("file changed", "file", name)
				onChange()
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}

// changeFilter decides which file events invalidate a render. Files are
// watched through their parent directories, so sibling noise arrives too.
type changeFilter struct {
	files       map[string]bool
	partialsDir string
	partialExt  string
}

func newChangeFilter(cfg workspace.Config) *changeFilter {
	files := make(map[string]bool)
	for _, f := range []string{cfg.TemplateFile, cfg.DataFile, cfg.ScriptFile} {
		if f != "" {
			files[filepath.Clean(f)] = true
		}
	}

	f := &changeFilter{files: files, partialExt: cfg.PartialExt}
	if cfg.PartialsDir != "" {
		f.partialsDir = filepath.Clean(cfg.PartialsDir)
	}
	return f
}

func (f *changeFilter) relevant(name string) bool {
	cleaned := filepath.Clean(name)
	if f.files[cleaned] {
		return true
	}
	if f.partialsDir != "" && strings.HasPrefix(cleaned, f.partialsDir+string(filepath.Separator)) {
		return filepath.Ext(cleaned) == f.partialExt
	}
	return false
}

// watchPath registers a file or directory with the watcher. Files are
// watched through their parent directory so editors that replace on
// save keep working.
func watchPath(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return watchDirRecursive(watcher, path)
	}
	return watcher.Add(filepath.Dir(path))
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
