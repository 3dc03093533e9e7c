package state

import (
	"errors"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/nervous/internal/pathutil"
)

// DocumentChangedMsg reports that the open document changed on disk.
type DocumentChangedMsg struct {
	Path    string
	Removed bool
}

type WatcherErrMsg struct {
	Err error
}

// DocumentWatcher follows a single file. It watches the parent directory so
// that editors replacing the file through a rename are still seen.
type DocumentWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	path string
	dir  string
}

func NewDocumentWatcher() (*DocumentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &DocumentWatcher{
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Watch retargets the watcher at path. An empty path stops watching.
func (w *DocumentWatcher) Watch(path string) error {
	if w == nil {
		return nil
	}

	abs := pathutil.Absolute(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if abs == w.path {
		return nil
	}

	dir := ""
	if abs != "" {
		dir = filepath.Dir(abs)
	}

	if dir != w.dir {
		if w.dir != "" {
			_ = w.watcher.Remove(w.dir)
		}
		if dir != "" {
			if err := w.watcher.Add(dir); err != nil {
				w.path, w.dir = "", ""
				return err
			}
		}
	}

	w.path, w.dir = abs, dir
	return nil
}

func (w *DocumentWatcher) Path() string {
	if w == nil {
		return ""
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Start returns a command that blocks until the watched file changes. The
// receiver issues it again after each message.
func (w *DocumentWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if msg, ok := w.relevant(event); ok {
					return msg
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					return WatcherErrMsg{Err: err}
				}
			}
		}
	}
}

func (w *DocumentWatcher) relevant(event fsnotify.Event) (DocumentChangedMsg, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return DocumentChangedMsg{}, false
	}

	path := w.Path()
	if !pathutil.SamePath(event.Name, path) {
		return DocumentChangedMsg{}, false
	}

	removed := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
	return DocumentChangedMsg{Path: path, Removed: removed}, true
}

func (w *DocumentWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
	})

	if errors.Is(closeErr, fsnotify.ErrClosed) {
		return nil
	}
	return closeErr
}
