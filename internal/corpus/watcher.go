package corpus

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reports when documents in an indexed corpus change on disk, which
// makes the backend's index stale.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      *log.Logger
	debounce time.Duration

	mu   sync.Mutex
	root string

	changes chan string
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts a watcher with the given debounce. A non-positive
// debounce uses the default.
func NewWatcher(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &Watcher{
		fs:       fw,
		log:      logger,
		debounce: debounce,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch replaces the watched corpus with root. An empty root stops
// watching.
func (w *Watcher) Watch(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if root != "" {
		root = filepath.Clean(root)
	}
	if root == w.root {
		return nil
	}
	if w.root != "" {
		if err := w.fs.Remove(w.root); err != nil {
			w.log.Debug("unwatch corpus", "path", w.root, "error", err)
		}
		w.root = ""
	}
	if root == "" {
		return nil
	}
	if err := w.fs.Add(root); err != nil {
		return err
	}
	w.root = root
	w.log.Debug("watching corpus", "path", root)
	return nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root
}

// Changes delivers the corpus root after a debounced burst of document
// changes.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	var (
		pending   bool
		lastEvent time.Time
	)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pending = true
			lastEvent = time.Now()
			w.log.Debug("corpus event", "op", event.Op, "path", event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("corpus watcher error", "error", err)

		case <-ticker.C:
			if !pending || time.Since(lastEvent) < w.debounce {
				continue
			}
			pending = false
			root := w.Root()
			if root == "" {
				continue
			}
			select {
			case w.changes <- root:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return false
	}
	root := w.Root()
	if root == "" || filepath.Dir(event.Name) != root {
		return false
	}
	return Supported(event.Name)
}
