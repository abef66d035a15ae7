package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"photopost/common"
)

// DefaultDebounce is how long the folder has to stay quiet before a change
// is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a photo folder for image changes
type Watcher struct {
	dir        string
	extensions []string
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	events     chan Event
	done       chan struct{}
}

// Event represents a file system event
type Event struct {
	Type     EventType
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
	EventRenamed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	}
	return "unknown"
}

// NewWatcher creates a watcher for images with one of extensions in dir.
func NewWatcher(dir string, extensions []string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:        dir,
		extensions: extensions,
		debounce:   debounce,
		watcher:    fsWatcher,
		events:     make(chan Event, 100),
		done:       make(chan struct{}),
	}, nil
}

// Start begins monitoring the folder
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	common.Logger().Info().Msgf("👀 Watching folder: %s", w.dir)

	go w.processEvents()
	return nil
}

// processEvents collapses bursts of fsnotify events into one Event, sent
// once the folder has been quiet for the debounce period.
func (w *Watcher) processEvents() {
	defer close(w.events)

	var pending *Event
	var quiet <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			ev, relevant := w.convert(event)
			if !relevant {
				continue
			}
			pending = &ev
			quiet = time.After(w.debounce)

		case <-quiet:
			quiet = nil
			if pending == nil {
				continue
			}
			select {
			case w.events <- *pending:
			case <-w.done:
				return
			}
			pending = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Error().Err(err).Msg("Watcher error")
		}
	}
}

// convert filters and translates an fsnotify event
func (w *Watcher) convert(event fsnotify.Event) (Event, bool) {
	name := filepath.Base(event.Name)

	// Skip temp files
	if name == "" || name[0] == '.' {
		return Event{}, false
	}
	if !common.HasImageExtension(name, w.extensions) {
		return Event{}, false
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreated
	case event.Has(fsnotify.Write):
		eventType = EventModified
	case event.Has(fsnotify.Remove):
		eventType = EventDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventRenamed
	default:
		return Event{}, false // Ignore chmod
	}

	common.Logger().Debug().Str("file", event.Name).Stringer("type", eventType).Msg("photo folder changed")
	return Event{Type: eventType, FilePath: event.Name}, true
}

// Events returns the debounced event channel. It is closed after Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run starts the watcher and calls onChange for every debounced event,
// one at a time, until ctx is cancelled. The watcher is stopped when Run
// returns, including when it fails to start.
func (w *Watcher) Run(ctx context.Context, onChange func(Event)) error {
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			onChange(ev)
		}
	}
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.watcher.Close()
}
