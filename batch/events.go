package batch

import (
	"sync"
	"time"
)

// EventType represents the type of batch run event.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventRunCompleted EventType = "run_completed"

	EventFileStarted EventType = "file_started"
	EventFileParsed  EventType = "file_parsed"
	EventFileFailed  EventType = "file_failed"
	EventFileWritten EventType = "file_written"
	EventFileCached  EventType = "file_cached"
)

// Event represents an observable batch event with typed data.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Emitter manages event listeners and dispatches events. Listeners are
// called synchronously in registration order.
type Emitter struct {
	mu        sync.RWMutex
	listeners []func(Event)
}

// NewEmitter creates a new Emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make([]func(Event), 0)}
}

// On registers a listener function to receive events.
func (e *Emitter) On(listener func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Emit dispatches an event to all registered listeners. A nil emitter
// discards events.
func (e *Emitter) Emit(event Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	listeners := make([]func(Event), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *Emitter) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// RunStartedEvent creates a run_started event.
func RunStartedEvent(dir string, fileCount int) Event {
	return Event{
		Type:      EventRunStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"dir":        dir,
			"file_count": fileCount,
		},
	}
}

// RunCompletedEvent creates a run_completed event.
func RunCompletedEvent(duration time.Duration, okCount, failCount int) Event {
	return Event{
		Type:      EventRunCompleted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"duration_ms":   duration.Milliseconds(),
			"ok_count":      okCount,
			"failure_count": failCount,
		},
	}
}

// FileStartedEvent creates a file_started event.
func FileStartedEvent(path string, index int) Event {
	return Event{
		Type:      EventFileStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":  path,
			"index": index,
		},
	}
}

// FileParsedEvent creates a file_parsed event.
func FileParsedEvent(path string, entityCount int, duration time.Duration) Event {
	return Event{
		Type:      EventFileParsed,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":         path,
			"entity_count": entityCount,
			"duration_ms":  duration.Milliseconds(),
		},
	}
}

// FileFailedEvent creates a file_failed event.
func FileFailedEvent(path string, err string) Event {
	return Event{
		Type:      EventFileFailed,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":  path,
			"error": err,
		},
	}
}

// FileWrittenEvent creates a file_written event.
func FileWrittenEvent(path, outPath string) Event {
	return Event{
		Type:      EventFileWritten,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":     path,
			"out_path": outPath,
		},
	}
}

// FileCachedEvent creates a file_cached event for a cache hit.
func FileCachedEvent(path string) Event {
	return Event{
		Type:      EventFileCached,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path": path,
		},
	}
}
