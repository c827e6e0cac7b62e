package watcher

import (
	"sync"
	"time"
)

// EventType represents the kind of change seen on a watched file
type EventType int

const (
	EventModify EventType = iota
	EventRemove
)

func (e EventType) String() string {
	switch e {
	case EventModify:
		return "MODIFY"
	case EventRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Event is a debounced file change
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Debouncer coalesces rapid change bursts per path. Editors typically
// save with several writes (or a remove/rename/create dance) in quick
// succession; consumers want one event per burst.
type Debouncer struct {
	delay  time.Duration
	events map[string]*pendingEvent
	mu     sync.Mutex
	output chan Event
	stopCh chan struct{}
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(delayMs int) *Debouncer {
	return &Debouncer{
		delay:  time.Duration(delayMs) * time.Millisecond,
		events: make(map[string]*pendingEvent),
		output: make(chan Event, 16),
		stopCh: make(chan struct{}),
	}
}

// Events returns the channel of debounced events
func (d *Debouncer) Events() <-chan Event {
	return d.output
}

// Add records a change to be debounced. Within a burst, REMOVE wins over
// MODIFY: the file being gone is the state that matters.
func (d *Debouncer) Add(path string, eventType EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stopCh:
		return
	default:
	}

	event := Event{
		Path:      path,
		Type:      eventType,
		Timestamp: time.Now(),
	}

	if pending, exists := d.events[path]; exists {
		pending.timer.Stop()
		if eventType == EventRemove {
			pending.event.Type = EventRemove
		} else if pending.event.Type != EventRemove {
			pending.event.Type = eventType
		}
		pending.event.Timestamp = event.Timestamp
		pending.timer = time.AfterFunc(d.delay, func() {
			d.emit(path)
		})
	} else {
		d.events[path] = &pendingEvent{
			event: event,
			timer: time.AfterFunc(d.delay, func() {
				d.emit(path)
			}),
		}
	}
}

// emit sends an event to the output channel
func (d *Debouncer) emit(path string) {
	d.mu.Lock()
	pending, exists := d.events[path]
	if exists {
		delete(d.events, path)
	}
	d.mu.Unlock()

	if exists {
		select {
		case d.output <- pending.event:
		case <-d.stopCh:
		}
	}
}

// Flush immediately emits all pending events
func (d *Debouncer) Flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.events))
	for path, pending := range d.events {
		pending.timer.Stop()
		paths = append(paths, path)
	}
	d.mu.Unlock()

	for _, path := range paths {
		d.emit(path)
	}
}

// Stop stops the debouncer and discards pending events
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	for _, pending := range d.events {
		pending.timer.Stop()
	}
	d.events = make(map[string]*pendingEvent)
	d.mu.Unlock()

	close(d.output)
}

// PendingCount returns the number of pending events
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}
