package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"daybook/internal/entity"
	"daybook/internal/linkage"
)

// EventStore is the store surface the calendar screen uses; moves go
// through the linkage synchronizer.
type EventStore interface {
	ListEvents(ctx context.Context, user string) ([]entity.Event, error)
	DeleteEvent(ctx context.Context, user, id string) error
}

// HolidaySource supplies synthetic holiday events for the merged calendar
// view.
type HolidaySource interface {
	Events(ctx context.Context, now time.Time) ([]entity.Event, error)
}

// Calendar is the calendar screen controller. Its cache holds persisted
// events only; holidays are merged in at read time and never cached or
// written.
type Calendar struct {
	store    EventStore
	sync     *linkage.Synchronizer
	holidays HolidaySource
	user     string

	mu     sync.Mutex
	events []entity.Event
}

// NewCalendar creates a calendar controller for one user. holidays may be
// nil to disable the feed.
func NewCalendar(store EventStore, sync *linkage.Synchronizer, holidays HolidaySource, user string) *Calendar {
	return &Calendar{store: store, sync: sync, holidays: holidays, user: user}
}

// Refresh replaces the cached persisted events from the store.
func (c *Calendar) Refresh(ctx context.Context) error {
	events, err := c.store.ListEvents(ctx, c.user)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	c.mu.Lock()
	c.events = events
	c.mu.Unlock()
	return nil
}

// Events returns the merged calendar: persisted events plus holiday
// entries. A failing holiday feed degrades to persisted events only; it
// never blocks the calendar.
func (c *Calendar) Events(ctx context.Context) []entity.Event {
	c.mu.Lock()
	merged := append([]entity.Event(nil), c.events...)
	c.mu.Unlock()

	if c.holidays != nil {
		holidays, err := c.holidays.Events(ctx, time.Now())
		if err != nil {
			slog.Warn("holiday feed unavailable", "user", c.user, "error", err)
		} else {
			merged = append(merged, holidays...)
		}
	}
	return merged
}

// Get returns the cached persisted event with the given id.
func (c *Calendar) Get(id string) (entity.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.ID == id {
			return e, true
		}
	}
	return entity.Event{}, false
}

// Move applies a drag or resize to a persisted event. Holiday entries
// have no id and can never reach this path. The linked note, if any, is
// untouched: sync is one-directional.
func (c *Calendar) Move(ctx context.Context, id string, newStart time.Time, newEnd *time.Time) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("event %s not in view", id)
	}
	previous := c.events[idx]
	c.mu.Unlock()

	updated := previous

	return run(ctx, &c.mu, command{
		apply: func() {
			optimistic := previous
			optimistic.Start = newStart.UTC()
			optimistic.End = newEnd
			c.replaceLocked(id, optimistic)
		},
		revert: func() {
			c.replaceLocked(id, previous)
		},
		write: func(ctx context.Context) error {
			if err := c.sync.OnEventMove(ctx, c.user, &updated, newStart, newEnd); err != nil {
				return err
			}
			c.mu.Lock()
			c.replaceLocked(id, updated)
			c.mu.Unlock()
			return nil
		},
	})
}

// Delete removes a persisted event. No note is touched; deleting a shadow
// event does not cascade to its note.
func (c *Calendar) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("event %s not in view", id)
	}
	removed := c.events[idx]
	c.mu.Unlock()

	return run(ctx, &c.mu, command{
		apply: func() {
			c.removeLocked(id)
		},
		revert: func() {
			c.events = append([]entity.Event{removed}, c.events...)
		},
		write: func(ctx context.Context) error {
			return c.store.DeleteEvent(ctx, c.user, id)
		},
	})
}

func (c *Calendar) indexLocked(id string) int {
	for i, e := range c.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (c *Calendar) replaceLocked(id string, event entity.Event) {
	if i := c.indexLocked(id); i >= 0 {
		c.events[i] = event
	}
}

func (c *Calendar) removeLocked(id string) {
	if i := c.indexLocked(id); i >= 0 {
		c.events = append(c.events[:i], c.events[i+1:]...)
	}
}
