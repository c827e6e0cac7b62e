package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"daybook/internal/entity"
	"daybook/internal/linkage"
)

// NoteStore is the store surface the notes screen reads and deletes
// through; writes go through the linkage synchronizer.
type NoteStore interface {
	ListNotes(ctx context.Context, user string) ([]entity.Note, error)
	DeleteNote(ctx context.Context, user, id string) error
}

// Notes is the notes screen controller.
type Notes struct {
	store NoteStore
	sync  *linkage.Synchronizer
	user  string

	mu    sync.Mutex
	notes []entity.Note
}

// NewNotes creates a notes controller for one user.
func NewNotes(store NoteStore, sync *linkage.Synchronizer, user string) *Notes {
	return &Notes{store: store, sync: sync, user: user}
}

// Refresh replaces the cached list from the store.
func (c *Notes) Refresh(ctx context.Context) error {
	notes, err := c.store.ListNotes(ctx, c.user)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
	return nil
}

// List returns a copy of the cached notes.
func (c *Notes) List() []entity.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.Note(nil), c.notes...)
}

// Get returns the cached note with the given id.
func (c *Notes) Get(id string) (entity.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.notes {
		if n.ID == id {
			return n, true
		}
	}
	return entity.Note{}, false
}

// Create adds a note optimistically and writes it through the
// synchronizer. A partial shadow-sync failure keeps the note (the primary
// write committed); any other failure reverts the optimistic entry.
func (c *Notes) Create(ctx context.Context, note *entity.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	if note.Category == "" {
		note.Category = entity.CategoryGeneral
	}
	if note.Status == "" {
		note.Status = entity.StatusInProgress
	}

	return run(ctx, &c.mu, command{
		apply: func() {
			c.notes = append([]entity.Note{*note}, c.notes...)
		},
		revert: func() {
			c.removeLocked(note.ID)
		},
		write: func(ctx context.Context) error {
			return c.sync.OnNoteCreate(ctx, c.user, note)
		},
		keepOnError: isPartialSync,
	})
}

// Rename retitles a note; the shadow event follows through the
// synchronizer.
func (c *Notes) Rename(ctx context.Context, id, newTitle string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("note %s not in view", id)
	}
	previous := c.notes[idx]
	c.mu.Unlock()

	updated := previous
	updated.Title = newTitle

	return run(ctx, &c.mu, command{
		apply: func() {
			c.replaceLocked(id, updated)
		},
		revert: func() {
			c.replaceLocked(id, previous)
		},
		write: func(ctx context.Context) error {
			if err := c.sync.OnNoteUpdate(ctx, c.user, previous.Title, &updated); err != nil {
				return err
			}
			c.mu.Lock()
			c.replaceLocked(id, updated) // pick up UpdatedAt
			c.mu.Unlock()
			return nil
		},
		keepOnError: isPartialSync,
	})
}

// ToggleComplete flips a note's completion state; the shadow event
// follows.
func (c *Notes) ToggleComplete(ctx context.Context, id string, complete bool) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("note %s not in view", id)
	}
	previous := c.notes[idx]
	c.mu.Unlock()

	updated := previous

	return run(ctx, &c.mu, command{
		apply: func() {
			optimistic := previous
			if complete {
				optimistic.Status = entity.StatusComplete
			} else {
				optimistic.Status = entity.StatusInProgress
			}
			c.replaceLocked(id, optimistic)
		},
		revert: func() {
			c.replaceLocked(id, previous)
		},
		write: func(ctx context.Context) error {
			if err := c.sync.OnNoteCompletionToggle(ctx, c.user, &updated, complete); err != nil {
				return err
			}
			c.mu.Lock()
			c.replaceLocked(id, updated) // pick up CompletedAt
			c.mu.Unlock()
			return nil
		},
		keepOnError: isPartialSync,
	})
}

// Delete removes a note from its collection. The shadow event, if any, is
// deliberately left behind.
func (c *Notes) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("note %s not in view", id)
	}
	removed := c.notes[idx]
	c.mu.Unlock()

	return run(ctx, &c.mu, command{
		apply: func() {
			c.removeLocked(id)
		},
		revert: func() {
			c.notes = append([]entity.Note{removed}, c.notes...)
		},
		write: func(ctx context.Context) error {
			return c.store.DeleteNote(ctx, c.user, id)
		},
	})
}

func (c *Notes) indexLocked(id string) int {
	for i, n := range c.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (c *Notes) replaceLocked(id string, note entity.Note) {
	if i := c.indexLocked(id); i >= 0 {
		c.notes[i] = note
	}
}

func (c *Notes) removeLocked(id string) {
	if i := c.indexLocked(id); i >= 0 {
		c.notes = append(c.notes[:i], c.notes[i+1:]...)
	}
}

func isPartialSync(err error) bool {
	var partial *linkage.PartialSyncError
	return errors.As(err, &partial)
}
