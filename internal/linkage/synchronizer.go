// Package linkage maintains agreement between a user's notes and their
// mirrored calendar events. A note in the LeetCode category owns one
// shadow event in the events collection; the two are correlated by title
// only, there is no stored foreign key in either direction. Sync is
// one-directional: note edits propagate to the shadow, event edits never
// propagate back.
package linkage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daybook/internal/entity"
)

// NoteStore is the slice of the document store the synchronizer needs for
// notes.
type NoteStore interface {
	PutNote(ctx context.Context, user string, note *entity.Note) error
	ListNotesByCategory(ctx context.Context, user, category string) ([]entity.Note, error)
}

// EventStore is the slice of the document store the synchronizer needs for
// events. EventsByTitle must return matches most-recently-created first;
// that ordering is the tie-break when duplicate titles exist.
type EventStore interface {
	PutEvent(ctx context.Context, user string, event *entity.Event) error
	EventsByTitle(ctx context.Context, user, title, category string) ([]entity.Event, error)
}

// PartialSyncError reports that the primary note write committed but the
// secondary shadow-event write did not. There is no cross-collection
// transaction: the note stays written, and the reconcile pass repairs the
// missing shadow later.
type PartialSyncError struct {
	Op     string
	NoteID string
	Title  string
	Err    error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("%s: note %s (%q) written but shadow event not synced: %v", e.Op, e.NoteID, e.Title, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Scanned  int
	Repaired int
}

// Synchronizer propagates note lifecycle changes to shadow events.
type Synchronizer struct {
	notes  NoteStore
	events EventStore
	now    func() time.Time
}

// New creates a Synchronizer over the given store slices.
func New(notes NoteStore, events EventStore) *Synchronizer {
	return &Synchronizer{notes: notes, events: events, now: time.Now}
}

// OnNoteCreate writes a new note and, for LeetCode notes, ensures exactly
// one shadow event exists. The shadow write is not transactional with the
// note write; on shadow failure the note stays committed and the error is
// a PartialSyncError.
func (s *Synchronizer) OnNoteCreate(ctx context.Context, user string, note *entity.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = s.now().UTC()
	}
	if note.Category == "" {
		note.Category = entity.CategoryGeneral
	}
	if note.Status == "" {
		note.Status = entity.StatusInProgress
	}

	if err := s.notes.PutNote(ctx, user, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	if note.Category != entity.CategoryLeetCode {
		return nil
	}
	if err := s.ensureShadow(ctx, user, note); err != nil {
		return &PartialSyncError{Op: "create", NoteID: note.ID, Title: note.Title, Err: err}
	}
	return nil
}

// OnNoteUpdate writes an edited note. For LeetCode notes it renames the
// shadow event previously matched by oldTitle and resets its status to
// In Progress. If no shadow matches (a leftover partial failure), one is
// re-derived instead of erroring. A category change away from LeetCode
// deletes nothing; the orphaned shadow is a known gap.
func (s *Synchronizer) OnNoteUpdate(ctx context.Context, user, oldTitle string, note *entity.Note) error {
	now := s.now().UTC()
	note.UpdatedAt = &now

	if err := s.notes.PutNote(ctx, user, note); err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	if note.Category != entity.CategoryLeetCode {
		return nil
	}

	shadow, err := s.matchShadow(ctx, user, oldTitle)
	if err != nil {
		return &PartialSyncError{Op: "update", NoteID: note.ID, Title: note.Title, Err: err}
	}
	if shadow == nil {
		if err := s.ensureShadow(ctx, user, note); err != nil {
			return &PartialSyncError{Op: "update", NoteID: note.ID, Title: note.Title, Err: err}
		}
		return nil
	}

	shadow.Title = note.Title
	shadow.Status = entity.StatusInProgress
	if err := s.events.PutEvent(ctx, user, shadow); err != nil {
		return &PartialSyncError{Op: "update", NoteID: note.ID, Title: note.Title, Err: err}
	}
	return nil
}

// OnNoteCompletionToggle flips a note's completion state and mirrors it to
// the shadow event. Completing sets note.CompletedAt and the shadow's end
// to the same instant; un-completing clears CompletedAt and reverts the
// shadow's end to its own start.
func (s *Synchronizer) OnNoteCompletionToggle(ctx context.Context, user string, note *entity.Note, complete bool) error {
	now := s.now().UTC()
	if complete {
		note.Status = entity.StatusComplete
		note.CompletedAt = &now
	} else {
		note.Status = entity.StatusInProgress
		note.CompletedAt = nil
	}
	note.UpdatedAt = &now

	if err := s.notes.PutNote(ctx, user, note); err != nil {
		return fmt.Errorf("toggle note completion: %w", err)
	}

	if note.Category != entity.CategoryLeetCode {
		return nil
	}

	shadow, err := s.matchShadow(ctx, user, note.Title)
	if err != nil {
		return &PartialSyncError{Op: "toggle", NoteID: note.ID, Title: note.Title, Err: err}
	}
	if shadow == nil {
		slog.Warn("no shadow event for note, leaving to reconcile",
			"user", user, "note", note.ID, "title", note.Title)
		return nil
	}

	shadow.Status = note.Status
	if complete {
		shadow.End = &now
	} else {
		start := shadow.Start
		shadow.End = &start
	}
	if err := s.events.PutEvent(ctx, user, shadow); err != nil {
		return &PartialSyncError{Op: "toggle", NoteID: note.ID, Title: note.Title, Err: err}
	}
	return nil
}

// OnEventMove applies a drag/resize to a calendar event. Event changes
// never propagate back to any note.
func (s *Synchronizer) OnEventMove(ctx context.Context, user string, event *entity.Event, newStart time.Time, newEnd *time.Time) error {
	event.Start = newStart.UTC()
	if newEnd != nil {
		end := newEnd.UTC()
		event.End = &end
	} else {
		event.End = nil
	}
	if err := s.events.PutEvent(ctx, user, event); err != nil {
		return fmt.Errorf("move event: %w", err)
	}
	return nil
}

// MissingShadows returns the user's LeetCode notes that have no shadow
// event, plus the total number scanned.
func (s *Synchronizer) MissingShadows(ctx context.Context, user string) ([]entity.Note, int, error) {
	notes, err := s.notes.ListNotesByCategory(ctx, user, entity.CategoryLeetCode)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	var missing []entity.Note
	for _, note := range notes {
		matches, err := s.events.EventsByTitle(ctx, user, note.Title, entity.CategoryLeetCode)
		if err != nil {
			return nil, 0, fmt.Errorf("match shadow for %q: %w", note.Title, err)
		}
		if len(matches) == 0 {
			missing = append(missing, note)
		}
	}
	return missing, len(notes), nil
}

// RepairShadow re-derives the shadow event for a single note.
func (s *Synchronizer) RepairShadow(ctx context.Context, user string, note *entity.Note) error {
	return s.ensureShadow(ctx, user, note)
}

// Reconcile repairs the partial-failure window of the two-write sequence:
// every LeetCode note without a shadow event gets one re-derived. Orphaned
// shadows (note deleted or re-categorized) are left alone.
func (s *Synchronizer) Reconcile(ctx context.Context, user string) (ReconcileResult, error) {
	missing, scanned, err := s.MissingShadows(ctx, user)
	if err != nil {
		return ReconcileResult{}, err
	}

	result := ReconcileResult{Scanned: scanned}
	for i := range missing {
		if err := s.RepairShadow(ctx, user, &missing[i]); err != nil {
			return result, fmt.Errorf("repair shadow for %q: %w", missing[i].Title, err)
		}
		result.Repaired++
	}

	if result.Repaired > 0 {
		slog.Info("reconcile repaired missing shadow events",
			"user", user, "scanned", result.Scanned, "repaired", result.Repaired)
	}
	return result, nil
}

// ensureShadow creates the shadow event for a note unless one already
// exists. The existence check makes creation idempotent: replaying a note
// create cannot mint duplicate shadows.
func (s *Synchronizer) ensureShadow(ctx context.Context, user string, note *entity.Note) error {
	matches, err := s.events.EventsByTitle(ctx, user, note.Title, entity.CategoryLeetCode)
	if err != nil {
		return fmt.Errorf("check existing shadow: %w", err)
	}
	if len(matches) > 0 {
		return nil
	}

	shadow := &entity.Event{
		ID:        uuid.NewString(),
		Title:     note.Title,
		Start:     note.CreatedAt,
		End:       nil,
		Category:  entity.CategoryLeetCode,
		Status:    entity.StatusInProgress,
		AllDay:    false,
		CreatedAt: s.now().UTC(),
	}
	if err := s.events.PutEvent(ctx, user, shadow); err != nil {
		return fmt.Errorf("write shadow event: %w", err)
	}
	return nil
}

// matchShadow finds the shadow event for a title. Duplicate titles resolve
// to the most recently created event; store ordering guarantees that.
func (s *Synchronizer) matchShadow(ctx context.Context, user, title string) (*entity.Event, error) {
	matches, err := s.events.EventsByTitle(ctx, user, title, entity.CategoryLeetCode)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
