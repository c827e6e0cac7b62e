package view

import (
	"context"
	"errors"
	"testing"

	"daybook/internal/entity"
	"daybook/internal/linkage"
)

const testUser = "u@example.com"

func newNotesController(store *memStore) *Notes {
	return NewNotes(store, linkage.New(store, store), testUser)
}

func TestNotesCreate_OptimisticAndPersisted(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)

	note := &entity.Note{Title: "groceries"}
	if err := c.Create(context.Background(), note); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.List()) != 1 {
		t.Fatalf("expected 1 cached note, got %d", len(c.List()))
	}
	if _, ok := store.notes[note.ID]; !ok {
		t.Error("note not persisted")
	}
}

func TestNotesCreate_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	store.failNotes = errors.New("store down")

	err := c.Create(context.Background(), &entity.Note{Title: "groceries"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(c.List()); got != 0 {
		t.Errorf("optimistic entry not reverted, %d notes cached", got)
	}
}

func TestNotesCreate_PartialFailureKeepsNote(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)

	// The note write commits, only the shadow-event write fails. The
	// optimistic entry must stay: reverting it would contradict the store.
	store.failEvents = errors.New("events down")

	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	err := c.Create(context.Background(), note)

	var partial *linkage.PartialSyncError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialSyncError, got %v", err)
	}
	if got := len(c.List()); got != 1 {
		t.Errorf("expected note kept in view, got %d", got)
	}
	if _, ok := store.notes[note.ID]; !ok {
		t.Error("note must stay persisted")
	}
}

func TestNotesRename_UpdatesCacheAndShadow(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	ctx := context.Background()

	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	if err := c.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Rename(ctx, note.ID, "Two Sum II"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	cached, ok := c.Get(note.ID)
	if !ok || cached.Title != "Two Sum II" {
		t.Errorf("cache title = %q", cached.Title)
	}
	renamed, _ := store.EventsByTitle(ctx, testUser, "Two Sum II", entity.CategoryLeetCode)
	if len(renamed) != 1 {
		t.Errorf("shadow not renamed, %d matches", len(renamed))
	}
}

func TestNotesRename_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	ctx := context.Background()

	note := &entity.Note{Title: "draft"}
	if err := c.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}

	store.failNotes = errors.New("store down")
	if err := c.Rename(ctx, note.ID, "final"); err == nil {
		t.Fatal("expected error")
	}

	cached, _ := c.Get(note.ID)
	if cached.Title != "draft" {
		t.Errorf("title not reverted: %q", cached.Title)
	}
}

func TestNotesToggleComplete_SetsCompletedAt(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	ctx := context.Background()

	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	if err := c.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := c.ToggleComplete(ctx, note.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	cached, _ := c.Get(note.ID)
	if cached.Status != entity.StatusComplete || cached.CompletedAt == nil {
		t.Errorf("cache not completed: %+v", cached)
	}

	if err := c.ToggleComplete(ctx, note.ID, false); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	cached, _ = c.Get(note.ID)
	if cached.CompletedAt != nil {
		t.Errorf("completedAt not cleared: %v", cached.CompletedAt)
	}
}

func TestNotesDelete_LeavesShadowEvent(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	ctx := context.Background()

	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	if err := c.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Delete(ctx, note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(store.notes) != 0 {
		t.Error("note not deleted")
	}
	// Documented gap: no cascade. The shadow event survives.
	if len(store.events) != 1 {
		t.Errorf("shadow event must survive note deletion, got %d", len(store.events))
	}
}

func TestNotesDelete_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	c := newNotesController(store)
	ctx := context.Background()

	note := &entity.Note{Title: "keep me"}
	if err := c.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}

	store.failNotes = errors.New("store down")
	if err := c.Delete(ctx, note.ID); err == nil {
		t.Fatal("expected error")
	}
	if len(c.List()) != 1 {
		t.Error("deleted entry not restored in view")
	}
}
