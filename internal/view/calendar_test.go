package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"daybook/internal/entity"
	"daybook/internal/linkage"
)

func seedEvent(store *memStore, id, title string) entity.Event {
	e := entity.Event{
		ID:        id,
		Title:     title,
		Start:     time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Category:  entity.CategoryGeneral,
		Status:    entity.StatusPending,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	store.events[id] = e
	return e
}

func TestCalendarEvents_MergesHolidays(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "standup")
	holidays := &fixedHolidays{events: []entity.Event{
		{Title: "Christmas Day", Category: entity.CategoryHoliday, AllDay: true},
	}}

	c := NewCalendar(store, linkage.New(store, store), holidays, testUser)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	merged := c.Events(context.Background())
	if len(merged) != 2 {
		t.Fatalf("expected persisted + holiday, got %d", len(merged))
	}
}

func TestCalendarEvents_DegradesWithoutFeed(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "standup")
	holidays := &fixedHolidays{err: errors.New("feed down")}

	c := NewCalendar(store, linkage.New(store, store), holidays, testUser)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	merged := c.Events(context.Background())
	if len(merged) != 1 {
		t.Fatalf("expected persisted events only, got %d", len(merged))
	}
}

func TestCalendarMove_PersistsAndKeepsNotesUntouched(t *testing.T) {
	store := newMemStore()
	sync := linkage.New(store, store)
	ctx := context.Background()

	// A LeetCode note with its shadow event: moving the shadow must not
	// write back to the note.
	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	if err := sync.OnNoteCreate(ctx, testUser, note); err != nil {
		t.Fatalf("seed: %v", err)
	}
	noteBefore := store.notes[note.ID]

	c := NewCalendar(store, sync, nil, testUser)
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	events := c.Events(ctx)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	shadowID := events[0].ID

	newStart := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(time.Hour)
	if err := c.Move(ctx, shadowID, newStart, &newEnd); err != nil {
		t.Fatalf("move: %v", err)
	}

	moved := store.events[shadowID]
	if !moved.Start.Equal(newStart) {
		t.Errorf("start not persisted: %v", moved.Start)
	}
	if store.notes[note.ID].Status != noteBefore.Status || store.notes[note.ID].Title != noteBefore.Title {
		t.Error("moving an event must never propagate to the note")
	}
}

func TestCalendarMove_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	before := seedEvent(store, "e1", "standup")

	c := NewCalendar(store, linkage.New(store, store), nil, testUser)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.failEvents = errors.New("store down")
	newStart := before.Start.Add(time.Hour)
	if err := c.Move(ctx, "e1", newStart, nil); err == nil {
		t.Fatal("expected error")
	}

	cached, _ := c.Get("e1")
	if !cached.Start.Equal(before.Start) {
		t.Errorf("optimistic move not reverted: %v", cached.Start)
	}
}

func TestCalendarDelete_DoesNotCascadeToNote(t *testing.T) {
	store := newMemStore()
	sync := linkage.New(store, store)
	ctx := context.Background()

	note := &entity.Note{Title: "Two Sum", Category: entity.CategoryLeetCode}
	if err := sync.OnNoteCreate(ctx, testUser, note); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewCalendar(store, sync, nil, testUser)
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	shadowID := c.Events(ctx)[0].ID

	if err := c.Delete(ctx, shadowID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.events) != 0 {
		t.Error("event not deleted")
	}
	if _, ok := store.notes[note.ID]; !ok {
		t.Error("note must survive shadow deletion")
	}
}
