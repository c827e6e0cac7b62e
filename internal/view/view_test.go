package view

import (
	"context"
	"slices"
	"sort"
	"time"

	"daybook/internal/entity"
)

// memStore is an in-memory document store covering every controller
// surface plus the linkage interfaces, with injectable failures.
type memStore struct {
	notes  map[string]entity.Note
	todos  map[string]entity.Todo
	events map[string]entity.Event

	failNotes  error
	failTodos  error
	failEvents error
}

func newMemStore() *memStore {
	return &memStore{
		notes:  make(map[string]entity.Note),
		todos:  make(map[string]entity.Todo),
		events: make(map[string]entity.Event),
	}
}

func (m *memStore) PutNote(_ context.Context, _ string, note *entity.Note) error {
	if m.failNotes != nil {
		return m.failNotes
	}
	m.notes[note.ID] = *note
	return nil
}

func (m *memStore) ListNotes(_ context.Context, _ string) ([]entity.Note, error) {
	if m.failNotes != nil {
		return nil, m.failNotes
	}
	out := make([]entity.Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListNotesByCategory(ctx context.Context, user, category string) ([]entity.Note, error) {
	all, err := m.ListNotes(ctx, user)
	if err != nil {
		return nil, err
	}
	var out []entity.Note
	for _, n := range all {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) DeleteNote(_ context.Context, _, id string) error {
	if m.failNotes != nil {
		return m.failNotes
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) PutTodo(_ context.Context, _ string, todo *entity.Todo) error {
	if m.failTodos != nil {
		return m.failTodos
	}
	saved := *todo
	saved.Tasks = slices.Clone(todo.Tasks)
	m.todos[todo.ID] = saved
	return nil
}

func (m *memStore) ListTodos(_ context.Context, _ string) ([]entity.Todo, error) {
	if m.failTodos != nil {
		return nil, m.failTodos
	}
	out := make([]entity.Todo, 0, len(m.todos))
	for _, t := range m.todos {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) DeleteTodo(_ context.Context, _, id string) error {
	if m.failTodos != nil {
		return m.failTodos
	}
	delete(m.todos, id)
	return nil
}

func (m *memStore) PutEvent(_ context.Context, _ string, event *entity.Event) error {
	if m.failEvents != nil {
		return m.failEvents
	}
	m.events[event.ID] = *event
	return nil
}

func (m *memStore) ListEvents(_ context.Context, _ string) ([]entity.Event, error) {
	if m.failEvents != nil {
		return nil, m.failEvents
	}
	out := make([]entity.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) EventsByTitle(_ context.Context, _, title, category string) ([]entity.Event, error) {
	if m.failEvents != nil {
		return nil, m.failEvents
	}
	var out []entity.Event
	for _, e := range m.events {
		if e.Title == title && e.Category == category {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteEvent(_ context.Context, _, id string) error {
	if m.failEvents != nil {
		return m.failEvents
	}
	delete(m.events, id)
	return nil
}

// fixedHolidays is a canned HolidaySource.
type fixedHolidays struct {
	events []entity.Event
	err    error
}

func (f *fixedHolidays) Events(context.Context, time.Time) ([]entity.Event, error) {
	return f.events, f.err
}
