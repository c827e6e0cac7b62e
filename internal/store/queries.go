package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"daybook/internal/entity"
)

// Collection table names. Only these constants ever reach query text.
const (
	tableNotes  = "notes"
	tableTodos  = "todos"
	tableEvents = "events"
)

// PutNote inserts or updates a note document
func (s *Store) PutNote(ctx context.Context, user string, note *entity.Note) error {
	if note.ID == "" {
		return fmt.Errorf("note id is required")
	}
	return s.putDoc(ctx, tableNotes, user, note.ID, note.Title, note.Category, note.CreatedAt, entity.NoteDoc(note))
}

// GetNote retrieves a note by id
func (s *Store) GetNote(ctx context.Context, user, id string) (*entity.Note, error) {
	doc, err := s.getDoc(ctx, tableNotes, user, id)
	if err != nil {
		return nil, err
	}
	return entity.ToNote(doc)
}

// ListNotes returns all of a user's notes, newest first
func (s *Store) ListNotes(ctx context.Context, user string) ([]entity.Note, error) {
	docs, err := s.listDocs(ctx, `
		SELECT id, doc FROM notes
		WHERE user_key = $1
		ORDER BY created_at DESC
	`, user)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, entity.ToNote)
}

// ListNotesByCategory returns a user's notes in one category, newest first
func (s *Store) ListNotesByCategory(ctx context.Context, user, category string) ([]entity.Note, error) {
	docs, err := s.listDocs(ctx, `
		SELECT id, doc FROM notes
		WHERE user_key = $1 AND category = $2
		ORDER BY created_at DESC
	`, user, category)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, entity.ToNote)
}

// DeleteNote removes a note. Its shadow event, if any, is left in place.
func (s *Store) DeleteNote(ctx context.Context, user, id string) error {
	return s.deleteDoc(ctx, tableNotes, user, id)
}

// PutTodo inserts or updates a todo document, embedded tasks included
func (s *Store) PutTodo(ctx context.Context, user string, todo *entity.Todo) error {
	if todo.ID == "" {
		return fmt.Errorf("todo id is required")
	}
	return s.putDoc(ctx, tableTodos, user, todo.ID, todo.Title, todo.Category, todo.CreatedAt, entity.TodoDoc(todo))
}

// GetTodo retrieves a todo by id
func (s *Store) GetTodo(ctx context.Context, user, id string) (*entity.Todo, error) {
	doc, err := s.getDoc(ctx, tableTodos, user, id)
	if err != nil {
		return nil, err
	}
	return entity.ToTodo(doc)
}

// ListTodos returns all of a user's todos, newest first
func (s *Store) ListTodos(ctx context.Context, user string) ([]entity.Todo, error) {
	docs, err := s.listDocs(ctx, `
		SELECT id, doc FROM todos
		WHERE user_key = $1
		ORDER BY created_at DESC
	`, user)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, entity.ToTodo)
}

// DeleteTodo removes a todo and its embedded tasks
func (s *Store) DeleteTodo(ctx context.Context, user, id string) error {
	return s.deleteDoc(ctx, tableTodos, user, id)
}

// PutEvent inserts or updates a calendar event document
func (s *Store) PutEvent(ctx context.Context, user string, event *entity.Event) error {
	if event.ID == "" {
		return fmt.Errorf("event id is required")
	}
	return s.putDoc(ctx, tableEvents, user, event.ID, event.Title, event.Category, event.CreatedAt, entity.EventDoc(event))
}

// GetEvent retrieves an event by id
func (s *Store) GetEvent(ctx context.Context, user, id string) (*entity.Event, error) {
	doc, err := s.getDoc(ctx, tableEvents, user, id)
	if err != nil {
		return nil, err
	}
	return entity.ToEvent(doc)
}

// ListEvents returns all of a user's persisted events, newest first
func (s *Store) ListEvents(ctx context.Context, user string) ([]entity.Event, error) {
	docs, err := s.listDocs(ctx, `
		SELECT id, doc FROM events
		WHERE user_key = $1
		ORDER BY created_at DESC
	`, user)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, entity.ToEvent)
}

// EventsByTitle returns events matching a title within a category, most
// recently created first. That ordering is the deterministic tie-break the
// linkage synchronizer relies on when duplicate titles exist.
func (s *Store) EventsByTitle(ctx context.Context, user, title, category string) ([]entity.Event, error) {
	docs, err := s.listDocs(ctx, `
		SELECT id, doc FROM events
		WHERE user_key = $1 AND title = $2 AND category = $3
		ORDER BY created_at DESC
	`, user, title, category)
	if err != nil {
		return nil, err
	}
	return mapDocs(docs, entity.ToEvent)
}

// DeleteEvent removes an event
func (s *Store) DeleteEvent(ctx context.Context, user, id string) error {
	return s.deleteDoc(ctx, tableEvents, user, id)
}

// putDoc upserts one document. created_at is written once and never
// updated afterwards; it anchors list ordering and the title tie-break.
func (s *Store) putDoc(ctx context.Context, table, user, id, title, category string, createdAt time.Time, doc entity.Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.Pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_key, id, title, category, doc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_key, id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			doc = EXCLUDED.doc,
			updated_at = NOW()
	`, table),
		user, id, title, category, docJSON, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s document: %w", table, err)
	}
	return nil
}

// getDoc fetches one document with its id injected
func (s *Store) getDoc(ctx context.Context, table, user, id string) (entity.Document, error) {
	var docJSON []byte
	err := s.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT doc FROM %s WHERE user_key = $1 AND id = $2
	`, table), user, id).Scan(&docJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc := entity.Document{}
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s document: %w", table, err)
	}
	doc["id"] = id
	return doc, nil
}

// listDocs runs a (id, doc) query and injects ids
func (s *Store) listDocs(ctx context.Context, query string, args ...any) ([]entity.Document, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []entity.Document
	for rows.Next() {
		var id string
		var docJSON []byte
		if err := rows.Scan(&id, &docJSON); err != nil {
			return nil, err
		}

		doc := entity.Document{}
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
		}
		doc["id"] = id
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// deleteDoc removes one document
func (s *Store) deleteDoc(ctx context.Context, table, user, id string) error {
	_, err := s.Pool.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE user_key = $1 AND id = $2
	`, table), user, id)
	return err
}

// mapDocs converts raw documents through a mapper function, surfacing the
// first mapping failure (malformed dates included) instead of dropping
// documents silently.
func mapDocs[T any](docs []entity.Document, convert func(entity.Document) (*T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := convert(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
