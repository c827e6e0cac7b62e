package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"daybook/internal/entity"
)

// TodoStore is the store surface the todos screen uses. Task edits stay
// inside the single todo document; there are no fan-out writes.
type TodoStore interface {
	PutTodo(ctx context.Context, user string, todo *entity.Todo) error
	ListTodos(ctx context.Context, user string) ([]entity.Todo, error)
	DeleteTodo(ctx context.Context, user, id string) error
}

// Todos is the todos screen controller.
type Todos struct {
	store TodoStore
	user  string

	mu    sync.Mutex
	todos []entity.Todo
}

// NewTodos creates a todos controller for one user.
func NewTodos(store TodoStore, user string) *Todos {
	return &Todos{store: store, user: user}
}

// Refresh replaces the cached list from the store.
func (c *Todos) Refresh(ctx context.Context) error {
	todos, err := c.store.ListTodos(ctx, c.user)
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}
	c.mu.Lock()
	c.todos = todos
	c.mu.Unlock()
	return nil
}

// List returns a copy of the cached todos.
func (c *Todos) List() []entity.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.Todo(nil), c.todos...)
}

// Get returns the cached todo with the given id.
func (c *Todos) Get(id string) (entity.Todo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.todos {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Todo{}, false
}

// Add creates a todo with defaults filled in.
func (c *Todos) Add(ctx context.Context, todo *entity.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}
	if todo.Category == "" {
		todo.Category = entity.CategoryGeneral
	}
	if todo.Importance == "" {
		todo.Importance = entity.ImportanceMedium
	}
	if todo.Tasks == nil {
		todo.Tasks = []entity.Task{}
	}

	return run(ctx, &c.mu, command{
		apply: func() {
			c.todos = append([]entity.Todo{*todo}, c.todos...)
		},
		revert: func() {
			c.removeLocked(todo.ID)
		},
		write: func(ctx context.Context) error {
			return c.store.PutTodo(ctx, c.user, todo)
		},
	})
}

// Toggle flips a todo's completion flag.
func (c *Todos) Toggle(ctx context.Context, id string, completed bool) error {
	return c.mutate(ctx, id, func(todo *entity.Todo) {
		todo.Completed = completed
	})
}

// Update replaces a todo's editable fields. Completion resets, matching
// the edit screen's behavior.
func (c *Todos) Update(ctx context.Context, id string, title, description, category, importance string, dueDate *time.Time, linkedNoteID string) error {
	return c.mutate(ctx, id, func(todo *entity.Todo) {
		todo.Title = title
		todo.Description = description
		todo.Category = category
		todo.Importance = importance
		todo.DueDate = dueDate
		todo.LinkedNoteID = linkedNoteID
		todo.Completed = false
	})
}

// AddTask appends a task to a todo's embedded checklist.
func (c *Todos) AddTask(ctx context.Context, todoID string, task entity.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Importance == "" {
		task.Importance = entity.ImportanceMedium
	}
	return c.mutate(ctx, todoID, func(todo *entity.Todo) {
		todo.Tasks = append(todo.Tasks, task)
	})
}

// ToggleTask flips one embedded task's completion flag.
func (c *Todos) ToggleTask(ctx context.Context, todoID, taskID string, completed bool) error {
	return c.mutate(ctx, todoID, func(todo *entity.Todo) {
		for i := range todo.Tasks {
			if todo.Tasks[i].ID == taskID {
				todo.Tasks[i].Completed = completed
			}
		}
	})
}

// RemoveTask drops one embedded task.
func (c *Todos) RemoveTask(ctx context.Context, todoID, taskID string) error {
	return c.mutate(ctx, todoID, func(todo *entity.Todo) {
		tasks := todo.Tasks[:0]
		for _, t := range todo.Tasks {
			if t.ID != taskID {
				tasks = append(tasks, t)
			}
		}
		todo.Tasks = tasks
	})
}

// Delete removes a todo and its embedded tasks with it.
func (c *Todos) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("todo %s not in view", id)
	}
	removed := c.todos[idx]
	c.mu.Unlock()

	return run(ctx, &c.mu, command{
		apply: func() {
			c.removeLocked(id)
		},
		revert: func() {
			c.todos = append([]entity.Todo{removed}, c.todos...)
		},
		write: func(ctx context.Context) error {
			return c.store.DeleteTodo(ctx, c.user, id)
		},
	})
}

// mutate applies an edit to a deep copy of the cached todo, writes the
// whole document (tasks array included) in one save, and reverts the
// cache if the write fails.
func (c *Todos) mutate(ctx context.Context, id string, edit func(*entity.Todo)) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("todo %s not in view", id)
	}
	previous := c.todos[idx]
	c.mu.Unlock()

	updated := previous
	updated.Tasks = append([]entity.Task(nil), previous.Tasks...)
	edit(&updated)

	return run(ctx, &c.mu, command{
		apply: func() {
			c.replaceLocked(id, updated)
		},
		revert: func() {
			c.replaceLocked(id, previous)
		},
		write: func(ctx context.Context) error {
			return c.store.PutTodo(ctx, c.user, &updated)
		},
	})
}

func (c *Todos) indexLocked(id string) int {
	for i, t := range c.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Todos) replaceLocked(id string, todo entity.Todo) {
	if i := c.indexLocked(id); i >= 0 {
		c.todos[i] = todo
	}
}

func (c *Todos) removeLocked(id string) {
	if i := c.indexLocked(id); i >= 0 {
		c.todos = append(c.todos[:i], c.todos[i+1:]...)
	}
}
