package view

import (
	"context"
	"errors"
	"testing"

	"daybook/internal/entity"
)

func TestTodosAdd_Defaults(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)

	todo := &entity.Todo{Title: "ship release"}
	if err := c.Add(context.Background(), todo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := store.todos[todo.ID]
	if saved.Importance != entity.ImportanceMedium {
		t.Errorf("importance = %q", saved.Importance)
	}
	if saved.Category != entity.CategoryGeneral {
		t.Errorf("category = %q", saved.Category)
	}
	if saved.Tasks == nil {
		t.Error("tasks must be an empty array, not nil")
	}
	if saved.Completed {
		t.Error("new todo must not be completed")
	}
}

func TestTodosToggle_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)
	ctx := context.Background()

	todo := &entity.Todo{Title: "ship release"}
	if err := c.Add(ctx, todo); err != nil {
		t.Fatalf("add: %v", err)
	}

	store.failTodos = errors.New("store down")
	if err := c.Toggle(ctx, todo.ID, true); err == nil {
		t.Fatal("expected error")
	}

	cached, _ := c.Get(todo.ID)
	if cached.Completed {
		t.Error("optimistic completion not reverted")
	}
	if store.todos[todo.ID].Completed {
		t.Error("store must be untouched")
	}
}

func TestTodosTaskEditing_RewritesArrayAtomically(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)
	ctx := context.Background()

	todo := &entity.Todo{Title: "errands"}
	if err := c.Add(ctx, todo); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.AddTask(ctx, todo.ID, entity.Task{Title: "post office"}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := c.AddTask(ctx, todo.ID, entity.Task{Title: "bank", Importance: entity.ImportanceHigh}); err != nil {
		t.Fatalf("add task: %v", err)
	}

	saved := store.todos[todo.ID]
	if len(saved.Tasks) != 2 {
		t.Fatalf("expected 2 persisted tasks, got %d", len(saved.Tasks))
	}
	if saved.Tasks[0].ID == "" {
		t.Error("task id not assigned")
	}
	if saved.Tasks[0].Importance != entity.ImportanceMedium {
		t.Errorf("task importance default = %q", saved.Tasks[0].Importance)
	}

	if err := c.ToggleTask(ctx, todo.ID, saved.Tasks[0].ID, true); err != nil {
		t.Fatalf("toggle task: %v", err)
	}
	if !store.todos[todo.ID].Tasks[0].Completed {
		t.Error("task completion not persisted")
	}

	if err := c.RemoveTask(ctx, todo.ID, saved.Tasks[0].ID); err != nil {
		t.Fatalf("remove task: %v", err)
	}
	saved = store.todos[todo.ID]
	if len(saved.Tasks) != 1 || saved.Tasks[0].Title != "bank" {
		t.Errorf("task array not rewritten: %+v", saved.Tasks)
	}
}

func TestTodosTaskEditing_RevertsOnFailure(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)
	ctx := context.Background()

	todo := &entity.Todo{Title: "errands"}
	if err := c.Add(ctx, todo); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddTask(ctx, todo.ID, entity.Task{Title: "post office"}); err != nil {
		t.Fatalf("add task: %v", err)
	}

	store.failTodos = errors.New("store down")
	if err := c.AddTask(ctx, todo.ID, entity.Task{Title: "bank"}); err == nil {
		t.Fatal("expected error")
	}

	cached, _ := c.Get(todo.ID)
	if len(cached.Tasks) != 1 {
		t.Errorf("optimistic task not reverted, %d tasks cached", len(cached.Tasks))
	}
}

func TestTodosUpdate_ResetsCompletion(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)
	ctx := context.Background()

	todo := &entity.Todo{Title: "ship release"}
	if err := c.Add(ctx, todo); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Toggle(ctx, todo.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := c.Update(ctx, todo.ID, "ship v2", "big one", "Work", entity.ImportanceHigh, nil, "n123"); err != nil {
		t.Fatalf("update: %v", err)
	}

	saved := store.todos[todo.ID]
	if saved.Completed {
		t.Error("editing a todo must reset completion")
	}
	if saved.Title != "ship v2" || saved.LinkedNoteID != "n123" {
		t.Errorf("fields not updated: %+v", saved)
	}
}

func TestTodosDelete_RemovesEmbeddedTasks(t *testing.T) {
	store := newMemStore()
	c := NewTodos(store, testUser)
	ctx := context.Background()

	todo := &entity.Todo{Title: "errands"}
	if err := c.Add(ctx, todo); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddTask(ctx, todo.ID, entity.Task{Title: "one"}); err != nil {
		t.Fatalf("add task: %v", err)
	}

	if err := c.Delete(ctx, todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.todos) != 0 {
		t.Error("todo document (and its tasks) must be gone")
	}
}
