package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/entity"
)

func todoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos and their checklist tasks",
	}

	cmd.AddCommand(
		todoAddCmd(),
		todoListCmd(),
		todoDoneCmd(),
		todoReopenCmd(),
		todoTaskCmd(),
		todoDeleteCmd(),
	)

	return cmd
}

func todoAddCmd() *cobra.Command {
	var description, category, importance, due, linkedNote string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			todo := &entity.Todo{
				Title:        strings.Join(args, " "),
				Description:  description,
				Category:     category,
				Importance:   importance,
				LinkedNoteID: linkedNote,
			}
			if due != "" {
				dueDate, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid due date %q (want YYYY-MM-DD): %w", due, err)
				}
				todo.DueDate = &dueDate
			}

			if err := s.todos.Add(ctx, todo); err != nil {
				return err
			}

			fmt.Printf("Todo %s created.\n", todo.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&category, "category", "", "todo category (defaults to General)")
	cmd.Flags().StringVar(&importance, "importance", "", "High, Medium or Low (defaults to Medium)")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&linkedNote, "note", "", "id of a related note")

	return cmd
}

func todoListCmd() *cobra.Command {
	var showTasks bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.todos.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load todos: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tIMPORTANCE\tDUE\tDONE\tTASKS")
			for _, td := range s.todos.List() {
				due := "-"
				if td.DueDate != nil {
					due = td.DueDate.Format("2006-01-02")
				}
				done := 0
				for _, task := range td.Tasks {
					if task.Completed {
						done++
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%d/%d\n",
					td.ID, td.Title, td.Importance, due, td.Completed, done, len(td.Tasks))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if showTasks {
				for _, td := range s.todos.List() {
					if len(td.Tasks) == 0 {
						continue
					}
					fmt.Printf("\n%s:\n", td.Title)
					for _, task := range td.Tasks {
						mark := " "
						if task.Completed {
							mark = "x"
						}
						fmt.Printf("  [%s] %s  %s (%s)\n", mark, task.ID, task.Title, task.Importance)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTasks, "tasks", false, "also print each todo's checklist")

	return cmd
}

func todoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTodo(args[0], true)
		},
	}
}

func todoReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed todo open again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTodo(args[0], false)
		},
	}
}

func toggleTodo(id string, completed bool) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.todos.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}

	if err := s.todos.Toggle(ctx, id, completed); err != nil {
		return err
	}

	if completed {
		fmt.Printf("Todo %s done.\n", id)
	} else {
		fmt.Printf("Todo %s reopened.\n", id)
	}
	return nil
}

func todoTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Edit a todo's checklist",
	}

	var importance string
	addCmd := &cobra.Command{
		Use:   "add <todo-id> <title>",
		Short: "Add a checklist task to a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTodos(func(ctx context.Context, s *session) error {
				task := entity.Task{
					Title:      strings.Join(args[1:], " "),
					Importance: importance,
				}
				if err := s.todos.AddTask(ctx, args[0], task); err != nil {
					return err
				}
				fmt.Println("Task added.")
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&importance, "importance", "", "High, Medium or Low (defaults to Medium)")

	doneCmd := &cobra.Command{
		Use:   "done <todo-id> <task-id>",
		Short: "Mark a checklist task complete",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTodos(func(ctx context.Context, s *session) error {
				if err := s.todos.ToggleTask(ctx, args[0], args[1], true); err != nil {
					return err
				}
				fmt.Println("Task done.")
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <todo-id> <task-id>",
		Short: "Remove a checklist task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTodos(func(ctx context.Context, s *session) error {
				if err := s.todos.RemoveTask(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Println("Task removed.")
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, doneCmd, removeCmd)
	return cmd
}

// withTodos opens a session with the todo list loaded and runs fn.
func withTodos(fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.todos.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}

	return fn(ctx, s)
}

func todoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo and its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTodos(func(ctx context.Context, s *session) error {
				if err := s.todos.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Todo %s deleted.\n", args[0])
				return nil
			})
		},
	}
}
