package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/entity"
	"daybook/internal/linkage"
)

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	cmd.AddCommand(
		noteAddCmd(),
		noteListCmd(),
		noteRenameCmd(),
		noteCompleteCmd(),
		noteReopenCmd(),
		noteDeleteCmd(),
	)

	return cmd
}

func noteAddCmd() *cobra.Command {
	var category, content, leetcodeLink string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note",
		Long:  `Creates a note. A note in the LeetCode category also gets a shadow calendar event with the same title.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			note := &entity.Note{
				Title:        strings.Join(args, " "),
				Content:      content,
				Category:     category,
				LeetcodeLink: leetcodeLink,
			}

			err = s.notes.Create(ctx, note)
			var partial *linkage.PartialSyncError
			if errors.As(err, &partial) {
				fmt.Printf("Note %s created, but its calendar event was not synced.\n", note.ID)
				fmt.Println("Run 'daybook reconcile' to repair it.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Note %s created.\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "note category (defaults to General)")
	cmd.Flags().StringVar(&content, "content", "", "note body")
	cmd.Flags().StringVar(&leetcodeLink, "link", "", "problem URL for LeetCode notes")

	return cmd
}

func noteListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.notes.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load notes: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTATUS\tCREATED")
			for _, n := range s.notes.List() {
				if category != "" && n.Category != category {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					n.ID, n.Title, n.Category, n.Status,
					n.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show notes in this category")

	return cmd
}

func noteRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new title>",
		Short: "Retitle a note (its calendar event follows)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.notes.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load notes: %w", err)
			}

			id := args[0]
			newTitle := strings.Join(args[1:], " ")

			err = s.notes.Rename(ctx, id, newTitle)
			var partial *linkage.PartialSyncError
			if errors.As(err, &partial) {
				fmt.Printf("Note renamed to %q, but its calendar event was not synced.\n", newTitle)
				fmt.Println("Run 'daybook reconcile' to repair it.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Note renamed to %q.\n", newTitle)
			return nil
		},
	}
}

func noteCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a note complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleNote(args[0], true)
		},
	}
}

func noteReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed note in progress again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleNote(args[0], false)
		},
	}
}

func toggleNote(id string, complete bool) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.notes.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	if err := s.notes.ToggleComplete(ctx, id, complete); err != nil {
		return err
	}

	if complete {
		fmt.Printf("Note %s marked complete.\n", id)
	} else {
		fmt.Printf("Note %s reopened.\n", id)
	}
	return nil
}

func noteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Long:  `Deletes a note. Its shadow calendar event, if any, is left on the calendar.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.notes.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load notes: %w", err)
			}

			if err := s.notes.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Note %s deleted.\n", args[0])
			return nil
		},
	}
}
