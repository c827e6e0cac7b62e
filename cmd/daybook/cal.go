package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func calCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cal",
		Short: "Manage the calendar",
	}

	cmd.AddCommand(
		calListCmd(),
		calMoveCmd(),
		calDeleteCmd(),
	)

	return cmd
}

func calListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List calendar events, holidays included",
		Long:  `Lists the user's calendar events merged with the public-holiday feed. Holidays are synthetic: they carry no id and cannot be moved or deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.calendar.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load events: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tCATEGORY\tSTATUS")
			for _, e := range s.calendar.Events(ctx) {
				id := e.ID
				if id == "" {
					id = "-"
				}
				end := "-"
				if e.End != nil {
					end = e.End.Format(time.RFC3339)
				}
				start := e.Start.Format(time.RFC3339)
				if e.AllDay {
					start = e.Start.Format("2006-01-02")
					end = "all day"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					id, e.Title, start, end, e.Category, e.Status)
			}
			return w.Flush()
		},
	}
}

func calMoveCmd() *cobra.Command {
	var endStr string

	cmd := &cobra.Command{
		Use:   "move <id> <start>",
		Short: "Reschedule an event",
		Long:  `Moves an event to a new start time (RFC 3339, e.g. 2026-09-01T10:00:00Z). Moving a shadow event never writes back to its note.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			newStart, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid start time %q (want RFC 3339): %w", args[1], err)
			}

			var newEnd *time.Time
			if endStr != "" {
				end, err := time.Parse(time.RFC3339, endStr)
				if err != nil {
					return fmt.Errorf("invalid end time %q (want RFC 3339): %w", endStr, err)
				}
				newEnd = &end
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.calendar.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load events: %w", err)
			}

			if err := s.calendar.Move(ctx, args[0], newStart, newEnd); err != nil {
				return err
			}

			fmt.Printf("Event %s moved to %s.\n", args[0], newStart.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&endStr, "end", "", "new end time, RFC 3339 (omit to clear)")

	return cmd
}

func calDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Long:  `Deletes an event. Deleting a shadow event does not touch the note it mirrors.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.calendar.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load events: %w", err)
			}

			if err := s.calendar.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Event %s deleted.\n", args[0])
			return nil
		},
	}
}
