package main

import (
	"context"
	"fmt"

	"daybook/internal/config"
	"daybook/internal/holiday"
	"daybook/internal/linkage"
	"daybook/internal/store"
	"daybook/internal/view"
)

// session wires a connected store and the screen controllers for one CLI
// invocation.
type session struct {
	cfg      *config.Config
	db       *store.Store
	notes    *view.Notes
	todos    *view.Todos
	calendar *view.Calendar
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := store.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sync := linkage.New(db, db)
	holidays := holiday.NewClient(cfg.Holiday)

	return &session{
		cfg:      cfg,
		db:       db,
		notes:    view.NewNotes(db, sync, cfg.User),
		todos:    view.NewTodos(db, cfg.User),
		calendar: view.NewCalendar(db, sync, holidays, cfg.User),
	}, nil
}

func (s *session) Close() {
	s.db.Close()
}
