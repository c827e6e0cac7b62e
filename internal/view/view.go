// Package view holds the per-screen controllers: mutex-guarded list state
// over the document store, one controller per screen, no process-wide
// singletons. Mutations run as commands that apply an optimistic local
// change first and revert to the last known-good state when the write
// fails.
package view

import "context"

// command pairs an optimistic in-memory mutation with the store write
// that makes it durable.
type command struct {
	apply  func()
	revert func()
	write  func(ctx context.Context) error
	// keepOnError suppresses the revert for errors where the primary
	// write is known to have committed (partial shadow-sync failures).
	keepOnError func(err error) bool
}

type locker interface {
	Lock()
	Unlock()
}

func run(ctx context.Context, mu locker, cmd command) error {
	mu.Lock()
	cmd.apply()
	mu.Unlock()

	if err := cmd.write(ctx); err != nil {
		if cmd.keepOnError != nil && cmd.keepOnError(err) {
			return err
		}
		mu.Lock()
		cmd.revert()
		mu.Unlock()
		return err
	}
	return nil
}
