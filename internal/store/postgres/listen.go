package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/common"
)

// Subscribe opens the live snapshot feed. A dedicated connection LISTENs on
// the change channel; the feed pushes one initial snapshot and then a fresh
// one per notification. Closing the subscription (or cancelling ctx) tears
// the connection down.
func (s *Store) Subscribe(ctx context.Context) (*client.Subscription, error) {
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("listen connect error: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("listen error: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	snapshots := make(chan models.Snapshot, 1)
	errs := make(chan error, 1)

	go s.stream(ctx, conn, snapshots, errs)

	return client.NewSubscription(snapshots, errs, cancel), nil
}

func (s *Store) stream(ctx context.Context, conn *pgx.Conn, snapshots chan<- models.Snapshot, errs chan<- error) {
	defer close(snapshots)
	defer close(errs)
	defer conn.Close(context.Background())

	if !s.push(ctx, snapshots, errs) {
		return
	}

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			// A broken listen connection ends the feed; the mirror keeps
			// its last-known-good contents.
			s.reportStreamErr(ctx, errs, err)
			return
		}

		if !s.push(ctx, snapshots, errs) {
			return
		}
	}
}

// push re-queries the collection and delivers the snapshot. It returns
// false when the feed should end.
func (s *Store) push(ctx context.Context, snapshots chan<- models.Snapshot, errs chan<- error) bool {
	snap, err := s.snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.reportStreamErr(ctx, errs, err)
		return true
	}

	select {
	case snapshots <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Store) reportStreamErr(ctx context.Context, errs chan<- error, err error) {
	s.logger.Warn(ctx, "guestbook subscription error", "error", err)
	select {
	case errs <- fmt.Errorf("%w: %v", common.ErrSubscription, err):
	default:
	}
}
