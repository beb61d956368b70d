// Package client defines the interface through which the guestbook talks to
// the remote document store. Concrete backends live under internal/store.
package client

import (
	"context"
	"sync"

	"github.com/icymath/guestbook/internal/client/models"
)

// Store is the remote document-store collaborator.
//
// Contract:
//   - Subscribe opens one long-lived snapshot feed for the collection,
//     ordered by creation time descending.
//   - Insert creates a record with store-assigned id and timestamps.
//   - Update and Delete take the caller's identity token as the author
//     credential; the store's own rule layer verifies it against the
//     record and reports a mismatch as common.ErrRejected and a missing
//     record as common.ErrNotFound.
//   - Each mutation is atomic on a single record; concurrent updates are
//     last-writer-wins.
//
// All methods must honor context cancellation/timeouts.
type Store interface {
	Subscribe(ctx context.Context) (*Subscription, error)
	Insert(ctx context.Context, authorID, name, message string) (string, error)
	Update(ctx context.Context, id, authorID, name, message string) error
	Delete(ctx context.Context, id, authorID string) error
	Close() error
}

// Subscription is one live snapshot feed. Snapshots carries complete
// collection views in the order the store produced them; Errs carries
// advisory stream errors. Both channels are closed when the feed ends.
// Close tears the feed down and is safe to call more than once.
type Subscription struct {
	snapshots <-chan models.Snapshot
	errs      <-chan error
	stop      func()
	once      sync.Once
}

// NewSubscription wraps backend-owned channels into a Subscription. stop is
// invoked exactly once, on the first Close call.
func NewSubscription(snapshots <-chan models.Snapshot, errs <-chan error, stop func()) *Subscription {
	return &Subscription{snapshots: snapshots, errs: errs, stop: stop}
}

func (s *Subscription) Snapshots() <-chan models.Snapshot {
	return s.snapshots
}

func (s *Subscription) Errs() <-chan error {
	return s.errs
}

func (s *Subscription) Close() {
	s.once.Do(s.stop)
}
