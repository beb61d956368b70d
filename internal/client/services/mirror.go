package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/common"
	"github.com/icymath/guestbook/internal/logging"
)

// Mirror maintains the authoritative local replica of the guestbook
// collection. Each snapshot from the store replaces the previous contents
// wholesale in the server-given order; there is no client-side merge, so a
// locally issued write becomes visible only once the store echoes it back.
//
// Stream errors are advisory: they are logged and recorded, and the
// last-known-good contents stay in place (stale-but-available beats empty).
type Mirror struct {
	store  client.Store
	logger logging.Logger

	mu      sync.RWMutex
	entries []models.Entry
	byID    map[string]models.Entry
	version uint64
	lastErr error

	updates chan struct{}
}

func NewMirror(store client.Store, logger logging.Logger) *Mirror {
	return &Mirror{
		store:   store,
		logger:  logger,
		updates: make(chan struct{}, 1),
	}
}

// Run opens the subscription and applies snapshots until ctx is cancelled or
// the feed ends. Snapshots are applied strictly in arrival order.
func (m *Mirror) Run(ctx context.Context) error {
	sub, err := m.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("opening subscription: %w", err)
	}
	defer sub.Close()

	snapshots := sub.Snapshots()
	errs := sub.Errs()

	for snapshots != nil || errs != nil {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			m.apply(ctx, snap)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			m.recordErr(ctx, err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// apply replaces the whole mirror with the snapshot's contents.
func (m *Mirror) apply(ctx context.Context, snap models.Snapshot) {
	entries := slices.Clone(snap.Entries)
	byID := make(map[string]models.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	m.mu.Lock()
	m.entries = entries
	m.byID = byID
	m.version++
	m.lastErr = nil
	version := m.version
	m.mu.Unlock()

	m.logger.Debug(ctx, "applied snapshot", "version", version, "entries", len(entries))

	select {
	case m.updates <- struct{}{}:
	default:
	}
}

func (m *Mirror) recordErr(ctx context.Context, err error) {
	wrapped := err
	if !errors.Is(err, common.ErrSubscription) {
		wrapped = fmt.Errorf("%w: %v", common.ErrSubscription, err)
	}

	m.mu.Lock()
	m.lastErr = wrapped
	m.mu.Unlock()

	m.logger.Warn(ctx, "subscription error, keeping last-known-good entries", "error", err)
}

// Entries returns a copy of the current ordered contents, safe to render
// from at any time.
func (m *Mirror) Entries() []models.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

// Get looks up one entry by id in the current snapshot.
func (m *Mirror) Get(id string) (models.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	return e, ok
}

// Version counts applied snapshots; it only ever grows. Zero means no
// snapshot has arrived yet.
func (m *Mirror) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// LastError reports the advisory error from the most recent stream failure.
// It clears once a snapshot is applied again.
func (m *Mirror) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Updates delivers a coalesced signal after each applied snapshot;
// consumers re-read Entries rather than receiving deltas.
func (m *Mirror) Updates() <-chan struct{} {
	return m.updates
}
