// Package services implements the guestbook synchronization core: identity
// bootstrap, the live collection mirror, the mutation gateway, and the
// single-slot edit session.
package services

import (
	"context"
	"sync"

	"github.com/icymath/guestbook/internal/client/identity"
	"github.com/icymath/guestbook/internal/logging"
)

// BootstrapState enumerates the identity bootstrap lifecycle.
type BootstrapState int

const (
	StateUninitialized BootstrapState = iota
	StatePending
	StateReady
	StateFailed
)

func (s BootstrapState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Bootstrap establishes the anonymous identity that attributes guestbook
// authorship. It registers with the identity provider and, whenever the
// provider reports no identity, asks it to mint a new anonymous session.
//
// A failed creation parks the machine in StateFailed until the provider
// notifies again; nothing here retries on its own. Until StateReady, the
// mutation gateway refuses create operations.
type Bootstrap struct {
	provider identity.Provider
	logger   logging.Logger

	mu       sync.Mutex
	state    BootstrapState
	identity string
	lastErr  error
	cancel   func()

	changed chan struct{}
}

func NewBootstrap(provider identity.Provider, logger logging.Logger) *Bootstrap {
	return &Bootstrap{
		provider: provider,
		logger:   logger,
		state:    StateUninitialized,
		changed:  make(chan struct{}, 1),
	}
}

// Start registers for identity notifications. The current identity state is
// delivered immediately; Stop unregisters.
func (b *Bootstrap) Start(ctx context.Context) {
	cancel := b.provider.Watch(ctx, func(id string) {
		b.onNotification(ctx, id)
	})

	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
}

// Stop unregisters from the identity provider. The last observed state
// remains readable.
func (b *Bootstrap) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (b *Bootstrap) onNotification(ctx context.Context, id string) {
	if id != "" {
		b.setReady(ctx, id)
		return
	}

	b.setState(ctx, StatePending, "", nil)

	created, err := b.provider.CreateAnonymous(ctx)
	if err != nil {
		// Advisory failure: the rest of the app keeps running, creates
		// stay blocked until the provider notifies again.
		b.setState(ctx, StateFailed, "", err)
		return
	}

	// The provider also notifies watchers with the new identity; setting
	// READY here as well keeps the machine correct for providers that
	// only return the value.
	b.setReady(ctx, created)
}

func (b *Bootstrap) setReady(ctx context.Context, id string) {
	b.setState(ctx, StateReady, id, nil)
}

func (b *Bootstrap) setState(ctx context.Context, state BootstrapState, id string, err error) {
	b.mu.Lock()
	if b.state == state && b.identity == id {
		b.mu.Unlock()
		return
	}
	b.state = state
	b.identity = id
	b.lastErr = err
	b.mu.Unlock()

	switch state {
	case StateFailed:
		b.logger.Error(ctx, "identity bootstrap failed", "error", err)
	case StateReady:
		b.logger.Info(ctx, "identity ready", "identity", id)
	}

	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// CurrentIdentity returns the established identity, or ok=false before
// bootstrap completes.
func (b *Bootstrap) CurrentIdentity() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity, b.state == StateReady
}

func (b *Bootstrap) IsReady() bool {
	_, ok := b.CurrentIdentity()
	return ok
}

func (b *Bootstrap) State() BootstrapState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LastError returns the error that moved the machine to StateFailed, or nil.
func (b *Bootstrap) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Changed delivers a coalesced signal whenever the bootstrap state moves.
func (b *Bootstrap) Changed() <-chan struct{} {
	return b.changed
}
