package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/common"
	"github.com/icymath/guestbook/internal/logging"
	"github.com/icymath/guestbook/internal/textx"
)

// Gateway issues guestbook mutations against the store. It runs the local
// pre-checks (sanitization, identity readiness, advisory ownership) before
// any network call and classifies collaborator failures into the shared
// error taxonomy. The gateway never retries and never touches the mirror:
// a successful mutation becomes visible through the next snapshot.
type Gateway struct {
	store     client.Store
	bootstrap *Bootstrap
	mirror    *Mirror
	logger    logging.Logger
}

func NewGateway(store client.Store, bootstrap *Bootstrap, mirror *Mirror, logger logging.Logger) *Gateway {
	return &Gateway{store: store, bootstrap: bootstrap, mirror: mirror, logger: logger}
}

// Create submits a new entry authored by the current identity. Before any
// network call it fails with common.ErrNotAuthenticated when the identity is
// not ready, and with common.ErrInvalidInput when either field is empty
// after trimming. Both fields are clamped to their bounds. The returned id
// is store-assigned; the entry appears in the mirror only once the store
// echoes it back.
func (g *Gateway) Create(ctx context.Context, authorName, message string) (string, error) {
	author, ok := g.bootstrap.CurrentIdentity()
	if !ok {
		return "", common.ErrNotAuthenticated
	}

	name := textx.Clamp(authorName, common.MaxAuthorNameLen)
	msg := textx.Clamp(message, common.MaxMessageLen)
	if name == "" || msg == "" {
		return "", common.ErrInvalidInput
	}

	id, err := g.store.Insert(ctx, author, name, msg)
	if err != nil {
		g.logger.Warn(ctx, "create refused by store", "error", err)
		return "", classify(err)
	}
	return id, nil
}

// Update rewrites the entry's display fields and refreshes its updatedAt.
//
// The ownership comparison against the mirror below is a UX convenience
// only, so an unauthorized attempt is never issued as self-authorized. The
// store's own rule layer is the actual enforcement boundary and reports a
// mismatch it detects as common.ErrRejected.
func (g *Gateway) Update(ctx context.Context, id, authorName, message string) error {
	author, ok := g.bootstrap.CurrentIdentity()
	if !ok {
		return common.ErrNotAuthenticated
	}

	name := textx.Clamp(authorName, common.MaxAuthorNameLen)
	msg := textx.Clamp(message, common.MaxMessageLen)
	if name == "" || msg == "" {
		return common.ErrInvalidInput
	}

	if err := g.checkOwnership(id, author); err != nil {
		return err
	}

	if err := g.store.Update(ctx, id, author, name, msg); err != nil {
		g.logger.Warn(ctx, "update refused by store", "id", id, "error", err)
		return classify(err)
	}
	return nil
}

// Delete removes the entry. Same ownership precondition as Update; nothing
// to sanitize.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	author, ok := g.bootstrap.CurrentIdentity()
	if !ok {
		return common.ErrNotAuthenticated
	}

	if err := g.checkOwnership(id, author); err != nil {
		return err
	}

	if err := g.store.Delete(ctx, id, author); err != nil {
		g.logger.Warn(ctx, "delete refused by store", "id", id, "error", err)
		return classify(err)
	}
	return nil
}

// CanModify reports whether the current identity owns the entry. Used to
// gate edit/delete affordances in the UI; advisory only.
func (g *Gateway) CanModify(e models.Entry) bool {
	author, ok := g.bootstrap.CurrentIdentity()
	return ok && author == e.AuthorID
}

// checkOwnership is the client-side advisory check: a target missing from
// the mirror no longer exists from the caller's point of view, and a target
// owned by someone else must not produce a network call at all.
func (g *Gateway) checkOwnership(id, author string) error {
	e, ok := g.mirror.Get(id)
	if !ok {
		return common.ErrNotFound
	}
	if e.AuthorID != author {
		return common.ErrRejected
	}
	return nil
}

// classify maps collaborator failures onto the shared taxonomy. Store
// sentinels and context errors pass through; everything else is wrapped as
// common.ErrUnknown.
func classify(err error) error {
	switch {
	case errors.Is(err, common.ErrRejected),
		errors.Is(err, common.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrUnknown, err)
	}
}
