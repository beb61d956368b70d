package services

import (
	"context"
	"errors"

	"github.com/icymath/guestbook/internal/client/models"
)

// ErrNoEditSession is returned by draft operations when no edit is in
// progress.
var ErrNoEditSession = errors.New("no edit in progress")

// EditSession is the single-slot "currently editing" state: idle, or
// editing one target entry with in-progress draft values. It is a plain
// value object owned by whichever view renders the list — not ambient
// global state — so independent views never collide. It is not safe for
// concurrent use; one view owns it.
type EditSession struct {
	gateway *Gateway

	editing      bool
	targetID     string
	draftName    string
	draftMessage string
}

func NewEditSession(gateway *Gateway) *EditSession {
	return &EditSession{gateway: gateway}
}

// StartEdit seeds the session from the entry's persisted values, replacing
// any edit already in progress. At most one concurrent edit is supported.
func (s *EditSession) StartEdit(e models.Entry) {
	s.editing = true
	s.targetID = e.ID
	s.draftName = e.AuthorName
	s.draftMessage = e.Message
}

func (s *EditSession) Editing() bool {
	return s.editing
}

func (s *EditSession) TargetID() string {
	return s.targetID
}

// Draft returns the in-progress values. Only meaningful while editing.
func (s *EditSession) Draft() (name, message string) {
	return s.draftName, s.draftMessage
}

// SetName updates the draft author name. Length bounds are applied at save
// time by the gateway, not here.
func (s *EditSession) SetName(v string) error {
	if !s.editing {
		return ErrNoEditSession
	}
	s.draftName = v
	return nil
}

// SetMessage updates the draft message text.
func (s *EditSession) SetMessage(v string) error {
	if !s.editing {
		return ErrNoEditSession
	}
	s.draftMessage = v
	return nil
}

// Cancel discards the draft and returns to idle. It always succeeds,
// including when the target has meanwhile vanished from the mirror.
func (s *EditSession) Cancel() {
	*s = EditSession{gateway: s.gateway}
}

// Save submits the draft through the gateway. On success the session
// returns to idle. On any failure it stays in the editing state with the
// draft intact, so nothing the user typed is lost and they can retry or
// cancel.
func (s *EditSession) Save(ctx context.Context) error {
	if !s.editing {
		return ErrNoEditSession
	}

	if err := s.gateway.Update(ctx, s.targetID, s.draftName, s.draftMessage); err != nil {
		return err
	}

	s.Cancel()
	return nil
}
