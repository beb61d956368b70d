package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/client/services"
	"github.com/icymath/guestbook/internal/common"
)

func (a *App) list(ctx context.Context) {
	entries := a.mirror.Entries()

	if err := a.mirror.LastError(); err != nil {
		fmt.Fprintln(a.out, "(live feed interrupted; showing last known entries)")
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries yet. Be the first to post!")
		return
	}

	for _, e := range entries {
		marker := " "
		if a.gateway.CanModify(e) {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %s: %s (%s)\n",
			marker, shortID(e.ID), e.AuthorName, e.Message, e.CreatedAt.Format("2 Jan 15:04"))
	}
}

func (a *App) post(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Your name", a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}
	message, err := GetSimpleText(a.reader, "Message", a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}

	if _, err := a.gateway.Create(ctx, name, message); err != nil {
		fmt.Fprintln(a.out, advisoryMessage(err))
		return
	}
	fmt.Fprintln(a.out, "Posted.")
}

func (a *App) edit(ctx context.Context) {
	key, err := GetSimpleText(a.reader, "Entry id to edit", a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}

	e, err := findEntry(a.mirror.Entries(), key)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	if !a.gateway.CanModify(e) {
		fmt.Fprintln(a.out, "You can only edit your own entries.")
		return
	}

	a.session.StartEdit(e)

	name, err := GetSimpleText(a.reader, fmt.Sprintf("Name [%s] (empty keeps current)", e.AuthorName), a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}
	if name != "" {
		_ = a.session.SetName(name)
	}

	message, err := GetSimpleText(a.reader, fmt.Sprintf("Message [%s] (empty keeps current)", e.Message), a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}
	if message != "" {
		_ = a.session.SetMessage(message)
	}

	fmt.Fprintf(a.out, "Editing %s: type 'save' to publish or 'cancel' to discard\n", shortID(e.ID))
}

func (a *App) save(ctx context.Context) {
	if err := a.session.Save(ctx); err != nil {
		fmt.Fprintln(a.out, advisoryMessage(err))
		return
	}
	fmt.Fprintln(a.out, "Saved.")
}

func (a *App) cancelEdit() {
	a.session.Cancel()
	fmt.Fprintln(a.out, "Edit discarded.")
}

func (a *App) delete(ctx context.Context) {
	key, err := GetSimpleText(a.reader, "Entry id to delete", a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}

	e, err := findEntry(a.mirror.Entries(), key)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	confirm, err := GetSimpleText(a.reader, fmt.Sprintf("Delete the entry by %s? (y/n)", e.AuthorName), a.out)
	if err != nil {
		a.logger.Error(ctx, "input error", "error", err)
		return
	}
	if confirm != "y" && confirm != "yes" {
		fmt.Fprintln(a.out, "Kept.")
		return
	}

	if err := a.gateway.Delete(ctx, e.ID); err != nil {
		fmt.Fprintln(a.out, advisoryMessage(err))
		return
	}
	fmt.Fprintln(a.out, "Deleted.")
}

// findEntry resolves a user-typed id against the mirrored entries. An exact
// id wins; otherwise a unique prefix is accepted.
func findEntry(entries []models.Entry, key string) (models.Entry, error) {
	if key == "" {
		return models.Entry{}, errors.New("no id given")
	}

	var matches []models.Entry
	for _, e := range entries {
		if e.ID == key {
			return e, nil
		}
		if strings.HasPrefix(e.ID, key) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Entry{}, fmt.Errorf("no entry matches %q", key)
	default:
		return models.Entry{}, fmt.Errorf("%q is ambiguous, type more of the id", key)
	}
}

// advisoryMessage turns a gateway error into a short line for the user.
func advisoryMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return "Nothing to send: the message is empty."
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Still connecting, try again in a moment."
	case errors.Is(err, common.ErrNotFound):
		return "That entry no longer exists."
	case errors.Is(err, common.ErrRejected):
		return "The store refused the change: you can only change your own entries."
	case errors.Is(err, services.ErrNoEditSession):
		return "No edit in progress. Use 'edit' first."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
