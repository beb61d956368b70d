// Package models defines the guestbook records exchanged with the remote
// document store.
package models

import "time"

// Entry is one persisted guestbook record. ID, CreatedAt and UpdatedAt are
// assigned by the store. AuthorID is fixed at creation and names the
// anonymous visitor session that owns the record; only that session may
// update or delete it.
type Entry struct {
	ID         string
	AuthorID   string
	AuthorName string
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Snapshot is one complete, ordered view of the collection as pushed by the
// store at a point in time: newest first, ties broken by the store's own
// stable ordering.
type Snapshot struct {
	Entries []Entry
}
