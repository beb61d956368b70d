// Package migrations embeds the PostgreSQL schema migrations for the
// guestbook collection.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
