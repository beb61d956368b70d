// Package postgres implements the guestbook document store over PostgreSQL.
// Mutations go through database/sql with the pgx stdlib driver. The live
// subscription pairs LISTEN/NOTIFY on a dedicated pgx connection with a full
// re-query per notification, so every push downstream is a wholesale
// snapshot in server order. A trigger installed by the migrations fires the
// notification for writes from this and every other session.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/common"
	"github.com/icymath/guestbook/internal/logging"
	"github.com/icymath/guestbook/internal/store/postgres/migrations"
)

// notifyChannel is the LISTEN/NOTIFY channel the schema trigger publishes
// on. Must match the migration.
const notifyChannel = common.CollectionName + "_changed"

type Store struct {
	db     *sql.DB
	dsn    string
	logger logging.Logger
}

// New opens the database, runs the embedded migrations and returns a ready
// store.
func New(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{db: db, dsn: dsn, logger: logger}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Insert creates a new record with a store-assigned id and timestamps. The
// change trigger notifies all live subscriptions, including this client's.
func (s *Store) Insert(ctx context.Context, authorID, name, message string) (string, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO guestbook_entries (id, author_id, author_name, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now());
	`
	if _, err := s.db.ExecContext(ctx, query, id, authorID, name, message); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrRejected, err)
	}

	return id, nil
}

// Update rewrites the display fields and refreshes updated_at, but only for
// the row whose author matches the caller's credential. This WHERE clause is
// the store-side enforcement boundary.
func (s *Store) Update(ctx context.Context, id, authorID, name, message string) error {
	query := `
		UPDATE guestbook_entries
		SET author_name = $3, message = $4, updated_at = now()
		WHERE id = $1 AND author_id = $2;
	`
	res, err := s.db.ExecContext(ctx, query, id, authorID, name, message)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRejected, err)
	}
	return s.checkAffected(ctx, res, id)
}

// Delete removes the row under the same ownership condition as Update.
func (s *Store) Delete(ctx context.Context, id, authorID string) error {
	query := `DELETE FROM guestbook_entries WHERE id = $1 AND author_id = $2;`

	res, err := s.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRejected, err)
	}
	return s.checkAffected(ctx, res, id)
}

func (s *Store) checkAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return s.mutationRefused(ctx, id)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// mutationRefused distinguishes a missing row from an ownership mismatch so
// callers see ErrNotFound vs ErrRejected.
func (s *Store) mutationRefused(ctx context.Context, id string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM guestbook_entries WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return common.ErrNotFound
	}
	return common.ErrRejected
}

// snapshot reads the full collection in server order: newest first, ties
// broken by id so the order is stable within one snapshot.
func (s *Store) snapshot(ctx context.Context) (models.Snapshot, error) {
	query := `
		SELECT id, author_id, author_name, message, created_at, updated_at
		FROM guestbook_entries
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.AuthorID, &e.AuthorName, &e.Message, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return models.Snapshot{}, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{Entries: entries}, nil
}
