// Package redis implements the guestbook document store over Redis. Entries
// live as JSON values under per-entry keys, a sorted set keeps the server
// order (newest first), and a pub/sub channel carries change notifications
// for the live snapshot feed.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/common"
	"github.com/icymath/guestbook/internal/logging"
)

const (
	entryKeyPrefix = common.CollectionName + ":entry:"
	orderKey       = common.CollectionName + ":order"
	changedChannel = common.CollectionName + ":changed"
)

// entryRecord is the stored JSON shape of one guestbook entry.
type entryRecord struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	rdb    *redis.Client
	logger logging.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, addr, password string, logger logging.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}

	return &Store{rdb: rdb, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func entryKey(id string) string {
	return entryKeyPrefix + id
}

// Insert creates a new record with a store-assigned id and timestamps, and
// publishes a change notification for all live subscriptions.
func (s *Store) Insert(ctx context.Context, authorID, name, message string) (string, error) {
	now := time.Now().UTC()
	rec := entryRecord{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Name:      name,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshalling error: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, entryKey(rec.ID), data, 0)
	pipe.ZAdd(ctx, orderKey, redis.Z{Score: float64(now.UnixNano()), Member: rec.ID})
	pipe.Publish(ctx, changedChannel, rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrRejected, err)
	}

	return rec.ID, nil
}

// Update rewrites the display fields of an entry owned by the caller. The
// read-check-write on the stored authorId is the store-side enforcement
// boundary.
func (s *Store) Update(ctx context.Context, id, authorID, name, message string) error {
	rec, err := s.readRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.AuthorID != authorID {
		return common.ErrRejected
	}

	rec.Name = name
	rec.Message = message
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, entryKey(id), data, 0)
	pipe.Publish(ctx, changedChannel, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRejected, err)
	}
	return nil
}

// Delete removes an entry owned by the caller.
func (s *Store) Delete(ctx context.Context, id, authorID string) error {
	rec, err := s.readRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.AuthorID != authorID {
		return common.ErrRejected
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, entryKey(id))
	pipe.ZRem(ctx, orderKey, id)
	pipe.Publish(ctx, changedChannel, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRejected, err)
	}
	return nil
}

func (s *Store) readRecord(ctx context.Context, id string) (entryRecord, error) {
	data, err := s.rdb.Get(ctx, entryKey(id)).Bytes()
	if err == redis.Nil {
		return entryRecord{}, common.ErrNotFound
	}
	if err != nil {
		return entryRecord{}, fmt.Errorf("%w: %v", common.ErrRejected, err)
	}

	var rec entryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return entryRecord{}, fmt.Errorf("unmarshalling error: %w", err)
	}
	return rec, nil
}

// snapshot reads the full collection in server order: newest first per the
// sorted-set scores.
func (s *Store) snapshot(ctx context.Context) (models.Snapshot, error) {
	ids, err := s.rdb.ZRevRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read order: %w", err)
	}
	if len(ids) == 0 {
		return models.Snapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between the range read and the fetch
			continue
		}
		var rec entryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshalling error: %w", err)
		}
		entries = append(entries, models.Entry{
			ID:         rec.ID,
			AuthorID:   rec.AuthorID,
			AuthorName: rec.Name,
			Message:    rec.Message,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		})
	}

	return models.Snapshot{Entries: entries}, nil
}

// Subscribe opens the live snapshot feed. The feed pushes one initial
// snapshot and then a fresh one per published change. Closing the
// subscription (or cancelling ctx) tears the pub/sub connection down.
func (s *Store) Subscribe(ctx context.Context) (*client.Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, changedChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe error: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	snapshots := make(chan models.Snapshot, 1)
	errs := make(chan error, 1)

	stop := func() {
		cancel()
		_ = pubsub.Close()
	}

	go s.stream(ctx, pubsub, snapshots, errs)

	return client.NewSubscription(snapshots, errs, stop), nil
}

func (s *Store) stream(ctx context.Context, pubsub *redis.PubSub, snapshots chan<- models.Snapshot, errs chan<- error) {
	defer close(snapshots)
	defer close(errs)

	if !s.push(ctx, snapshots, errs) {
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					s.reportStreamErr(ctx, errs, fmt.Errorf("pub/sub channel closed"))
				}
				return
			}
			if !s.push(ctx, snapshots, errs) {
				return
			}
		}
	}
}

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
