package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeProvider scripts the identity collaborator: it delivers initial on
// Watch and the preset result on CreateAnonymous.
type fakeProvider struct {
	mu       sync.Mutex
	watchers []func(string)

	initial     string
	createID    string
	createErr   error
	createCalls int
}

func (p *fakeProvider) Watch(ctx context.Context, fn func(string)) func() {
	p.mu.Lock()
	p.watchers = append(p.watchers, fn)
	p.mu.Unlock()
	fn(p.initial)
	return func() {}
}

func (p *fakeProvider) CreateAnonymous(ctx context.Context) (string, error) {
	p.mu.Lock()
	p.createCalls++
	p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.createID, nil
}

// notify simulates a later identity-provider notification.
func (p *fakeProvider) notify(id string) {
	p.mu.Lock()
	watchers := append([]func(string){}, p.watchers...)
	p.mu.Unlock()
	for _, fn := range watchers {
		fn(id)
	}
}

type mutationCall struct {
	id      string
	author  string
	name    string
	message string
}

// fakeStore records mutations and lets tests script the snapshot feed.
type fakeStore struct {
	mu          sync.Mutex
	insertCalls []mutationCall
	updateCalls []mutationCall
	deleteCalls []mutationCall

	insertID  string
	insertErr error
	updateErr error
	deleteErr error
	subErr    error

	snaps      chan models.Snapshot
	errs       chan error
	stopCalled bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		insertID: "generated-id",
		snaps:    make(chan models.Snapshot, 8),
		errs:     make(chan error, 8),
	}
}

func (s *fakeStore) Subscribe(ctx context.Context) (*client.Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	return client.NewSubscription(s.snaps, s.errs, func() {
		s.mu.Lock()
		s.stopCalled = true
		s.mu.Unlock()
	}), nil
}

func (s *fakeStore) Insert(ctx context.Context, authorID, name, message string) (string, error) {
	s.mu.Lock()
	s.insertCalls = append(s.insertCalls, mutationCall{author: authorID, name: name, message: message})
	s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	return s.insertID, nil
}

func (s *fakeStore) Update(ctx context.Context, id, authorID, name, message string) error {
	s.mu.Lock()
	s.updateCalls = append(s.updateCalls, mutationCall{id: id, author: authorID, name: name, message: message})
	s.mu.Unlock()
	return s.updateErr
}

func (s *fakeStore) Delete(ctx context.Context, id, authorID string) error {
	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, mutationCall{id: id, author: authorID})
	s.mu.Unlock()
	return s.deleteErr
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) push(snap models.Snapshot) {
	s.snaps <- snap
}

func (s *fakeStore) pushErr(err error) {
	s.errs <- err
}

func (s *fakeStore) finish() {
	close(s.snaps)
	close(s.errs)
}

func (s *fakeStore) calls() (inserts, updates, deletes []mutationCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mutationCall{}, s.insertCalls...),
		append([]mutationCall{}, s.updateCalls...),
		append([]mutationCall{}, s.deleteCalls...)
}

// readyBootstrap returns a bootstrap already in StateReady with the given
// identity.
func readyBootstrap(t *testing.T, id string) *Bootstrap {
	t.Helper()
	b := NewBootstrap(&fakeProvider{initial: id}, testLogger())
	b.Start(context.Background())
	t.Cleanup(b.Stop)
	return b
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
}
