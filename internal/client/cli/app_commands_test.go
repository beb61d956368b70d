package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/models"
	"github.com/icymath/guestbook/internal/client/services"
	"github.com/icymath/guestbook/internal/logging"
	"github.com/icymath/guestbook/internal/quiz"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubProvider reports a fixed identity as soon as it is watched.
type stubProvider struct {
	id string
}

func (p *stubProvider) Watch(ctx context.Context, fn func(identity string)) (cancel func()) {
	fn(p.id)
	return func() {}
}

func (p *stubProvider) CreateAnonymous(ctx context.Context) (string, error) {
	return p.id, nil
}

// stubStore serves one fixed snapshot.
type stubStore struct {
	snapshot models.Snapshot
}

func (s *stubStore) Subscribe(ctx context.Context) (*client.Subscription, error) {
	snapshots := make(chan models.Snapshot, 1)
	errs := make(chan error)
	snapshots <- s.snapshot
	return client.NewSubscription(snapshots, errs, func() {}), nil
}

func (s *stubStore) Insert(ctx context.Context, authorID, name, message string) (string, error) {
	return "new-id", nil
}

func (s *stubStore) Update(ctx context.Context, id, authorID, name, message string) error {
	return nil
}

func (s *stubStore) Delete(ctx context.Context, id, authorID string) error {
	return nil
}

func (s *stubStore) Close() error { return nil }

func newTestApp(t *testing.T, store client.Store, visitorID string, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()

	logger := testLogger()
	bootstrap := services.NewBootstrap(&stubProvider{id: visitorID}, logger)
	mirror := services.NewMirror(store, logger)
	gateway := services.NewGateway(store, bootstrap, mirror, logger)

	out := &bytes.Buffer{}
	app := &App{
		logger:    logger,
		store:     store,
		bootstrap: bootstrap,
		mirror:    mirror,
		gateway:   gateway,
		session:   services.NewEditSession(gateway),
		tally:     &quiz.Tally{},
		rng:       rand.New(rand.NewSource(1)),
		quizMode:  quiz.ModeSum,
		quizLevel: quiz.LevelEasy,
		reader:    readerFromLines(lines...),
		out:       out,
	}
	return app, out
}

func startMirror(t *testing.T, app *App) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	updates := app.mirror.Updates()
	go func() { _ = app.mirror.Run(ctx) }()

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}
}

// ------------ tests ------------

func TestRootHelpAndExit(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1", "help", "exit")

	app.Root(context.Background())

	assert.Contains(t, out.String(), "Guestbook: (l)ist, post, edit, save, cancel, delete")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRootUnknownCommand(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1", "frobnicate", "exit")

	app.Root(context.Background())

	assert.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestListEmpty(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1")

	app.list(context.Background())

	assert.Contains(t, out.String(), "No entries yet")
}

func TestListMarksOwnEntries(t *testing.T) {
	store := &stubStore{snapshot: models.Snapshot{Entries: []models.Entry{
		{ID: "aaa111", AuthorID: "visitor-1", AuthorName: "Tia Maria", Message: "oi", CreatedAt: time.Now()},
		{ID: "bbb222", AuthorID: "visitor-2", AuthorName: "Mel", Message: "tchau", CreatedAt: time.Now()},
	}}}

	app, out := newTestApp(t, store, "visitor-1")
	app.bootstrap.Start(context.Background())
	startMirror(t, app)

	app.list(context.Background())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* aaa111"))
	assert.True(t, strings.HasPrefix(lines[1], "  bbb222"))
}

func TestQuizCorrectAnswer(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1")

	app.startQuiz([]string{"sum", "easy"})
	require.NotNil(t, app.question)

	app.answer([]string{strconv.Itoa(app.question.Answer)})

	assert.Equal(t, 1, app.tally.Correct)
	assert.Equal(t, 10, app.tally.Score)
	assert.Contains(t, out.String(), "Correct! +10 points")
	// a fresh question is ready
	require.NotNil(t, app.question)
}

func TestQuizWrongAnswer(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1")

	app.startQuiz(nil)
	require.NotNil(t, app.question)

	app.answer([]string{strconv.Itoa(app.question.Answer + 1)})

	assert.Equal(t, 1, app.tally.Wrong)
	assert.Equal(t, 0, app.tally.Score)
	assert.Equal(t, 0, app.tally.Streak)
	assert.Contains(t, out.String(), "Not quite")
}

func TestQuizAnswerWithoutQuestion(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1")

	app.answer([]string{"5"})

	assert.Contains(t, out.String(), "No question yet")
}

func TestQuizScoreAndReset(t *testing.T) {
	app, out := newTestApp(t, &stubStore{}, "visitor-1")

	app.startQuiz(nil)
	app.answer([]string{strconv.Itoa(app.question.Answer)})
	app.score()
	assert.Contains(t, out.String(), "Score 10")

	app.resetScore()
	assert.Equal(t, 0, app.tally.Score)
	assert.Nil(t, app.question)
}

func TestStatusShowsShortVisitorID(t *testing.T) {
	app, _ := newTestApp(t, &stubStore{}, "0f8fad5b-d9cb-469f-a165-70867728950e")
	app.bootstrap.Start(context.Background())

	assert.Equal(t, "(0f8fad5b)", app.getStatus())
}
