package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/icymath/guestbook/internal/client/client"
	"github.com/icymath/guestbook/internal/client/config"
	"github.com/icymath/guestbook/internal/client/identity"
	"github.com/icymath/guestbook/internal/client/repositories/metadata"
	"github.com/icymath/guestbook/internal/client/services"
	"github.com/icymath/guestbook/internal/logging"
	"github.com/icymath/guestbook/internal/quiz"
	"github.com/icymath/guestbook/internal/store/postgres"
	"github.com/icymath/guestbook/internal/store/redis"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     client.Store
	bootstrap *services.Bootstrap
	mirror    *services.Mirror
	gateway   *services.Gateway
	session   *services.EditSession

	tally     *quiz.Tally
	rng       *rand.Rand
	question  *quiz.Question
	quizMode  quiz.Mode
	quizLevel quiz.Level

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	db, err := metadata.Open(ctx, c.IdentityDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing identity database: %w", err)
	}
	repo := metadata.NewSQLiteRepository(db)

	provider := identity.NewLocalProvider(repo, []byte(c.SecretKey), c.TokenValidity, logger)

	store, err := newStore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	bootstrap := services.NewBootstrap(provider, logger)
	mirror := services.NewMirror(store, logger)
	gateway := services.NewGateway(store, bootstrap, mirror, logger)
	session := services.NewEditSession(gateway)

	return &App{
		config:    c,
		logger:    logger,
		store:     store,
		bootstrap: bootstrap,
		mirror:    mirror,
		gateway:   gateway,
		session:   session,
		tally:     &quiz.Tally{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		quizMode:  quiz.ModeSum,
		quizLevel: quiz.LevelEasy,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

// newStore selects the shared store backend from configuration.
func newStore(ctx context.Context, c *config.Config, logger logging.Logger) (client.Store, error) {
	switch c.StoreBackend {
	case "postgres":
		return postgres.New(ctx, c.DatabaseDSN, logger)
	case "redis":
		return redis.New(ctx, c.RedisAddr, c.RedisPassword, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", c.StoreBackend)
	}
}

// Run starts the identity bootstrap and the live mirror, then hands control
// to the interactive loop. It returns when the user leaves the program.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.store.Close()

	a.bootstrap.Start(ctx)
	defer a.bootstrap.Stop()

	go func() {
		if err := a.mirror.Run(ctx); err != nil {
			a.logger.Error(ctx, "mirror stopped", "error", err)
		}
	}()

	a.Root(ctx)
}
