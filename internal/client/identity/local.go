package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/icymath/guestbook/internal/client/repositories/metadata"
	"github.com/icymath/guestbook/internal/logging"
)

// tokenKey is the metadata slot holding the signed identity token.
const tokenKey = "identity_token"

// LocalProvider keeps the anonymous identity in a signed JWT persisted in
// the client's metadata cache, so the same visitor identity survives across
// runs until the token expires. An expired or unreadable token is reported
// as "no identity"; the bootstrap service then asks for a fresh one.
type LocalProvider struct {
	repo     metadata.Repository
	secret   []byte
	validity time.Duration
	logger   logging.Logger

	mu       sync.Mutex
	current  string
	loaded   bool
	nextID   int
	watchers map[int]func(string)
}

func NewLocalProvider(repo metadata.Repository, secret []byte, validity time.Duration, logger logging.Logger) *LocalProvider {
	return &LocalProvider{
		repo:     repo,
		secret:   secret,
		validity: validity,
		logger:   logger,
		watchers: make(map[int]func(string)),
	}
}

// Watch registers fn and synchronously delivers the current identity, or ""
// when none is persisted. The returned cancel unregisters fn.
func (p *LocalProvider) Watch(ctx context.Context, fn func(identity string)) (cancel func()) {
	p.mu.Lock()
	if !p.loaded {
		p.current = p.load(ctx)
		p.loaded = true
	}
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// CreateAnonymous mints a fresh visitor ID, signs and persists its token,
// and notifies all watchers with the new identity.
func (p *LocalProvider) CreateAnonymous(ctx context.Context) (string, error) {
	visitorID := uuid.NewString()

	token, err := GenerateToken(visitorID, p.secret, p.validity)
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	if err := p.repo.Set(ctx, tokenKey, []byte(token)); err != nil {
		return "", fmt.Errorf("token persisting error: %w", err)
	}

	p.mu.Lock()
	p.current = visitorID
	p.loaded = true
	watchers := make([]func(string), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(visitorID)
	}

	return visitorID, nil
}

// load reads the persisted token and extracts its visitor ID. Any failure
// (missing slot, expired token, bad signature) means "no identity".
func (p *LocalProvider) load(ctx context.Context) string {
	raw, err := p.repo.Get(ctx, tokenKey)
	if err != nil {
		p.logger.Warn(ctx, "reading persisted identity failed", "error", err)
		return ""
	}
	if raw == nil {
		return ""
	}

	visitorID, err := VisitorIDFromToken(string(raw), p.secret)
	if err != nil {
		p.logger.Info(ctx, "persisted identity token no longer valid", "error", err)
		return ""
	}
	return visitorID
}
