// Package identity establishes the anonymous visitor identity used to
// attribute guestbook authorship, and persists it across runs.
package identity

import "context"

// Provider is the identity collaborator consumed by the bootstrap service.
//
// Watch registers fn and immediately delivers the current identity, or ""
// when none exists; fn is invoked again on every later change. The returned
// cancel function unregisters fn. CreateAnonymous mints a new anonymous
// session, notifies watchers, and returns the new identity.
type Provider interface {
	Watch(ctx context.Context, fn func(identity string)) (cancel func())
	CreateAnonymous(ctx context.Context) (string, error)
}
