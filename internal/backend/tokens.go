package backend

import (
	"context"

	"github.com/vishalsinha2004/Indora-Customer/internal/store"
)

// StoreTokens adapts the persistence layer to the TokenSource contract:
// the bearer token lives wherever the session record lives, and a 401
// evicts it there.
type StoreTokens struct {
	Store store.Store
}

func (t StoreTokens) Token(ctx context.Context) (string, error) {
	return t.Store.LoadToken(ctx)
}

func (t StoreTokens) Evict(ctx context.Context) error {
	return t.Store.ClearToken(ctx)
}
