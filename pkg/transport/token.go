package transport

import (
	"context"
	"sync"
	"time"
)

// Token is a bearer credential with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenProvider acquires a fresh bearer token. The pipeline only consumes
// tokens; acquisition (MSI, client credentials, whatever) is the caller's.
type TokenProvider func(ctx context.Context) (Token, error)

// StaticTokenProvider yields a pre-issued token on every call. The distant
// expiry keeps the cache from refreshing; rotation means swapping the
// provider, not re-invoking it.
func StaticTokenProvider(value string) TokenProvider {
	return func(ctx context.Context) (Token, error) {
		return Token{Value: value, ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
	}
}

// expirySkew refreshes slightly early so a token can't expire mid-flight.
const expirySkew = 2 * time.Minute

// tokenCache memoizes the provider's last token and refreshes it only when
// missing or expired, so steady-state publishes skip the token round-trip.
type tokenCache struct {
	provider TokenProvider
	clock    func() time.Time

	mu    sync.Mutex
	token Token
}

func newTokenCache(provider TokenProvider) *tokenCache {
	return &tokenCache{provider: provider, clock: time.Now}
}

// Get returns a valid token, invoking the provider at most once per call.
func (c *tokenCache) Get(ctx context.Context) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Value != "" && c.clock().Add(expirySkew).Before(c.token.ExpiresAt) {
		return c.token, nil
	}

	token, err := c.provider(ctx)
	if err != nil {
		return Token{}, err
	}
	c.token = token
	return token, nil
}
