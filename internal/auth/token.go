package auth

import (
	"sync"
	"time"
)

// minter is the subset of KeyPair's behavior Cache depends on; tests
// substitute a counting minter to observe how many real mints occur.
type minter interface {
	Mint(TokenClaims) (token string, iat, exp int64, err error)
}

// Cache serializes token issuance so only one mint is in flight at a
// time, and publishes the fresh token to all waiters under the same
// lock. A cached token is reused until the current Unix second passes
// its exp; only then is a fresh one minted.
//
// The fast path takes a read lock so concurrent callers with a still-valid
// token never contend; only an expired token escalates to the write lock
// that guards the actual mint, capping concurrent mints at one.
type Cache struct {
	mu    sync.RWMutex
	mint  minter
	claim TokenClaims

	token   string
	expires int64
}

// NewCache builds a token cache around a parsed keypair and the fixed
// identity claims used on every mint.
func NewCache(kp *KeyPair, claims TokenClaims) *Cache {
	return &Cache{mint: kp, claim: claims}
}

// Current returns a token guaranteed valid at the moment of return.
func (c *Cache) Current(now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}

	c.mu.RLock()
	if c.token != "" && now().Unix() <= c.expires {
		tok := c.token
		c.mu.RUnlock()
		return tok, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-read: another goroutine may have minted while we waited for
	// the write lock.
	if c.token != "" && now().Unix() <= c.expires {
		return c.token, nil
	}

	token, _, exp, err := c.mint.Mint(c.claim)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expires = exp
	return c.token, nil
}

// Invalidate forces the next Current call to mint a fresh token even if
// the cached one has not yet reached its expiry. The executor calls
// this after a 403, which the Service returns for a token that expired
// on its side before the client's own clock caught up.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expires = 0
}
