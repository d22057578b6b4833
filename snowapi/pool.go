package snowapi

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// connPool bounds concurrent use of a shared *http.Client to
// MaxConnections in-flight requests. Go's http.Transport already pools
// the underlying TCP connections, so the pool here is a request-slot
// semaphore rather than a literal set of connection objects. The
// whole-request timeout is left to the transport (dial/TLS/response-
// header timeouts); connectTimeout instead bounds only the slot
// checkout itself.
type connPool struct {
	once           sync.Once
	client         *http.Client
	slots          chan struct{}
	size           int
	connectTimeout time.Duration
}

func newConnPool(size int, connectTimeout time.Duration) *connPool {
	return &connPool{
		size:           size,
		connectTimeout: connectTimeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        size,
				MaxIdleConnsPerHost: size,
				MaxConnsPerHost:     size,
			},
		},
	}
}

// lazyInit constructs the slot channel on first use.
func (p *connPool) lazyInit() {
	p.once.Do(func() {
		p.slots = make(chan struct{}, p.size)
	})
}

// Do acquires a slot, runs fn with the pooled client, and always
// releases the slot. Acquisition blocked past connectTimeout, or past
// ctx's own deadline if that comes first, surfaces as
// ConnectionStarvedError; a transport failure inside fn surfaces as
// ConnectionError.
func (p *connPool) Do(ctx context.Context, fn func(*http.Client) error) error {
	p.lazyInit()

	checkoutCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	select {
	case p.slots <- struct{}{}:
	case <-checkoutCtx.Done():
		return newConnectionStarvedError("timed out waiting for a free connection", map[string]any{
			"max_connections": p.size,
			"connect_timeout": p.connectTimeout.String(),
		})
	}
	defer func() { <-p.slots }()

	if err := fn(p.client); err != nil {
		return newConnectionError(err.Error(), nil)
	}
	return nil
}
