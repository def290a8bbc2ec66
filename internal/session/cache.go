// Package session caches the connection to the inference endpoint.
package session

import (
	"context"
	"sync"

	"foodrec/internal/log"
	"foodrec/internal/metrics"
)

// Session is a live handle to an inference endpoint.
type Session interface {
	Predict(ctx context.Context, endpoint string, args map[string]any) (any, error)
}

// Connector establishes sessions.
type Connector interface {
	Connect(ctx context.Context, endpointURL string) (Session, error)
}

// Cache holds at most one session. It is either empty or holds the session
// established for one endpoint URL; there is no expiry.
type Cache struct {
	connector Connector

	mu   sync.Mutex
	held Session
	url  string
}

// NewCache creates an empty Cache.
func NewCache(connector Connector) *Cache {
	return &Cache{connector: connector}
}

// Get returns the held session for endpointURL, establishing one if the
// cache is empty or holds a session for another URL. On failure the cache
// is left empty.
func (c *Cache) Get(ctx context.Context, endpointURL string) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held != nil && c.url == endpointURL {
		return c.held, nil
	}
	c.held, c.url = nil, ""

	s, err := c.connector.Connect(ctx, endpointURL)
	if err != nil {
		return nil, err
	}
	c.held, c.url = s, endpointURL
	metrics.IncSessionEstablished()

	logger := log.WithContext(ctx, log.WithComponent("session"))
	logger.Debug().Str("endpoint", endpointURL).Msg("session established")
	return s, nil
}

// Invalidate drops the held session unconditionally.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held != nil {
		metrics.IncSessionInvalidated()
	}
	c.held, c.url = nil, ""
}

// Held reports whether a session is cached.
func (c *Cache) Held() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held != nil
}
