package config

import "sync"

// Endpoint holds the endpoint URL currently in use.
type Endpoint struct {
	mu  sync.RWMutex
	url string
}

// NewEndpoint creates an Endpoint set to url.
func NewEndpoint(url string) *Endpoint {
	return &Endpoint{url: url}
}

// URL returns the current endpoint URL.
func (e *Endpoint) URL() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.url
}

// Set replaces the endpoint URL and reports whether it changed.
func (e *Endpoint) Set(url string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.url != url
	e.url = url
	return changed
}
