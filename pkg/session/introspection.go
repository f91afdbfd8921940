package session

import (
	"github.com/aretw0/introspection"
)

// CacheState exposes internal state for observability.
type CacheState struct {
	Status    string `json:"status"`
	Loading   bool   `json:"loading"`
	Snapshot  int    `json:"snapshot"`
	Visible   int    `json:"visible"`
	Query     string `json:"query,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Cache) State() any {
	visible := len(c.Notes())

	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheState{
		Status:    c.status.String(),
		Loading:   c.loading,
		Snapshot:  len(c.notes),
		Visible:   visible,
		Query:     c.query,
		LastError: c.lastErr,
	}
}

// ComponentType implements introspection.Component.
func (c *Cache) ComponentType() string {
	return "session-cache"
}

var _ introspection.Introspectable = (*Cache)(nil)
var _ introspection.Component = (*Cache)(nil)
