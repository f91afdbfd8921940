package session

import (
	"context"

	"github.com/aretw0/swiftnote/pkg/core"
)

// Follow reloads the snapshot for every event received until events is
// closed or ctx is done. Events originate outside this cache (another process
// writing the same data directory), so the reload cannot be reconciled
// incrementally. onChange, if non-nil, runs after each reload attempt.
func (c *Cache) Follow(ctx context.Context, events <-chan core.Event, onChange func(core.Event, error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			c.logger.Debug("external change", "event", e.String())
			err := c.Load(ctx)
			if onChange != nil {
				onChange(e, err)
			}
		}
	}
}
