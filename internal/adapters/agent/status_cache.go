package agent

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/phishdash/internal/core"
	"go.uber.org/zap"
)

// StatusCache is an AgentClient that remembers the last successful status
// answer for ttl. Scans always reach the agent.
type StatusCache struct {
	client core.AgentClient
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	status    *core.AgentStatus
	expiresAt time.Time
}

// NewStatusCache creates a new status cache in front of client
func NewStatusCache(client core.AgentClient, ttl time.Duration, logger *zap.Logger) *StatusCache {
	return &StatusCache{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// RunScan forwards to the wrapped client
func (c *StatusCache) RunScan(ctx context.Context) (*core.ScanResponse, error) {
	return c.client.RunScan(ctx)
}

// Status returns the cached status while it is fresh and asks the agent otherwise
func (c *StatusCache) Status(ctx context.Context) (*core.AgentStatus, error) {
	c.mu.RLock()
	if c.status != nil && c.now().Before(c.expiresAt) {
		status := *c.status
		c.mu.RUnlock()
		return &status, nil
	}
	c.mu.RUnlock()

	status, err := c.client.Status(ctx)
	if err != nil {
		// Failures are not cached
		c.mu.Lock()
		c.status = nil
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	cached := *status
	c.status = &cached
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()

	c.logger.Debug("Cached agent status", zap.String("status", status.Status), zap.Duration("ttl", c.ttl))
	return status, nil
}
