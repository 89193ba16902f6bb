package creditstest

import (
	"context"
	"sync"

	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
)

type cacheEntry struct {
	credits int64
	version int64
}

// Cache is an in-memory credits.BalanceCache with the same version check as
// the Redis implementation.
type Cache struct {
	mu     sync.Mutex
	values map[string]cacheEntry

	SetErr error
}

var _ credits.BalanceCache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{values: map[string]cacheEntry{}}
}

func (c *Cache) Get(ctx context.Context, subjectID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.values[subjectID]
	return e.credits, ok, nil
}

func (c *Cache) Set(ctx context.Context, subjectID string, credits, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	if cur, ok := c.values[subjectID]; ok && cur.version >= version {
		return nil
	}
	c.values[subjectID] = cacheEntry{credits: credits, version: version}
	return nil
}

func (c *Cache) Delete(ctx context.Context, subjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, subjectID)
	return nil
}
