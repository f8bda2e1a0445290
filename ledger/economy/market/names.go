package market

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type cachedName struct {
	name      string
	timestamp time.Time
}

// nameCache keeps recently shown player names so listing the same item
// repeatedly does not hit the players table every time.
type nameCache struct {
	source     NameSource
	cache      *lru.Cache
	expiration time.Duration
	now        func() time.Time
}

func newNameCache(source NameSource, size int, expiration time.Duration, now func() time.Time) (*nameCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &nameCache{
		source:     source,
		cache:      cache,
		expiration: expiration,
		now:        now,
	}, nil
}

// resolve returns the names it knows for ids. Unknown players are left out.
func (c *nameCache) resolve(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if c.source == nil || len(ids) == 0 {
		return names, nil
	}

	var missing []int64
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if cached, ok := c.cache.Get(id); ok {
			if n, ok := cached.(cachedName); ok && c.now().Sub(n.timestamp) < c.expiration {
				names[id] = n.name
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := c.source.GetNames(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player names: %w", err)
	}
	now := c.now()
	for id, name := range fetched {
		c.cache.Add(id, cachedName{name: name, timestamp: now})
		names[id] = name
	}
	return names, nil
}
