package account

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema.
// Increment this when the cached data structure changes to auto-invalidate old entries.
const CacheSchemaVersion = "1.0"

type cachedAccountEntry struct {
	Version  string
	Account  *domain.Account
	CachedAt time.Time
}

// accountCache keeps resolved accounts and, for a shorter time, names that
// resolved to nothing.
type accountCache struct {
	hits   *expirable.LRU[string, *cachedAccountEntry]
	misses *expirable.LRU[string, time.Time]
}

func newAccountCache(size int, ttl, missTTL time.Duration) *accountCache {
	return &accountCache{
		hits:   expirable.NewLRU[string, *cachedAccountEntry](size, nil, ttl),
		misses: expirable.NewLRU[string, time.Time](size, nil, missTTL),
	}
}

func cacheKey(gameName string) string {
	return strings.ToLower(strings.TrimSpace(gameName))
}

// Get returns the cached account. known is true for a cached miss as well,
// in which case the account is nil.
func (c *accountCache) Get(gameName string) (account *domain.Account, known bool) {
	key := cacheKey(gameName)
	if entry, ok := c.hits.Get(key); ok {
		if entry.Version != CacheSchemaVersion {
			c.hits.Remove(key)
			return nil, false
		}
		return entry.Account, true
	}
	if _, ok := c.misses.Get(key); ok {
		return nil, true
	}
	return nil, false
}

func (c *accountCache) Set(gameName string, account *domain.Account) {
	key := cacheKey(gameName)
	c.misses.Remove(key)
	c.hits.Add(key, &cachedAccountEntry{
		Version:  CacheSchemaVersion,
		Account:  account,
		CachedAt: time.Now(),
	})
}

func (c *accountCache) SetMiss(gameName string) {
	c.misses.Add(cacheKey(gameName), time.Now())
}

func (c *accountCache) Invalidate(gameName string) {
	key := cacheKey(gameName)
	c.hits.Remove(key)
	c.misses.Remove(key)
}
