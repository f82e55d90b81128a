// api/authorizer/cache.go
package authorizer

import (
	"sync"
	"time"

	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

type cacheKey struct {
	Credential string
	Method     string
	UserID     string
}

type cacheEntry struct {
	Decision  model.Decision
	ExpiresAt time.Time
}

// decisionCache holds recent verdicts so repeated invocations with the
// same (credential, operation) pair skip re-verification. Entries never
// outlive the credential's own validity window.
type decisionCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	maxSize int
}

func newDecisionCache(maxSize int) *decisionCache {
	return &decisionCache{
		entries: make(map[cacheKey]cacheEntry),
		maxSize: maxSize,
	}
}

func (c *decisionCache) Get(key cacheKey) *model.Decision {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil
	}
	decision := entry.Decision
	return &decision
}

func (c *decisionCache) Set(key cacheKey, decision model.Decision, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictExpired()
	}
	if len(c.entries) >= c.maxSize {
		return
	}
	c.entries[key] = cacheEntry{Decision: decision, ExpiresAt: expiresAt}
}

// evictExpired must be called with the write lock held.
func (c *decisionCache) evictExpired() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}
