// test/mock/cache.go
package mock

import (
	"context"
	"sync"

	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// InMemoryCacheService substitutes the Redis-backed cache in unit tests.
type InMemoryCacheService struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewInMemoryCacheService() *InMemoryCacheService {
	return &InMemoryCacheService{users: make(map[string]model.User)}
}

func (c *InMemoryCacheService) SetUser(ctx context.Context, user model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.UserID] = user
	return nil
}

func (c *InMemoryCacheService) DeleteUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, userID)
	return nil
}

func (c *InMemoryCacheService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	user, ok := c.users[userID]
	if !ok {
		return nil, nil
	}
	found := user
	return &found, nil
}
