// api/util/cache_service.go

package util

import (
	"context"

	"github.com/dev-mohitbeniwal/gatekeeper/api/db"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// ICacheService is the cache capability the user service depends on.
type ICacheService interface {
	SetUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type CacheService struct{}

var _ ICacheService = &CacheService{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) SetUser(ctx context.Context, user model.User) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, userID string) error {
	return db.DeleteCachedUser(ctx, userID)
}

func (c *CacheService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return db.GetCachedUser(ctx, userID)
}
