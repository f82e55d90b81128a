// test/mock/user_dao.go
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// InMemoryUserDAO is a keyed record store backed by a map, substituting
// for the live store in unit tests. It honors the same conflict and
// not-found semantics as the real DAO.
type InMemoryUserDAO struct {
	mu    sync.RWMutex
	users map[string]model.User

	// FailReads simulates a transient store outage for read operations
	FailReads bool
}

func NewInMemoryUserDAO() *InMemoryUserDAO {
	return &InMemoryUserDAO{users: make(map[string]model.User)}
}

func (d *InMemoryUserDAO) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[user.UserID]; exists {
		return nil, gk_errors.ErrUserConflict
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	d.users[user.UserID] = user
	created := user
	return &created, nil
}

func (d *InMemoryUserDAO) UpdateUser(ctx context.Context, user model.User) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, exists := d.users[user.UserID]
	if !exists {
		return nil, gk_errors.ErrUserNotFound
	}

	existing.Attributes = user.Attributes
	existing.UpdatedAt = time.Now()
	d.users[user.UserID] = existing
	updated := existing
	return &updated, nil
}

func (d *InMemoryUserDAO) DeleteUser(ctx context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[userID]; !exists {
		return gk_errors.ErrUserNotFound
	}
	delete(d.users, userID)
	return nil
}

func (d *InMemoryUserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.FailReads {
		return nil, gk_errors.ErrDatabaseOperation
	}

	user, exists := d.users[userID]
	if !exists {
		return nil, gk_errors.ErrUserNotFound
	}
	found := user
	return &found, nil
}

func (d *InMemoryUserDAO) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.FailReads {
		return nil, gk_errors.ErrDatabaseOperation
	}

	keys := make([]string, 0, len(d.users))
	for key := range d.users {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var users []*model.User
	for i, key := range keys {
		if i < offset {
			continue
		}
		if len(users) >= limit {
			break
		}
		user := d.users[key]
		users = append(users, &user)
	}
	return users, nil
}
