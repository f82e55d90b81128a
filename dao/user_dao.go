// api/dao/user_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/gatekeeper/api/audit"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
	helper_util "github.com/dev-mohitbeniwal/gatekeeper/api/util/helper"
)

// readRetries bounds re-attempts of read-only store operations on
// transient failure. Writes are never blind-retried.
const readRetries = 2

// IUserDAO is the narrow capability set over the keyed record store.
type IUserDAO interface {
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error)
}

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

var _ IUserDAO = &UserDAO{}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	// Ensure unique constraint on the record key
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on User key")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_key IF NOT EXISTS
        FOR (u:User) REQUIRE u.userid IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on User key", zap.Error(err))
		return err
	}

	return nil
}

// CreateUser inserts a new record. The caller-supplied key must be
// unique; an existing record with the same key is a conflict, never an
// overwrite.
func (dao *UserDAO) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	start := time.Now()
	logger.Info("Creating new user", zap.String("userID", user.UserID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		existing, err := transaction.Run(
			`MATCH (u:User {userid: $userid}) RETURN u.userid`,
			map[string]interface{}{"userid": user.UserID},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gk_errors.ErrUserConflict
		}

		attributesJSON, _ := json.Marshal(user.Attributes)
		created, err := transaction.Run(
			`CREATE (u:User {userid: $userid, attributes: $attributes, createdAt: $createdAt, updatedAt: $updatedAt})
             RETURN u`,
			map[string]interface{}{
				"userid":     user.UserID,
				"attributes": string(attributesJSON),
				"createdAt":  now.Format(time.RFC3339),
				"updatedAt":  now.Format(time.RFC3339),
			},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}
		if created.Next() {
			node := created.Record().Values[0].(neo4j.Node)
			return mapNodeToUser(node)
		}
		return nil, gk_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("userID", user.UserID),
			zap.Duration("duration", duration))
		return nil, err
	}

	createdUser := result.(*model.User)
	logger.Info("User created successfully",
		zap.String("userID", createdUser.UserID),
		zap.Duration("duration", duration))

	dao.logAudit(ctx, "CREATE_USER", createdUser.UserID, createUserChangeDetails(nil, createdUser))
	return createdUser, nil
}

// UpdateUser fully replaces an existing record's attributes. A missing
// key is reported as not found, never an implicit create.
func (dao *UserDAO) UpdateUser(ctx context.Context, user model.User) (*model.User, error) {
	start := time.Now()
	logger.Info("Updating user", zap.String("userID", user.UserID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		attributesJSON, _ := json.Marshal(user.Attributes)
		updated, err := transaction.Run(
			`MATCH (u:User {userid: $userid})
             SET u.attributes = $attributes, u.updatedAt = $updatedAt
             RETURN u`,
			map[string]interface{}{
				"userid":     user.UserID,
				"attributes": string(attributesJSON),
				"updatedAt":  time.Now().Format(time.RFC3339),
			},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}
		if updated.Next() {
			node := updated.Record().Values[0].(neo4j.Node)
			return mapNodeToUser(node)
		}
		return nil, gk_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("userID", user.UserID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedUser := result.(*model.User)
	logger.Info("User updated successfully",
		zap.String("userID", updatedUser.UserID),
		zap.Duration("duration", duration))

	dao.logAudit(ctx, "UPDATE_USER", updatedUser.UserID, createUserChangeDetails(nil, updatedUser))
	return updatedUser, nil
}

// DeleteUser removes a record. Deleting a missing key reports not
// found; this policy is held invariant across the API.
func (dao *UserDAO) DeleteUser(ctx context.Context, userID string) error {
	start := time.Now()
	logger.Info("Deleting user", zap.String("userID", userID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(
			`MATCH (u:User {userid: $userid})
             DETACH DELETE u
             RETURN count(u) AS deleted`,
			map[string]interface{}{"userid": userID},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}
		if result.Next() {
			deleted := result.Record().Values[0].(int64)
			if deleted == 0 {
				return nil, gk_errors.ErrUserNotFound
			}
			return deleted, nil
		}
		return nil, gk_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete user",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	dao.logAudit(ctx, "DELETE_USER", userID, nil)
	return nil
}

// GetUser fetches one record by key. Transient read failures are
// retried a bounded number of times.
func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user *model.User
	var err error

	for attempt := 0; attempt <= readRetries; attempt++ {
		user, err = dao.getUserOnce(ctx, userID)
		if err == nil || err == gk_errors.ErrUserNotFound {
			return user, err
		}
		logger.Warn("Retrying user fetch after transient failure",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Int("attempt", attempt+1))
	}
	return nil, err
}

func (dao *UserDAO) getUserOnce(ctx context.Context, userID string) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(
			`MATCH (u:User {userid: $userid}) RETURN u`,
			map[string]interface{}{"userid": userID},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}
		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return mapNodeToUser(node)
		}
		return nil, gk_errors.ErrUserNotFound
	})

	if err != nil {
		return nil, err
	}
	return result.(*model.User), nil
}

// ListUsers scans the record set with limit/offset pagination. Reads
// share the bounded retry policy with GetUser.
func (dao *UserDAO) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	var users []*model.User
	var err error

	for attempt := 0; attempt <= readRetries; attempt++ {
		users, err = dao.listUsersOnce(ctx, limit, offset)
		if err == nil {
			return users, nil
		}
		logger.Warn("Retrying user list after transient failure",
			zap.Error(err),
			zap.Int("attempt", attempt+1))
	}
	return nil, err
}

func (dao *UserDAO) listUsersOnce(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(
			`MATCH (u:User)
             RETURN u
             ORDER BY u.userid
             SKIP $offset
             LIMIT $limit`,
			map[string]interface{}{
				"offset": offset,
				"limit":  limit,
			},
		)
		if err != nil {
			return nil, gk_errors.ErrDatabaseOperation
		}

		var users []*model.User
		for result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			user, err := mapNodeToUser(node)
			if err != nil {
				return nil, fmt.Errorf("failed to map user node to struct: %w", err)
			}
			users = append(users, user)
		}
		return users, nil
	})

	if err != nil {
		return nil, err
	}
	return result.([]*model.User), nil
}

// logAudit records a mutation in the audit trail. Audit failures are
// logged but do not fail the operation.
func (dao *UserDAO) logAudit(ctx context.Context, action, resourceID string, changeDetails json.RawMessage) {
	requestingUserID, _ := ctx.Value("requestingUserID").(string)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID,
		Action:        action,
		ResourceID:    resourceID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
}

func mapNodeToUser(node neo4j.Node) (*model.User, error) {
	props := node.Props

	user := &model.User{}
	user.UserID, _ = props["userid"].(string)

	if attributesJSON, ok := props["attributes"].(string); ok && attributesJSON != "" {
		if err := json.Unmarshal([]byte(attributesJSON), &user.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user attributes: %w", err)
		}
	}

	if createdAt, ok := props["createdAt"].(string); ok {
		t, err := helper_util.ParseTime(createdAt)
		if err == nil {
			user.CreatedAt = t
		}
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		t, err := helper_util.ParseTime(updatedAt)
		if err == nil {
			user.UpdatedAt = t
		}
	}

	return user, nil
}

func createUserChangeDetails(oldUser, newUser *model.User) json.RawMessage {
	details := map[string]interface{}{
		"old": oldUser,
		"new": newUser,
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return data
}
