// api/service/user_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/gatekeeper/api/dao"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
	"github.com/dev-mohitbeniwal/gatekeeper/api/util"
)

// IUserService defines the interface for user operations
type IUserService interface {
	CreateUser(ctx context.Context, user model.User, creatorID string) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User, updaterID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID string, deleterID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error)
}

// UserService handles business logic for user operations
type UserService struct {
	userDAO         dao.IUserDAO
	validationUtil  *util.ValidationUtil
	cacheService    util.ICacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO dao.IUserDAO, validationUtil *util.ValidationUtil, cacheService util.ICacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *UserService {
	service := &UserService{
		userDAO:         userDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("user.created", service.handleUserChanged)
	eventBus.Subscribe("user.updated", service.handleUserChanged)
	eventBus.Subscribe("user.deleted", service.handleUserDeleted)

	return service
}

func (s *UserService) handleUserChanged(ctx context.Context, event util.Event) error {
	user := event.Payload.(model.User)
	changeType := "created"
	if event.Type == "user.updated" {
		changeType = "updated"
	}
	logger.Info("User change event received",
		zap.String("userID", user.UserID),
		zap.String("event", event.Type))

	if err := s.notificationSvc.NotifyUserChange(ctx, changeType, user); err != nil {
		logger.Warn("Failed to send user change notification",
			zap.Error(err),
			zap.String("userID", user.UserID))
	}
	return nil
}

func (s *UserService) handleUserDeleted(ctx context.Context, event util.Event) error {
	userID := event.Payload.(string)
	logger.Info("User deleted event received", zap.String("userID", userID))

	if err := s.notificationSvc.NotifyUserChange(ctx, "deleted", model.User{UserID: userID}); err != nil {
		logger.Warn("Failed to send user deletion notification",
			zap.Error(err),
			zap.String("userID", userID))
	}
	return nil
}

// CreateUser creates a new record under the caller-supplied key.
func (s *UserService) CreateUser(ctx context.Context, user model.User, creatorID string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		logger.Warn("Rejected invalid user payload", zap.Error(err))
		return nil, gk_errors.ErrInvalidUserData
	}

	createdUser, err := s.userDAO.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetUser(ctx, *createdUser); err != nil {
		logger.Warn("Failed to cache created user",
			zap.Error(err),
			zap.String("userID", createdUser.UserID))
	}

	s.eventBus.Publish(ctx, "user.created", *createdUser)
	return createdUser, nil
}

// UpdateUser fully replaces an existing record's attributes.
func (s *UserService) UpdateUser(ctx context.Context, user model.User, updaterID string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		logger.Warn("Rejected invalid user payload", zap.Error(err))
		return nil, gk_errors.ErrInvalidUserData
	}

	updatedUser, err := s.userDAO.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetUser(ctx, *updatedUser); err != nil {
		logger.Warn("Failed to refresh cached user",
			zap.Error(err),
			zap.String("userID", updatedUser.UserID))
	}

	s.eventBus.Publish(ctx, "user.updated", *updatedUser)
	return updatedUser, nil
}

// DeleteUser removes a record; a missing key is reported as not found.
func (s *UserService) DeleteUser(ctx context.Context, userID string, deleterID string) error {
	if err := s.userDAO.DeleteUser(ctx, userID); err != nil {
		return err
	}

	if err := s.cacheService.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to evict deleted user from cache",
			zap.Error(err),
			zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, "user.deleted", userID)
	return nil
}

// GetUser fetches one record, reading through the cache.
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	cached, err := s.cacheService.GetUser(ctx, userID)
	if err != nil {
		logger.Warn("Cache lookup failed, falling back to store",
			zap.Error(err),
			zap.String("userID", userID))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache fetched user",
			zap.Error(err),
			zap.String("userID", userID))
	}
	return user, nil
}

// ListUsers scans the record set with pagination.
func (s *UserService) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	if limit < 0 || offset < 0 {
		return nil, gk_errors.ErrInvalidPagination
	}
	return s.userDAO.ListUsers(ctx, limit, offset)
}
