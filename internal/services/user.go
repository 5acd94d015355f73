package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/requestdata"
	"github.com/parolegy/parolegy-backend/internal/sse"
	"github.com/parolegy/parolegy-backend/internal/types"
)

type UserService interface {
	GetCurrentUser(ctx context.Context) (*types.User, error)
	UpdateAvatar(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	hub           *sse.SSEHub
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService, hub *sse.SSEHub) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo, avatarService: avatarService, hub: hub}
}

func (us *userService) GetCurrentUser(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateAvatar(ctx context.Context, raw []byte) (*types.User, error) {
	user, err := us.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if us.avatarService == nil {
		return nil, fmt.Errorf("avatar service unavailable")
	}

	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if aErr := us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, tx, user, raw); aErr != nil {
			return aErr
		}
		return us.userRepo.UpdateFields(ctx, tx, user.ID, map[string]interface{}{
			"avatar_bucket_key": user.AvatarBucketKey,
			"avatar_url":        user.AvatarURL,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if us.hub != nil {
		us.hub.Broadcast(sse.SSEMessage{
			Channel: sse.UserChannel(user.ID),
			Event:   sse.SSEEventUserAvatarUpdated,
			Data:    map[string]any{"avatar_url": user.AvatarURL},
		})
	}
	return user, nil
}
