package service

import (
	"context"
	"fmt"

	"bandsync/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo   UserStore
	groupRepo  GroupStore
	memberRepo MemberStore
	logger     *zap.Logger
}

func NewUserService(userRepo UserStore, groupRepo GroupStore, memberRepo MemberStore, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// SyncProfile создаёт или обновляет профиль из данных провайдера
// аутентификации. Повторный вызов идемпотентен.
func (s *UserService) SyncProfile(ctx context.Context, user *model.User) (*model.User, error) {
	if user.DisplayName == "" {
		if user.Email != nil {
			user.DisplayName = *user.Email
		} else {
			user.DisplayName = "Musician"
		}
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("sync profile: %w", err)
	}

	return user, nil
}

// Get возвращает профиль пользователя
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateDisplayName меняет отображаемое имя
func (s *UserService) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	if displayName == "" {
		return fmt.Errorf("display name is required")
	}
	if err := s.userRepo.UpdateDisplayName(ctx, id, displayName); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

// DeleteAccount удаляет пользователя. Membership и отметки уходят
// каскадом; группы, оставшиеся без участников, удаляются следом.
func (s *UserService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	groups, err := s.groupRepo.ListByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("list user groups: %w", err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	for _, g := range groups {
		count, err := s.memberRepo.CountByGroup(ctx, g.ID)
		if err != nil {
			s.logger.Warn("⚠️ Failed to count members of orphaned group",
				zap.String("group_id", g.ID.String()),
				zap.Error(err))
			continue
		}
		if count == 0 {
			if err := s.groupRepo.Delete(ctx, g.ID); err != nil {
				s.logger.Warn("⚠️ Failed to delete empty group",
					zap.String("group_id", g.ID.String()),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("User account deleted", zap.String("user_id", id.String()))

	return nil
}
