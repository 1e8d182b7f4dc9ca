package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userService 用户服务实现
type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	sessionRepo repository.GameSessionRepository
	log         *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	sessionRepo repository.GameSessionRepository,
	log *zap.Logger,
) UserService {
	return &userService{
		db:          db,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log,
	}
}

// GetUserByID 根据ID获取用户
func (s *userService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// GetUserByUsername 根据用户名获取用户
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// UpdateProfile 更新用户资料
func (s *userService) UpdateProfile(ctx context.Context, userID uint, profile *UserProfile) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if profile.Nickname != "" {
		user.Nickname = profile.Nickname
	}
	if profile.Avatar != "" {
		user.Avatar = profile.Avatar
	}

	return s.userRepo.Update(ctx, user)
}

// UpdatePassword 修改密码
func (s *userService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	auth, err := s.userRepo.FindAuthByUserID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	// 验证旧密码
	valid, err := utils.VerifyPassword(oldPassword, auth.Password)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}

	if len(newPassword) < 6 {
		return fmt.Errorf("密码长度至少6个字符")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	auth.Password = hashedPassword
	if err := s.userRepo.UpdateAuth(ctx, auth); err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}

	s.log.Info("Password updated", zap.Uint("userID", userID))
	return nil
}

// GetUserStats 获取用户游玩统计
func (s *userService) GetUserStats(ctx context.Context, userID uint, days int) (*repository.SessionStatistics, error) {
	if days <= 0 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.sessionRepo.GetStatistics(ctx, userID, start, end)
}
