package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/game-library/internal/engine/difficulty"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrDifficultyProfileNotFound = errors.New("难度档案不存在")

// 参与单次评估的最近会话数
const assessRecentSessions = 10

// difficultyService 难度评估服务实现
// 评估器档案内存常驻（LRU），未命中时先从库恢复再评估。
type difficultyService struct {
	db             *gorm.DB
	gameRepo       repository.GameRepository
	sessionRepo    repository.GameSessionRepository
	difficultyRepo repository.DifficultyProfileRepository
	assessor       *difficulty.Assessor
	log            *zap.Logger
}

// NewDifficultyService 创建难度评估服务
func NewDifficultyService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	sessionRepo repository.GameSessionRepository,
	difficultyRepo repository.DifficultyProfileRepository,
	assessor *difficulty.Assessor,
	log *zap.Logger,
) DifficultyService {
	return &difficultyService{
		db:             db,
		gameRepo:       gameRepo,
		sessionRepo:    sessionRepo,
		difficultyRepo: difficultyRepo,
		assessor:       assessor,
		log:            log,
	}
}

// Assess 评估用户在指定游戏上的当前难度
func (s *difficultyService) Assess(ctx context.Context, userID, gameID uint) (*difficulty.Metrics, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil || game == nil {
		return nil, ErrGameNotFound
	}

	s.restoreProfile(ctx, userID)

	recent, err := s.sessionRepo.FindHistoryByUserID(ctx, userID, assessRecentSessions)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	return s.assessor.AssessDifficulty(userID, game, recent), nil
}

// GetProfile 获取难度档案（优先内存，回落到库）
func (s *difficultyService) GetProfile(ctx context.Context, userID uint) (*models.DifficultyProfile, error) {
	if profile := s.assessor.Profile(userID); profile != nil {
		return profile, nil
	}

	stored, err := s.difficultyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrDifficultyProfileNotFound
	}
	s.assessor.LoadProfile(stored)
	return stored, nil
}

// GetInsights 获取技能趋势洞察
func (s *difficultyService) GetInsights(ctx context.Context, userID uint) (*difficulty.Insights, error) {
	s.restoreProfile(ctx, userID)
	return s.assessor.GetInsights(userID), nil
}

// GetAdaptiveSettings 获取辅助功能与自适应难度建议
func (s *difficultyService) GetAdaptiveSettings(ctx context.Context, userID, gameID uint, target *float64) (*difficulty.AdaptiveRecommendation, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil || game == nil {
		return nil, ErrGameNotFound
	}

	s.restoreProfile(ctx, userID)
	return s.assessor.GenerateAdaptiveRecommendations(userID, game, target), nil
}

// restoreProfile 内存未命中时从库恢复档案
func (s *difficultyService) restoreProfile(ctx context.Context, userID uint) {
	if s.assessor.Profile(userID) != nil {
		return
	}
	stored, err := s.difficultyRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to restore difficulty profile",
			zap.Error(err), zap.Uint("userID", userID))
		return
	}
	if stored != nil {
		s.assessor.LoadProfile(stored)
	}
}
