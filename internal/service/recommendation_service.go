package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 协同过滤矩阵的历史回看窗口
const matrixLookback = 90 * 24 * time.Hour

// recommendationService 推荐服务实现
// 协同过滤矩阵按请求从近期全量会话重建；目录不大时成本可接受，
// 后续增长可改为定时重建。
type recommendationService struct {
	db           *gorm.DB
	gameRepo     repository.GameRepository
	sessionRepo  repository.GameSessionRepository
	identityRepo repository.PlayerIdentityRepository
	engine       *recommend.Engine
	log          *zap.Logger
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	sessionRepo repository.GameSessionRepository,
	identityRepo repository.PlayerIdentityRepository,
	engine *recommend.Engine,
	log *zap.Logger,
) RecommendationService {
	return &recommendationService{
		db:           db,
		gameRepo:     gameRepo,
		sessionRepo:  sessionRepo,
		identityRepo: identityRepo,
		engine:       engine,
		log:          log,
	}
}

// GetRecommendations 获取个性化推荐
func (s *recommendationService) GetRecommendations(ctx context.Context, userID uint, reqCtx *recommend.Context) ([]recommend.Recommendation, error) {
	candidates, err := s.gameRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取游戏目录失败: %w", err)
	}

	history, err := s.sessionRepo.FindHistoryByUserID(ctx, userID, identityHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	// 画像可能尚未建立，推荐引擎对nil画像会走回退路径
	identity, err := s.identityRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to load identity, falling back",
			zap.Error(err), zap.Uint("userID", userID))
		identity = nil
	}

	matrix, err := s.buildMatrix(ctx)
	if err != nil {
		s.log.Warn("Failed to build collaborative matrix",
			zap.Error(err), zap.Uint("userID", userID))
		matrix = nil
	}

	recs := s.engine.GetRecommendations(identity, history, reqCtx, candidates, matrix)

	s.log.Info("Recommendations generated",
		zap.Uint("userID", userID),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(recs)))

	return recs, nil
}

// RebuildIndex 全量重建向量索引，返回索引内条目数
func (s *recommendationService) RebuildIndex(ctx context.Context) (int, error) {
	games, err := s.gameRepo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("读取游戏目录失败: %w", err)
	}
	s.engine.RebuildIndex(games)
	return s.engine.IndexSize(), nil
}

// buildMatrix 从近期会话重建协同过滤矩阵
func (s *recommendationService) buildMatrix(ctx context.Context) (*recommend.Matrix, error) {
	sessions, err := s.sessionRepo.FindAllClosed(ctx, time.Now().Add(-matrixLookback))
	if err != nil {
		return nil, err
	}
	return recommend.BuildMatrix(sessions), nil
}
