package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/game-library/internal/engine/feature"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrGameNotFound = errors.New("游戏不存在")

// gameService 游戏目录服务实现
// 目录任何写入都递增CatalogVersion，随后使特征缓存失效并重建向量索引，
// 保证推荐侧不会使用过期的特征向量。
type gameService struct {
	db              *gorm.DB
	gameRepo        repository.GameRepository
	featureCache    *feature.Cache
	recommendEngine *recommend.Engine
	log             *zap.Logger
}

// NewGameService 创建游戏目录服务
func NewGameService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	featureCache *feature.Cache,
	recommendEngine *recommend.Engine,
	log *zap.Logger,
) GameService {
	return &gameService{
		db:              db,
		gameRepo:        gameRepo,
		featureCache:    featureCache,
		recommendEngine: recommendEngine,
		log:             log,
	}
}

// CreateGame 新增游戏
func (s *gameService) CreateGame(ctx context.Context, req *GameRequest) (*models.Game, error) {
	if len(req.Genres) == 0 {
		return nil, errors.New("至少需要一个类型标签")
	}

	version, err := s.gameRepo.MaxCatalogVersion(ctx)
	if err != nil {
		version = 0
	}

	game := s.applyRequest(&models.Game{}, req)
	game.CatalogVersion = version + 1

	if err := s.gameRepo.Create(ctx, game); err != nil {
		s.log.Error("Failed to create game", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("创建游戏失败: %w", err)
	}

	s.refreshEngines(ctx)
	s.log.Info("Game created", zap.Uint("gameID", game.ID), zap.String("name", game.Name))
	return game, nil
}

// UpdateGame 更新游戏元数据
func (s *gameService) UpdateGame(ctx context.Context, gameID uint, req *GameRequest) (*models.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil || game == nil {
		return nil, ErrGameNotFound
	}

	version, err := s.gameRepo.MaxCatalogVersion(ctx)
	if err != nil {
		version = game.CatalogVersion
	}

	game = s.applyRequest(game, req)
	game.CatalogVersion = version + 1

	if err := s.gameRepo.Update(ctx, game); err != nil {
		s.log.Error("Failed to update game", zap.Error(err), zap.Uint("gameID", gameID))
		return nil, fmt.Errorf("更新游戏失败: %w", err)
	}

	s.refreshEngines(ctx)
	return game, nil
}

// DeleteGame 删除游戏
func (s *gameService) DeleteGame(ctx context.Context, gameID uint) error {
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return fmt.Errorf("删除游戏失败: %w", err)
	}
	s.refreshEngines(ctx)
	return nil
}

// GetGame 获取单个游戏
func (s *gameService) GetGame(ctx context.Context, gameID uint) (*models.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil || game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames 分页列出游戏
func (s *gameService) ListGames(ctx context.Context, page, pageSize int) ([]models.Game, int64, error) {
	games, err := s.gameRepo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(games))
	p := repository.NewPagination(page, pageSize)
	start := p.Offset()
	if start >= len(games) {
		return []models.Game{}, total, nil
	}
	end := start + p.PageSize
	if end > len(games) {
		end = len(games)
	}
	return games[start:end], total, nil
}

// SearchGames 按关键词搜索
func (s *gameService) SearchGames(ctx context.Context, keyword string, page, pageSize int) ([]*models.Game, error) {
	return s.gameRepo.Search(ctx, keyword, repository.NewPagination(page, pageSize))
}

// GamesByGenre 按类型筛选
func (s *gameService) GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]*models.Game, error) {
	return s.gameRepo.FindByGenre(ctx, genre, repository.NewPagination(page, pageSize))
}

// applyRequest 将请求字段写入模型
func (s *gameService) applyRequest(game *models.Game, req *GameRequest) *models.Game {
	game.Name = req.Name
	game.Platform = req.Platform
	game.ExternalID = req.ExternalID
	game.Genres = models.StringSlice(req.Genres)
	game.Tags = models.StringSlice(req.Tags)
	game.Description = req.Description
	game.CoverImage = req.CoverImage
	game.IsMultiplayer = req.IsMultiplayer
	game.Difficulty = req.Difficulty
	game.AveragePlaytime = req.AveragePlaytime
	game.PopularityScore = req.PopularityScore
	game.CriticScore = req.CriticScore
	game.UserScore = req.UserScore
	game.ReleaseYear = req.ReleaseYear
	return game
}

// refreshEngines 目录变更后刷新特征缓存与向量索引
func (s *gameService) refreshEngines(ctx context.Context) {
	s.featureCache.InvalidateAll()
	games, err := s.gameRepo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to reload catalog for index rebuild", zap.Error(err))
		return
	}
	s.recommendEngine.RebuildIndex(games)
}
