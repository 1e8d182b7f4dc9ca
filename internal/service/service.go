package service

import (
	"context"
	"time"

	"github.com/wfunc/game-library/internal/config"
	"github.com/wfunc/game-library/internal/engine/difficulty"
	"github.com/wfunc/game-library/internal/engine/feature"
	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Engine             *config.EngineConfig
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "your-secret-key-change-in-production",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Services 服务集合
type Services struct {
	Auth           AuthService
	User           UserService
	Game           GameService
	Session        SessionService
	Identity       IdentityService
	Recommendation RecommendationService
	Difficulty     DifficultyService
}

// NewServices 创建服务集合
// 情绪引擎、特征缓存与推荐引擎共享同一张类型-情绪映射表，
// 表版本变更会同时作用于三者。
func NewServices(db *gorm.DB, cfg *Config, log *zap.Logger) *Services {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	sessionRepo := repository.NewGameSessionRepository(db)
	identityRepo := repository.NewPlayerIdentityRepository(db)
	difficultyRepo := repository.NewDifficultyProfileRepository(db)
	resonanceRepo := repository.NewSessionResonanceRepository(db)

	// 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		cfg.JWTSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)

	// 初始化引擎，三方共享同一张映射表
	table := mood.NewGenreMoodTable()
	moodEngine := mood.NewEngine(moodEngineConfig(cfg.Engine), table)
	featureCache := feature.NewCache(feature.NewBuilder(table))
	recommendEngine := recommend.NewEngine(recommendEngineConfig(cfg.Engine), table, featureCache)

	// 难度档案LRU驱逐时异步落盘
	assessor := difficulty.NewAssessor(difficultyEngineConfig(cfg.Engine), func(profile *models.DifficultyProfile) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := difficultyRepo.Save(ctx, profile); err != nil {
			log.Error("Failed to flush evicted difficulty profile",
				zap.Error(err), zap.Uint("userID", profile.UserID))
		}
	})

	// 初始化服务
	authService := NewAuthService(db, userRepo, jwtManager, log)
	userService := NewUserService(db, userRepo, sessionRepo, log)
	gameService := NewGameService(db, gameRepo, featureCache, recommendEngine, log)
	identityService := NewIdentityService(
		db, identityRepo, sessionRepo, difficultyRepo, resonanceRepo,
		moodEngine, assessor, log,
	)
	sessionService := NewSessionService(db, sessionRepo, gameRepo, identityService, log)
	recommendationService := NewRecommendationService(
		db, gameRepo, sessionRepo, identityRepo, recommendEngine, log,
	)
	difficultyService := NewDifficultyService(
		db, gameRepo, sessionRepo, difficultyRepo, assessor, log,
	)

	return &Services{
		Auth:           authService,
		User:           userService,
		Game:           gameService,
		Session:        sessionService,
		Identity:       identityService,
		Recommendation: recommendationService,
		Difficulty:     difficultyService,
	}
}

// moodEngineConfig 从全局配置映射情绪引擎配置
func moodEngineConfig(ec *config.EngineConfig) *mood.Config {
	if ec == nil {
		return nil
	}
	return &mood.Config{
		WindowSessions: ec.Mood.WindowSessions,
		WindowDays:     ec.Mood.WindowDays,
		HalfLife:       ec.Mood.HalfLife,
		MaxTriggers:    ec.Mood.MaxTriggers,
	}
}

// recommendEngineConfig 从全局配置映射推荐引擎配置
func recommendEngineConfig(ec *config.EngineConfig) *recommend.Config {
	if ec == nil {
		return nil
	}
	return &recommend.Config{
		CollaborativeWeight: ec.Recommend.CollaborativeWeight,
		ContentBasedWeight:  ec.Recommend.ContentBasedWeight,
		MoodWeight:          ec.Recommend.MoodWeight,
		PlaystyleWeight:     ec.Recommend.PlaystyleWeight,
		MinDataPoints:       ec.Recommend.MinDataPoints,
		ReasonThreshold:     ec.Recommend.ReasonThreshold,
		IndexTopK:           ec.Recommend.IndexTopK,
		MaxCount:            ec.Recommend.MaxCount,
		VectorDimension:     ec.Vector.Dimension,
	}
}

// difficultyEngineConfig 从全局配置映射难度评估配置
func difficultyEngineConfig(ec *config.EngineConfig) *difficulty.Config {
	if ec == nil {
		return nil
	}
	return &difficulty.Config{
		DefaultSkill:        ec.Difficulty.DefaultSkill,
		DefaultAdaptability: ec.Difficulty.DefaultAdaptability,
		RecentWindow:        ec.Difficulty.RecentWindow,
		MaxProfiles:         ec.Difficulty.MaxProfiles,
	}
}
