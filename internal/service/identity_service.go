package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/game-library/internal/engine/difficulty"
	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/engine/resonance"
	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrIdentityNotFound = errors.New("玩家画像不存在")

// 默认预测视野（小时）
const defaultForecastHorizon = 24

// 画像重算读取的最大历史会话数
const identityHistoryLimit = 200

// identityService 玩家画像服务实现
// 每次会话关闭后执行完整流水线：情绪分析 -> 情绪档案微调 ->
// 画像增量重算 -> 难度档案更新 -> 共鸣结算 -> 新预测。
// 流水线各步独立降级，单步失败不阻断后续步骤。
type identityService struct {
	db             *gorm.DB
	identityRepo   repository.PlayerIdentityRepository
	sessionRepo    repository.GameSessionRepository
	difficultyRepo repository.DifficultyProfileRepository
	resonanceRepo  repository.SessionResonanceRepository
	moodEngine     *mood.Engine
	assessor       *difficulty.Assessor
	log            *zap.Logger
}

// NewIdentityService 创建玩家画像服务
func NewIdentityService(
	db *gorm.DB,
	identityRepo repository.PlayerIdentityRepository,
	sessionRepo repository.GameSessionRepository,
	difficultyRepo repository.DifficultyProfileRepository,
	resonanceRepo repository.SessionResonanceRepository,
	moodEngine *mood.Engine,
	assessor *difficulty.Assessor,
	log *zap.Logger,
) IdentityService {
	return &identityService{
		db:             db,
		identityRepo:   identityRepo,
		sessionRepo:    sessionRepo,
		difficultyRepo: difficultyRepo,
		resonanceRepo:  resonanceRepo,
		moodEngine:     moodEngine,
		assessor:       assessor,
		log:            log,
	}
}

// GetIdentity 获取玩家画像
func (s *identityService) GetIdentity(ctx context.Context, userID uint) (*models.PlayerIdentity, error) {
	identity, err := s.identityRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

// AnalyzeMood 基于当前历史做一次即席情绪分析（不落盘）
func (s *identityService) AnalyzeMood(ctx context.Context, userID uint) (*mood.Analysis, error) {
	history, err := s.sessionRepo.FindHistoryByUserID(ctx, userID, identityHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}
	return s.moodEngine.Analyze(history, time.Now()), nil
}

// GetForecast 获取未消费的最新情绪预测，没有则即时生成
func (s *identityService) GetForecast(ctx context.Context, userID uint, horizon int) (*models.MoodForecast, error) {
	forecast, err := s.identityRepo.FindLatestForecast(ctx, userID)
	if err != nil {
		return nil, err
	}
	if forecast != nil {
		return forecast, nil
	}

	if horizon <= 0 {
		horizon = defaultForecastHorizon
	}

	history, err := s.sessionRepo.FindHistoryByUserID(ctx, userID, identityHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	now := time.Now()
	analysis := s.moodEngine.Analyze(history, now)
	forecast = s.moodEngine.Forecast(userID, analysis, history, horizon, now)
	if err := s.identityRepo.CreateForecast(ctx, forecast); err != nil {
		return nil, fmt.Errorf("保存情绪预测失败: %w", err)
	}
	return forecast, nil
}

// ProcessClosedSession 会话关闭后的画像重算流水线
func (s *identityService) ProcessClosedSession(ctx context.Context, session *models.GameSession) (*SessionCloseResult, error) {
	if session == nil || !session.Closed() {
		return nil, errors.New("会话尚未关闭")
	}

	now := time.Now()
	result := &SessionCloseResult{Session: session}

	history, err := s.sessionRepo.FindHistoryByUserID(ctx, session.UserID, identityHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	// 1. 情绪分析
	analysis := s.moodEngine.Analyze(history, now)
	result.Analysis = analysis

	// 2. 共鸣结算（消费未兑现的预测，没有预测则跳过）
	if res := s.settleResonance(ctx, session, analysis); res != nil {
		result.Resonance = res
	}

	// 3. 画像增量重算 + 情绪档案微调
	identity, err := s.rebuildIdentity(ctx, session, history, analysis, now)
	if err != nil {
		s.log.Error("Failed to rebuild identity",
			zap.Error(err), zap.Uint("userID", session.UserID))
	} else {
		result.Identity = identity
	}

	// 4. 难度档案更新与落盘
	s.updateDifficulty(ctx, session)

	// 5. 面向下个周期的新预测
	forecast := s.moodEngine.Forecast(session.UserID, analysis, history, defaultForecastHorizon, now)
	if err := s.identityRepo.CreateForecast(ctx, forecast); err != nil {
		s.log.Error("Failed to save mood forecast",
			zap.Error(err), zap.Uint("userID", session.UserID))
	} else {
		result.Forecast = forecast
	}

	s.log.Info("Session pipeline completed",
		zap.String("sessionID", session.SessionID),
		zap.Uint("userID", session.UserID),
		zap.String("mood", analysis.Mood),
		zap.Float64("confidence", analysis.Confidence))

	return result, nil
}

// GetResonanceAnalysis 获取共鸣历史的聚合分析
func (s *identityService) GetResonanceAnalysis(ctx context.Context, userID uint) (*resonance.Analysis, error) {
	records, err := s.resonanceRepo.FindByUserID(ctx, userID, 100)
	if err != nil {
		return nil, err
	}
	return resonance.Analyze(records), nil
}

// settleResonance 用实际会话结算最近一条未消费的预测
func (s *identityService) settleResonance(ctx context.Context, session *models.GameSession, analysis *mood.Analysis) *models.SessionResonance {
	forecast, err := s.identityRepo.FindLatestForecast(ctx, session.UserID)
	if err != nil || forecast == nil {
		return nil
	}

	actualMood := session.Mood
	if actualMood == "" {
		actualMood = analysis.Mood
	}

	data := &resonance.SessionData{
		Duration:     session.DurationHours(),
		Engagement:   session.Intensity,
		Satisfaction: ratingSatisfaction(session.Rating),
		GameIDs:      []string{fmt.Sprintf("%d", session.GameID)},
	}

	record := resonance.Calculate(session.SessionID, session.UserID, forecast, actualMood, data)
	if err := s.resonanceRepo.Create(ctx, record); err != nil {
		s.log.Error("Failed to save resonance record",
			zap.Error(err), zap.String("sessionID", session.SessionID))
		return nil
	}
	if err := s.identityRepo.ConsumeForecast(ctx, forecast.ForecastID); err != nil {
		s.log.Error("Failed to consume forecast",
			zap.Error(err), zap.String("forecastID", forecast.ForecastID))
	}
	return record
}

// rebuildIdentity 增量重算画像并持久化
func (s *identityService) rebuildIdentity(ctx context.Context, session *models.GameSession, history []models.GameSession, analysis *mood.Analysis, now time.Time) (*models.PlayerIdentity, error) {
	identity, err := s.identityRepo.FindByUserID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		identity = &models.PlayerIdentity{
			UserID:          session.UserID,
			Playstyle:       models.JSONMap{},
			GenreAffinities: models.FloatMap{},
			Version:         0,
		}
	}
	if identity.GenreAffinities == nil {
		identity.GenreAffinities = models.FloatMap{}
	}

	// 类型亲和度：游玩类型向1做指数逼近，强度由时长决定；其余缓慢回落
	if session.Genre != "" {
		step := 0.1 * (0.5 + vector.Clamp(session.DurationHours(), 0, 2)/4)
		for genre, aff := range identity.GenreAffinities {
			if genre != session.Genre {
				identity.GenreAffinities[genre] = aff * 0.99
			}
		}
		current := identity.GenreAffinities[session.Genre]
		identity.GenreAffinities[session.Genre] = vector.Clamp01(current + (1-current)*step)
	}

	// 玩法画像由完整历史重建
	profile := buildPlaystyle(session.UserID, history)
	identity.Playstyle = profile

	identity.ComputedMood = analysis.Mood
	identity.MoodConfidence = analysis.Confidence
	identity.LastUpdated = now
	identity.Version++

	if err := s.identityRepo.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("保存画像失败: %w", err)
	}

	// 情绪档案微调
	updated := s.moodEngine.UpdatePreferences(identity.Moods, analysis, session, now)
	if err := s.identityRepo.SaveMoods(ctx, identity.ID, updated); err != nil {
		s.log.Error("Failed to save mood profiles",
			zap.Error(err), zap.Uint("userID", session.UserID))
	} else {
		identity.Moods = updated
	}

	return identity, nil
}

// updateDifficulty 难度档案更新（内存EMA + 同步落盘）
func (s *identityService) updateDifficulty(ctx context.Context, session *models.GameSession) {
	// 冷启动时从库里恢复档案，避免LRU外重新从默认值学起
	if s.assessor.Profile(session.UserID) == nil {
		if stored, err := s.difficultyRepo.FindByUserID(ctx, session.UserID); err == nil && stored != nil {
			s.assessor.LoadProfile(stored)
		}
	}

	profile := s.assessor.UpdateProfile(session.UserID, session, nil)
	if profile == nil {
		return
	}
	if err := s.difficultyRepo.Save(ctx, profile); err != nil {
		s.log.Error("Failed to save difficulty profile",
			zap.Error(err), zap.Uint("userID", session.UserID))
	}
}

// buildPlaystyle 从行为画像抽取落盘用的玩法字段
func buildPlaystyle(userID uint, history []models.GameSession) models.JSONMap {
	profile := recommend.BuildProfile(userID, history)
	return models.JSONMap{
		"total_playtime":       profile.TotalPlaytime,
		"avg_session_hours":    profile.AverageSessionLength,
		"preferred_difficulty": profile.DifficultyPreference,
		"social_ratio":         profile.SocialPreference,
		"completion_rate":      profile.CompletionRate,
	}
}

// ratingSatisfaction 把0-5评分折算到0-1满意度，缺省0.5
func ratingSatisfaction(rating *float64) float64 {
	if rating == nil {
		return 0.5
	}
	return vector.Clamp01(*rating / 5.0)
}
