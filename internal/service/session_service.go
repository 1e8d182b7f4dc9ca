package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSessionAlreadyOpen = errors.New("存在未结束的会话")
	ErrSessionClosed      = errors.New("会话已结束")
	ErrNotSessionOwner    = errors.New("无权操作该会话")
)

// sessionService 游玩会话服务实现
type sessionService struct {
	db          *gorm.DB
	sessionRepo repository.GameSessionRepository
	gameRepo    repository.GameRepository
	identity    IdentityService
	log         *zap.Logger
}

// NewSessionService 创建游玩会话服务
func NewSessionService(
	db *gorm.DB,
	sessionRepo repository.GameSessionRepository,
	gameRepo repository.GameRepository,
	identity IdentityService,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		db:          db,
		sessionRepo: sessionRepo,
		gameRepo:    gameRepo,
		identity:    identity,
		log:         log,
	}
}

// StartSession 开始游玩会话
// 单用户同时只允许一个未结束会话。
func (s *sessionService) StartSession(ctx context.Context, userID uint, req *StartSessionRequest) (*models.GameSession, error) {
	game, err := s.gameRepo.FindByID(ctx, req.GameID)
	if err != nil || game == nil {
		return nil, ErrGameNotFound
	}

	if open, err := s.sessionRepo.FindOpenByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("检查未结束会话失败: %w", err)
	} else if open != nil {
		return nil, ErrSessionAlreadyOpen
	}

	genre := req.Genre
	if genre == "" && len(game.Genres) > 0 {
		genre = game.Genres[0]
	}

	multiplayer := req.IsMultiplayer
	if multiplayer == nil {
		multiplayer = game.IsMultiplayer
	}

	session := &models.GameSession{
		SessionID:     uuid.NewString(),
		UserID:        userID,
		GameID:        game.ID,
		Genre:         genre,
		StartTime:     time.Now(),
		Mood:          req.Mood,
		Intensity:     req.Intensity,
		Tags:          models.StringSlice(req.Tags),
		IsMultiplayer: multiplayer,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.log.Error("Failed to create game session",
			zap.Error(err), zap.Uint("userID", userID), zap.Uint("gameID", game.ID))
		return nil, fmt.Errorf("创建会话失败: %w", err)
	}

	s.log.Info("Game session started",
		zap.String("sessionID", session.SessionID),
		zap.Uint("userID", userID),
		zap.String("game", game.Name))

	return session, nil
}

// CloseSession 结束会话并触发画像流水线
func (s *sessionService) CloseSession(ctx context.Context, userID uint, req *CloseSessionRequest) (*SessionCloseResult, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, req.SessionID)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Closed() {
		return nil, ErrSessionClosed
	}

	endTime := time.Now()
	if req.EndTime != nil && req.EndTime.After(session.StartTime) {
		endTime = *req.EndTime
	}

	// 补充玩家结算时提交的主观观测
	if req.Mood != "" {
		session.Mood = req.Mood
	}
	if req.Intensity != nil {
		session.Intensity = *req.Intensity
	}
	if req.Difficulty != nil {
		session.Difficulty = req.Difficulty
	}
	if req.Rating != nil {
		session.Rating = req.Rating
	}
	if req.Completed != nil {
		session.Completed = req.Completed
	}
	session.EndTime = &endTime
	session.Duration = int(endTime.Sub(session.StartTime).Seconds())

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.log.Error("Failed to close game session",
			zap.Error(err), zap.String("sessionID", session.SessionID))
		return nil, fmt.Errorf("结束会话失败: %w", err)
	}

	// 会话落盘后跑画像流水线；流水线失败不撤销会话关闭
	result, err := s.identity.ProcessClosedSession(ctx, session)
	if err != nil {
		s.log.Error("Identity pipeline failed after session close",
			zap.Error(err), zap.String("sessionID", session.SessionID))
		return &SessionCloseResult{Session: session}, nil
	}

	return result, nil
}

// GetSession 获取单个会话
func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetHistory 获取历史会话（时间升序）
func (s *sessionService) GetHistory(ctx context.Context, userID uint, limit int) ([]models.GameSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.sessionRepo.FindHistoryByUserID(ctx, userID, limit)
}
