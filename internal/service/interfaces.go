package service

import (
	"context"
	"time"

	"github.com/wfunc/game-library/internal/engine/difficulty"
	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/engine/resonance"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
)

// AuthService 认证服务接口
type AuthService interface {
	// 注册登录
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID uint, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)

	// 验证
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	ValidateSession(ctx context.Context, sessionID string) (*models.UserSession, error)

	// 会话管理
	GetActiveSessions(ctx context.Context, userID uint) ([]models.UserSession, error)
	RevokeSession(ctx context.Context, sessionID string) error
}

// UserService 用户服务接口
type UserService interface {
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, profile *UserProfile) error
	UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserStats(ctx context.Context, userID uint, days int) (*repository.SessionStatistics, error)
}

// GameService 游戏目录服务接口
// 目录写操作递增CatalogVersion并使特征缓存与向量索引失效。
type GameService interface {
	CreateGame(ctx context.Context, req *GameRequest) (*models.Game, error)
	UpdateGame(ctx context.Context, gameID uint, req *GameRequest) (*models.Game, error)
	DeleteGame(ctx context.Context, gameID uint) error
	GetGame(ctx context.Context, gameID uint) (*models.Game, error)
	ListGames(ctx context.Context, page, pageSize int) ([]models.Game, int64, error)
	SearchGames(ctx context.Context, keyword string, page, pageSize int) ([]*models.Game, error)
	GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]*models.Game, error)
}

// SessionService 游玩会话服务接口
type SessionService interface {
	StartSession(ctx context.Context, userID uint, req *StartSessionRequest) (*models.GameSession, error)
	CloseSession(ctx context.Context, userID uint, req *CloseSessionRequest) (*SessionCloseResult, error)
	GetSession(ctx context.Context, sessionID string) (*models.GameSession, error)
	GetHistory(ctx context.Context, userID uint, limit int) ([]models.GameSession, error)
}

// IdentityService 玩家画像服务接口
// 负责会话关闭后的画像重算流水线，以及画像/情绪/共鸣的查询。
type IdentityService interface {
	GetIdentity(ctx context.Context, userID uint) (*models.PlayerIdentity, error)
	AnalyzeMood(ctx context.Context, userID uint) (*mood.Analysis, error)
	GetForecast(ctx context.Context, userID uint, horizon int) (*models.MoodForecast, error)
	ProcessClosedSession(ctx context.Context, session *models.GameSession) (*SessionCloseResult, error)
	GetResonanceAnalysis(ctx context.Context, userID uint) (*resonance.Analysis, error)
}

// RecommendationService 推荐服务接口
type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID uint, reqCtx *recommend.Context) ([]recommend.Recommendation, error)
	RebuildIndex(ctx context.Context) (int, error)
}

// DifficultyService 难度评估服务接口
type DifficultyService interface {
	Assess(ctx context.Context, userID, gameID uint) (*difficulty.Metrics, error)
	GetProfile(ctx context.Context, userID uint) (*models.DifficultyProfile, error)
	GetInsights(ctx context.Context, userID uint) (*difficulty.Insights, error)
	GetAdaptiveSettings(ctx context.Context, userID, gameID uint, target *float64) (*difficulty.AdaptiveRecommendation, error)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	Avatar          string `json:"avatar"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"` // 用户名/邮箱
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
	IP       string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims JWT Claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// UserProfile 用户资料
type UserProfile struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// GameRequest 游戏目录写入请求
type GameRequest struct {
	Name            string   `json:"name" binding:"required"`
	Platform        string   `json:"platform"`
	ExternalID      string   `json:"external_id"`
	Genres          []string `json:"genres" binding:"required,min=1"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description"`
	CoverImage      string   `json:"cover_image"`
	IsMultiplayer   *bool    `json:"is_multiplayer"`
	Difficulty      *float64 `json:"difficulty"`
	AveragePlaytime *float64 `json:"average_playtime"`
	PopularityScore *float64 `json:"popularity_score"`
	CriticScore     *float64 `json:"critic_score"`
	UserScore       *float64 `json:"user_score"`
	ReleaseYear     int      `json:"release_year"`
}

// StartSessionRequest 开始会话请求
type StartSessionRequest struct {
	GameID        uint     `json:"game_id" binding:"required"`
	Genre         string   `json:"genre"`
	Mood          string   `json:"mood"`
	Intensity     float64  `json:"intensity"`
	Tags          []string `json:"tags"`
	IsMultiplayer *bool    `json:"is_multiplayer"`
}

// CloseSessionRequest 结束会话请求
type CloseSessionRequest struct {
	SessionID  string     `json:"session_id" binding:"required"`
	EndTime    *time.Time `json:"end_time"`
	Mood       string     `json:"mood"`
	Intensity  *float64   `json:"intensity"`
	Difficulty *float64   `json:"difficulty"`
	Rating     *float64   `json:"rating"`
	Completed  *bool      `json:"completed"`
}

// SessionCloseResult 会话关闭后画像流水线的产出
type SessionCloseResult struct {
	Session   *models.GameSession      `json:"session"`
	Analysis  *mood.Analysis           `json:"analysis"`
	Identity  *models.PlayerIdentity   `json:"identity"`
	Resonance *models.SessionResonance `json:"resonance,omitempty"`
	Forecast  *models.MoodForecast     `json:"forecast,omitempty"`
}
