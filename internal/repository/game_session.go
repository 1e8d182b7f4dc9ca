package repository

import (
	"context"
	"time"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// GameSessionRepository 游玩会话仓储接口
type GameSessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.GameSession) error
	Update(ctx context.Context, session *models.GameSession) error
	FindByID(ctx context.Context, id uint) (*models.GameSession, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error)
	FindByUserID(ctx context.Context, userID uint, p *Pagination) ([]*models.GameSession, error)
	FindOpenByUserID(ctx context.Context, userID uint) (*models.GameSession, error)
	FindHistoryByUserID(ctx context.Context, userID uint, limit int) ([]models.GameSession, error)
	FindAllClosed(ctx context.Context, since time.Time) ([]models.GameSession, error)
	CloseSession(ctx context.Context, sessionID string, endTime time.Time) error
	GetStatistics(ctx context.Context, userID uint, startTime, endTime time.Time) (*SessionStatistics, error)
}

// SessionStatistics 游玩统计
type SessionStatistics struct {
	TotalSessions  int64   `json:"total_sessions"`
	TotalSeconds   int64   `json:"total_seconds"`
	AverageSeconds float64 `json:"average_seconds"`
	CompletedCount int64   `json:"completed_count"`
	DistinctGames  int64   `json:"distinct_games"`
}

// gameSessionRepo 游玩会话仓储实现
type gameSessionRepo struct {
	*BaseRepo
}

// NewGameSessionRepository 创建游玩会话仓储
func NewGameSessionRepository(db *gorm.DB) GameSessionRepository {
	return &gameSessionRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建游玩会话
func (r *gameSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update 更新游玩会话
func (r *gameSessionRepo) Update(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// FindByID 根据ID查找
func (r *gameSessionRepo) FindByID(ctx context.Context, id uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Preload("Game").
		First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindBySessionID 根据会话ID查找
func (r *gameSessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByUserID 根据用户ID查找（分页）
func (r *gameSessionRepo) FindByUserID(ctx context.Context, userID uint, p *Pagination) ([]*models.GameSession, error) {
	var sessions []*models.GameSession

	// 查询总数
	r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("user_id = ?", userID).
		Count(&p.Total)

	// 查询数据
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ?", userID).
		Order("start_time desc").
		Scopes(Paginate(p)).
		Find(&sessions).Error

	return sessions, err
}

// FindOpenByUserID 查找用户当前未关闭的会话
func (r *gameSessionRepo) FindOpenByUserID(ctx context.Context, userID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time desc").
		First(&session).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindHistoryByUserID 取用户最近的会话历史（时间升序, 供引擎消费）
func (r *gameSessionRepo) FindHistoryByUserID(ctx context.Context, userID uint, limit int) ([]models.GameSession, error) {
	var sessions []models.GameSession
	// limit裁剪时必须保留最新的会话, 先倒序取再翻转回升序
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// FindAllClosed 取指定时间后所有用户的已关闭会话（协同过滤用）
func (r *gameSessionRepo) FindAllClosed(ctx context.Context, since time.Time) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.db.WithContext(ctx).
		Where("end_time IS NOT NULL AND start_time >= ?", since).
		Order("start_time asc").
		Find(&sessions).Error
	return sessions, err
}

// CloseSession 关闭会话并回填时长
func (r *gameSessionRepo) CloseSession(ctx context.Context, sessionID string, endTime time.Time) error {
	var session models.GameSession
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return err
	}

	duration := int(endTime.Sub(session.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}

	return r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"end_time": &endTime,
			"duration": duration,
		}).Error
}

// GetStatistics 获取统计数据
func (r *gameSessionRepo) GetStatistics(ctx context.Context, userID uint, startTime, endTime time.Time) (*SessionStatistics, error) {
	var stats SessionStatistics

	err := r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("user_id = ? AND start_time BETWEEN ? AND ?", userID, startTime, endTime).
		Select(
			"COUNT(*) as total_sessions",
			"COALESCE(SUM(duration), 0) as total_seconds",
			"COUNT(DISTINCT game_id) as distinct_games",
		).
		Row().Scan(
		&stats.TotalSessions,
		&stats.TotalSeconds,
		&stats.DistinctGames,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalSessions > 0 {
		stats.AverageSeconds = float64(stats.TotalSeconds) / float64(stats.TotalSessions)

		r.db.WithContext(ctx).
			Model(&models.GameSession{}).
			Where("user_id = ? AND completed = ? AND start_time BETWEEN ? AND ?",
				userID, true, startTime, endTime).
			Count(&stats.CompletedCount)
	}

	return &stats, nil
}

// WithTx 使用事务
func (r *gameSessionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameSessionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
