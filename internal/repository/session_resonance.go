package repository

import (
	"context"
	"time"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// SessionResonanceRepository 会话共鸣仓储接口
// 共鸣记录只追加, 无更新删除操作。
type SessionResonanceRepository interface {
	BaseRepository
	Create(ctx context.Context, resonance *models.SessionResonance) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.SessionResonance, error)
	FindByUserID(ctx context.Context, userID uint, limit int) ([]models.SessionResonance, error)
	FindByUserIDSince(ctx context.Context, userID uint, since time.Time) ([]models.SessionResonance, error)
}

// sessionResonanceRepo 会话共鸣仓储实现
type sessionResonanceRepo struct {
	*BaseRepo
}

// NewSessionResonanceRepository 创建会话共鸣仓储
func NewSessionResonanceRepository(db *gorm.DB) SessionResonanceRepository {
	return &sessionResonanceRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 写入共鸣记录
func (r *sessionResonanceRepo) Create(ctx context.Context, resonance *models.SessionResonance) error {
	return r.db.WithContext(ctx).Create(resonance).Error
}

// FindBySessionID 根据会话ID查找
func (r *sessionResonanceRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.SessionResonance, error) {
	var resonance models.SessionResonance
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&resonance).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resonance, nil
}

// FindByUserID 取用户最近的共鸣记录（时间升序, 供趋势分析）
func (r *sessionResonanceRepo) FindByUserID(ctx context.Context, userID uint, limit int) ([]models.SessionResonance, error) {
	var records []models.SessionResonance
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	// 恢复时间升序
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// FindByUserIDSince 取用户指定时间后的共鸣记录（时间升序）
func (r *sessionResonanceRepo) FindByUserIDSince(ctx context.Context, userID uint, since time.Time) ([]models.SessionResonance, error) {
	var records []models.SessionResonance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp asc").
		Find(&records).Error
	return records, err
}

// WithTx 使用事务
func (r *sessionResonanceRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &sessionResonanceRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
