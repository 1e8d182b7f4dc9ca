package repository

import (
	"context"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// PlayerIdentityRepository 玩家画像仓储接口
type PlayerIdentityRepository interface {
	BaseRepository
	Save(ctx context.Context, identity *models.PlayerIdentity) error
	FindByUserID(ctx context.Context, userID uint) (*models.PlayerIdentity, error)
	SaveMoods(ctx context.Context, identityID uint, moods []models.UserMood) error
	CreateForecast(ctx context.Context, forecast *models.MoodForecast) error
	FindLatestForecast(ctx context.Context, userID uint) (*models.MoodForecast, error)
	ConsumeForecast(ctx context.Context, forecastID string) error
}

// playerIdentityRepo 玩家画像仓储实现
type playerIdentityRepo struct {
	*BaseRepo
}

// NewPlayerIdentityRepository 创建玩家画像仓储
func NewPlayerIdentityRepository(db *gorm.DB) PlayerIdentityRepository {
	return &playerIdentityRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Save 创建或更新画像
func (r *playerIdentityRepo) Save(ctx context.Context, identity *models.PlayerIdentity) error {
	return r.db.WithContext(ctx).Save(identity).Error
}

// FindByUserID 根据用户ID查找画像（含情绪档案）
func (r *playerIdentityRepo) FindByUserID(ctx context.Context, userID uint) (*models.PlayerIdentity, error) {
	var identity models.PlayerIdentity
	err := r.db.WithContext(ctx).
		Preload("Moods").
		Where("user_id = ?", userID).
		First(&identity).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// SaveMoods 整体替换画像下的情绪档案
func (r *playerIdentityRepo) SaveMoods(ctx context.Context, identityID uint, moods []models.UserMood) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range moods {
			moods[i].IdentityID = identityID
			if err := tx.Save(&moods[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateForecast 写入情绪预测
func (r *playerIdentityRepo) CreateForecast(ctx context.Context, forecast *models.MoodForecast) error {
	return r.db.WithContext(ctx).Create(forecast).Error
}

// FindLatestForecast 取用户最新的未消费预测
func (r *playerIdentityRepo) FindLatestForecast(ctx context.Context, userID uint) (*models.MoodForecast, error) {
	var forecast models.MoodForecast
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed = ?", userID, false).
		Order("created_at desc").
		First(&forecast).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &forecast, nil
}

// ConsumeForecast 标记预测已被共鸣计算消费
func (r *playerIdentityRepo) ConsumeForecast(ctx context.Context, forecastID string) error {
	return r.db.WithContext(ctx).
		Model(&models.MoodForecast{}).
		Where("forecast_id = ?", forecastID).
		Update("consumed", true).Error
}

// WithTx 使用事务
func (r *playerIdentityRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerIdentityRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
