package repository

import (
	"context"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// DifficultyProfileRepository 难度档案仓储接口
type DifficultyProfileRepository interface {
	BaseRepository
	Save(ctx context.Context, profile *models.DifficultyProfile) error
	FindByUserID(ctx context.Context, userID uint) (*models.DifficultyProfile, error)
	AppendLearningPoint(ctx context.Context, point *models.LearningPoint) error
	FindLearningCurve(ctx context.Context, profileID uint, limit int) ([]models.LearningPoint, error)
}

// difficultyProfileRepo 难度档案仓储实现
type difficultyProfileRepo struct {
	*BaseRepo
}

// NewDifficultyProfileRepository 创建难度档案仓储
func NewDifficultyProfileRepository(db *gorm.DB) DifficultyProfileRepository {
	return &difficultyProfileRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Save 创建或更新档案, 学习曲线在同一事务内追加
func (r *difficultyProfileRepo) Save(ctx context.Context, profile *models.DifficultyProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		curve := profile.LearningCurve
		profile.LearningCurve = nil
		if err := tx.Save(profile).Error; err != nil {
			profile.LearningCurve = curve
			return err
		}
		profile.LearningCurve = curve

		// 只追加未持久化的学习点
		for i := range curve {
			if curve[i].ID != 0 {
				continue
			}
			curve[i].ProfileID = profile.ID
			if err := tx.Create(&curve[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByUserID 根据用户ID查找（含学习曲线, 时间升序）
func (r *difficultyProfileRepo) FindByUserID(ctx context.Context, userID uint) (*models.DifficultyProfile, error) {
	var profile models.DifficultyProfile
	err := r.db.WithContext(ctx).
		Preload("LearningCurve", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp asc")
		}).
		Where("user_id = ?", userID).
		First(&profile).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// AppendLearningPoint 追加单个学习点
func (r *difficultyProfileRepo) AppendLearningPoint(ctx context.Context, point *models.LearningPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

// FindLearningCurve 取档案末尾的学习点（时间升序）
func (r *difficultyProfileRepo) FindLearningCurve(ctx context.Context, profileID uint, limit int) ([]models.LearningPoint, error) {
	var points []models.LearningPoint
	q := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("timestamp desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&points).Error; err != nil {
		return nil, err
	}

	// 恢复时间升序
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// WithTx 使用事务
func (r *difficultyProfileRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &difficultyProfileRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
