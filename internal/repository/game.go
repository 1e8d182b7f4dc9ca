package repository

import (
	"context"

	"github.com/wfunc/game-library/internal/models"
	"gorm.io/gorm"
)

// GameRepository 游戏目录仓储接口
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.Game) error
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Game, error)
	FindByExternalID(ctx context.Context, platform, externalID string) (*models.Game, error)
	FindAll(ctx context.Context) ([]models.Game, error)
	FindByGenre(ctx context.Context, genre string, p *Pagination) ([]*models.Game, error)
	Search(ctx context.Context, keyword string, p *Pagination) ([]*models.Game, error)
	MaxCatalogVersion(ctx context.Context) (int, error)
}

// gameRepo 游戏目录仓储实现
type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建游戏目录仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建目录条目
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// Update 更新目录条目
func (r *gameRepo) Update(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

// Delete 删除目录条目（软删除）
func (r *gameRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Game{}, id).Error
}

// FindByID 根据ID查找
func (r *gameRepo) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, id).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// FindByIDs 批量查找
func (r *gameRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Game, error) {
	var games []models.Game
	if len(ids) == 0 {
		return games, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error
	return games, err
}

// FindByExternalID 根据平台外部ID查找
func (r *gameRepo) FindByExternalID(ctx context.Context, platform, externalID string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Where("platform = ? AND external_id = ?", platform, externalID).
		First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// FindAll 取全量目录（推荐候选集）
func (r *gameRepo) FindAll(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).Order("id asc").Find(&games).Error
	return games, err
}

// FindByGenre 按类型查找（分页）
func (r *gameRepo) FindByGenre(ctx context.Context, genre string, p *Pagination) ([]*models.Game, error) {
	var games []*models.Game

	// JSON数组里的类型用LIKE匹配, SQLite/MySQL/Postgres行为一致
	pattern := "%\"" + genre + "\"%"

	r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("genres LIKE ?", pattern).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("genres LIKE ?", pattern).
		Order("id asc").
		Scopes(Paginate(p)).
		Find(&games).Error

	return games, err
}

// Search 按名称模糊搜索（分页）
func (r *gameRepo) Search(ctx context.Context, keyword string, p *Pagination) ([]*models.Game, error) {
	var games []*models.Game
	pattern := "%" + keyword + "%"

	r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("name LIKE ?", pattern).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("name LIKE ?", pattern).
		Order("id asc").
		Scopes(Paginate(p)).
		Find(&games).Error

	return games, err
}

// MaxCatalogVersion 当前目录的最大版本号（特征缓存失效判据）
func (r *gameRepo) MaxCatalogVersion(ctx context.Context) (int, error) {
	var version int
	err := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Select("COALESCE(MAX(catalog_version), 0)").
		Row().Scan(&version)
	return version, err
}

// WithTx 使用事务
func (r *gameRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
