package database

import (
	"fmt"

	"github.com/wfunc/game-library/internal/logger"
	"github.com/wfunc/game-library/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 获取迁移锁,避免多进程同时迁移SQLite
	lockPath, err := acquireMigrationLock(DB)
	if err != nil {
		return err
	}
	defer releaseMigrationLock(lockPath)

	// SQLite迁移期间关闭外键检查
	isSQLite := DB.Dialector.Name() == "sqlite"
	if isSQLite {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	// 迁移所有模型
	err = DB.AutoMigrate(
		// 用户相关
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 游戏库相关
		&models.Game{},
		&models.GameSession{},

		// 玩家身份相关
		&models.PlayerIdentity{},
		&models.UserMood{},
		&models.MoodForecast{},

		// 难度评估相关
		&models.DifficultyProfile{},
		&models.LearningPoint{},

		// 共鸣追踪相关
		&models.SessionResonance{},
	)

	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 创建索引
	if err := createIndexes(DB); err != nil {
		logger.Warn("创建索引失败", zap.Error(err))
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建额外的查询索引
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_game_sessions_user_start ON game_sessions(user_id, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_game_sessions_game ON game_sessions(game_id)",
		"CREATE INDEX IF NOT EXISTS idx_session_resonances_user_time ON session_resonances(user_id, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_mood_forecasts_user_consumed ON mood_forecasts(user_id, consumed)",
		"CREATE INDEX IF NOT EXISTS idx_learning_points_profile_time ON learning_points(profile_id, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_user_moods_identity ON user_moods(identity_id)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}

// InitDefaultData 初始化默认数据
func InitDefaultData() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 仅在游戏目录为空时写入示例目录,方便本地开发
	var count int64
	if err := DB.Model(&models.Game{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logger.Info("游戏目录为空,跳过默认数据初始化")
	return nil
}
