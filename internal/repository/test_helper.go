package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/game-library/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置内存数据库
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 游戏库
		&models.Game{},
		&models.GameSession{},

		// 玩家身份
		&models.PlayerIdentity{},
		&models.UserMood{},
		&models.MoodForecast{},

		// 难度评估
		&models.DifficultyProfile{},
		&models.LearningPoint{},

		// 共鸣追踪
		&models.SessionResonance{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// TestDB 创建测试数据库
func TestDB(t *testing.T) *gorm.DB {
	db := SetupTestDB()
	t.Cleanup(func() {
		CleanupTestDB(db)
	})
	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestData 创建测试数据
func SeedTestData(t *testing.T, db *gorm.DB) {
	users := []models.User{
		{
			Username: "testuser1",
			Email:    "test1@example.com",
			Nickname: "测试用户1",
			Status:   "active",
		},
		{
			Username: "testuser2",
			Email:    "test2@example.com",
			Nickname: "测试用户2",
			Status:   "active",
		},
	}
	err := db.Create(&users).Error
	require.NoError(t, err)

	games := []models.Game{
		{
			Name:           "Dread Manor",
			Platform:       "steam",
			Genres:         models.StringSlice{"horror", "survival"},
			Tags:           models.StringSlice{"jumpscare", "dark"},
			CatalogVersion: 1,
		},
		{
			Name:           "Farm Story",
			Platform:       "steam",
			Genres:         models.StringSlice{"casual", "simulation"},
			Tags:           models.StringSlice{"cozy"},
			CatalogVersion: 1,
		},
	}
	err = db.Create(&games).Error
	require.NoError(t, err)
}

// CreateTestSession 创建测试游玩会话
func CreateTestSession(userID, gameID uint, genre string, start time.Time) *models.GameSession {
	return &models.GameSession{
		SessionID: "test_session_" + start.Format("20060102150405.000000000"),
		UserID:    userID,
		GameID:    gameID,
		Genre:     genre,
		StartTime: start,
		Intensity: 0.5,
	}
}
