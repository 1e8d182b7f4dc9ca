package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wfunc/game-library/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// acquireMigrationLock 获取迁移文件锁,防止多进程并发迁移
func acquireMigrationLock(db *gorm.DB) (string, error) {
	dbPath := getDBPath(db)
	if dbPath == "" || dbPath == ":memory:" {
		// 内存数据库无需文件锁
		return "", nil
	}

	lockPath := dbPath + ".migrate.lock"

	for i := 0; i < 30; i++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d %s", os.Getpid(), time.Now().Format(time.RFC3339))
			f.Close()
			return lockPath, nil
		}

		// 检查锁文件是否过期
		if info, statErr := os.Stat(lockPath); statErr == nil {
			if time.Since(info.ModTime()) > 5*time.Minute {
				logger.Warn("清理过期的迁移锁", zap.String("path", lockPath))
				os.Remove(lockPath)
				continue
			}
		}

		time.Sleep(time.Second)
	}

	return "", fmt.Errorf("获取迁移锁超时: %s", lockPath)
}

// releaseMigrationLock 释放迁移文件锁
func releaseMigrationLock(lockPath string) {
	if lockPath == "" {
		return
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("释放迁移锁失败", zap.String("path", lockPath), zap.Error(err))
	}
}

// getDBPath 获取SQLite数据库文件路径
func getDBPath(db *gorm.DB) string {
	var name, file string
	row := db.Raw("PRAGMA database_list").Row()
	var seq int
	if err := row.Scan(&seq, &name, &file); err != nil {
		return ""
	}
	return file
}

// CleanupStaleLocks 清理数据目录下的过期锁文件
func CleanupStaleLocks(dataDir string) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".migrate.lock") {
			continue
		}
		path := filepath.Join(dataDir, entry.Name())
		if info, err := entry.Info(); err == nil && time.Since(info.ModTime()) > 5*time.Minute {
			logger.Info("清理过期锁文件", zap.String("path", path))
			os.Remove(path)
		}
	}
}
