package feature

import (
	"fmt"
	"sync"

	"github.com/wfunc/game-library/internal/models"
)

// Cache 特征向量缓存
// 键包含目录版本与映射表版本, 任一变化即自然失效;
// InvalidateAll提供目录整体变更时的显式失效入口。
type Cache struct {
	mu      sync.RWMutex
	builder *Builder
	entries map[string]*Vector
}

// NewCache 创建特征缓存
func NewCache(builder *Builder) *Cache {
	return &Cache{
		builder: builder,
		entries: make(map[string]*Vector),
	}
}

// Get 取特征向量, 未命中时构建并缓存
func (c *Cache) Get(game *models.Game) *Vector {
	key := c.key(game)

	c.mu.RLock()
	if v, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	v := c.builder.Build(game)

	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
	return v
}

// InvalidateAll 清空全部缓存
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Vector)
}

// Len 缓存条目数
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) key(game *models.Game) string {
	return fmt.Sprintf("%d:%d:%d", game.ID, game.CatalogVersion, c.builder.table.Version())
}
