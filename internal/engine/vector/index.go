package vector

import (
	"sort"
	"sync"
)

// SearchResult 索引检索结果
type SearchResult struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// entry 索引内部条目
type entry struct {
	vector   []float64
	metadata map[string]interface{}
}

// Index 内存向量检索索引
// 进程启动或目录变更时整体重建, 无持久化。
// 读多写少, 用读写锁保护并发访问。
type Index struct {
	mu        sync.RWMutex
	dimension int // >0时所有向量对齐到该维度
	entries   map[string]entry
}

// NewIndex 创建自由维度的向量索引
func NewIndex() *Index {
	return NewIndexWithDimension(0)
}

// NewIndexWithDimension 创建固定维度的向量索引
// dimension>0时入库与查询向量都截断或零填充到该维度,
// 使不同目录版本产出的向量可以比较; dimension<=0为自由维度。
func NewIndexWithDimension(dimension int) *Index {
	return &Index{
		dimension: dimension,
		entries:   make(map[string]entry),
	}
}

// conform 对齐向量到索引维度, 始终返回副本
func (idx *Index) conform(vec []float64) []float64 {
	n := len(vec)
	if idx.dimension > 0 {
		n = idx.dimension
	}
	cp := make([]float64, n)
	copy(cp, vec)
	return cp
}

// AddVector 添加或覆盖一个向量
func (idx *Index) AddVector(id string, vec []float64, metadata map[string]interface{}) {
	cp := idx.conform(vec)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[id] = entry{vector: cp, metadata: metadata}
}

// RemoveVector 删除指定向量, 不存在时为空操作
func (idx *Index) RemoveVector(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, id)
}

// Search 暴力余弦检索, 按相似度降序返回前topK个结果
// topK<=0或查询向量为零向量时返回空结果。
func (idx *Index) Search(query []float64, topK int) []SearchResult {
	if topK <= 0 {
		return nil
	}
	q := idx.conform(query)
	var mag float64
	for _, x := range q {
		mag += x * x
	}
	if mag == 0 {
		return nil
	}

	idx.mu.RLock()
	results := make([]SearchResult, 0, len(idx.entries))
	for id, e := range idx.entries {
		score := CosineSimilarity(q, e.vector)
		results = append(results, SearchResult{
			ID:       id,
			Score:    score,
			Metadata: e.metadata,
		})
	}
	idx.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Size 当前索引内向量数
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Clear 清空索引
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = make(map[string]entry)
}
