package mood

import (
	"strings"
	"sync"
)

// 情绪标签常量
const (
	MoodRelaxing    = "relaxing"
	MoodIntense     = "intense"
	MoodGritty      = "gritty"
	MoodCreative    = "creative"
	MoodSocial      = "social"
	MoodCompetitive = "competitive"
	MoodAdventurous = "adventurous"
	MoodStrategic   = "strategic"
	MoodNostalgic   = "nostalgic"
)

// Vocabulary 情绪词表, 顺序固定, 决定情绪向量的维度排列
var Vocabulary = []string{
	MoodRelaxing,
	MoodIntense,
	MoodGritty,
	MoodCreative,
	MoodSocial,
	MoodCompetitive,
	MoodAdventurous,
	MoodStrategic,
	MoodNostalgic,
}

// GenreVocabulary 类型词表, 顺序固定, 决定类型向量的维度排列
var GenreVocabulary = []string{
	"action", "adventure", "rpg", "strategy", "simulation",
	"puzzle", "horror", "shooter", "platformer", "racing",
	"sports", "fighting", "sandbox", "survival", "roguelike",
	"mmo", "moba", "card", "casual", "rhythm",
	"visual-novel", "metroidvania", "stealth", "idle",
}

// GenreMoodTable 共享的类型→情绪映射表
// 情绪引擎、特征构建器、推荐引擎注入同一实例,
// 保证分类结果与特征向量使用一致的映射, 版本号随表内容更新递增。
type GenreMoodTable struct {
	mu      sync.RWMutex
	version int
	weights map[string]map[string]float64
}

// NewGenreMoodTable 创建带默认映射的类型→情绪表
func NewGenreMoodTable() *GenreMoodTable {
	return &GenreMoodTable{
		version: 1,
		weights: defaultGenreMoods(),
	}
}

// defaultGenreMoods 默认映射, 每个类型的情绪权重和为1
func defaultGenreMoods() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"action":       {MoodIntense: 0.5, MoodCompetitive: 0.3, MoodAdventurous: 0.2},
		"adventure":    {MoodAdventurous: 0.6, MoodRelaxing: 0.2, MoodCreative: 0.2},
		"rpg":          {MoodAdventurous: 0.4, MoodStrategic: 0.3, MoodCreative: 0.3},
		"strategy":     {MoodStrategic: 0.7, MoodCompetitive: 0.3},
		"simulation":   {MoodRelaxing: 0.5, MoodCreative: 0.3, MoodStrategic: 0.2},
		"puzzle":       {MoodStrategic: 0.5, MoodRelaxing: 0.5},
		"horror":       {MoodGritty: 0.6, MoodIntense: 0.4},
		"shooter":      {MoodIntense: 0.5, MoodCompetitive: 0.5},
		"platformer":   {MoodNostalgic: 0.4, MoodRelaxing: 0.3, MoodIntense: 0.3},
		"racing":       {MoodIntense: 0.5, MoodCompetitive: 0.5},
		"sports":       {MoodCompetitive: 0.6, MoodSocial: 0.4},
		"fighting":     {MoodCompetitive: 0.6, MoodIntense: 0.4},
		"sandbox":      {MoodCreative: 0.6, MoodRelaxing: 0.4},
		"survival":     {MoodGritty: 0.4, MoodIntense: 0.4, MoodAdventurous: 0.2},
		"roguelike":    {MoodIntense: 0.4, MoodStrategic: 0.4, MoodGritty: 0.2},
		"mmo":          {MoodSocial: 0.6, MoodAdventurous: 0.4},
		"moba":         {MoodCompetitive: 0.6, MoodSocial: 0.2, MoodIntense: 0.2},
		"card":         {MoodStrategic: 0.6, MoodRelaxing: 0.4},
		"casual":       {MoodRelaxing: 0.8, MoodSocial: 0.2},
		"rhythm":       {MoodIntense: 0.4, MoodRelaxing: 0.3, MoodNostalgic: 0.3},
		"visual-novel": {MoodRelaxing: 0.5, MoodCreative: 0.3, MoodNostalgic: 0.2},
		"metroidvania": {MoodAdventurous: 0.5, MoodNostalgic: 0.3, MoodIntense: 0.2},
		"stealth":      {MoodStrategic: 0.5, MoodIntense: 0.3, MoodGritty: 0.2},
		"idle":         {MoodRelaxing: 1.0},
	}
}

// neutralEntry 未知类型的中性回退项, 轻微偏向放松
var neutralEntry = map[string]float64{
	MoodRelaxing:    0.3,
	MoodAdventurous: 0.25,
	MoodCreative:    0.25,
	MoodSocial:      0.2,
}

// Version 当前表版本
func (t *GenreMoodTable) Version() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Lookup 查询类型对应的情绪权重
// 未知类型回退到中性默认项, 不会失败。
func (t *GenreMoodTable) Lookup(genre string) map[string]float64 {
	key := strings.ToLower(strings.TrimSpace(genre))

	t.mu.RLock()
	defer t.mu.RUnlock()
	if w, ok := t.weights[key]; ok {
		return w
	}
	return neutralEntry
}

// SetGenre 更新单个类型的映射并递增版本号
func (t *GenreMoodTable) SetGenre(genre string, weights map[string]float64) {
	key := strings.ToLower(strings.TrimSpace(genre))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.weights[key] = weights
	t.version++
}

// MoodVector 把一组类型聚合成固定长度的情绪向量
// 维度顺序与Vocabulary一致, 结果归一化到和为1(全零时原样返回)。
func (t *GenreMoodTable) MoodVector(genres []string) []float64 {
	vec := make([]float64, len(Vocabulary))
	if len(genres) == 0 {
		return vec
	}

	pos := make(map[string]int, len(Vocabulary))
	for i, m := range Vocabulary {
		pos[m] = i
	}

	var total float64
	for _, g := range genres {
		for moodID, w := range t.Lookup(g) {
			if i, ok := pos[moodID]; ok {
				vec[i] += w
				total += w
			}
		}
	}

	if total > 0 {
		for i := range vec {
			vec[i] /= total
		}
	}
	return vec
}
