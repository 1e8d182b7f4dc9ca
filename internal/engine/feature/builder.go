package feature

import (
	"strings"

	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Vector 游戏特征向量
// 由目录元数据派生, 同一元数据+词表版本下结果确定, 可安全缓存。
type Vector struct {
	GameID           uint      `json:"game_id"`
	GenreVector      []float64 `json:"genre_vector"`
	MoodVector       []float64 `json:"mood_vector"`
	DifficultyScore  float64   `json:"difficulty_score"`  // 0-1
	SocialScore      float64   `json:"social_score"`      // 0-1
	PlaytimeEstimate float64   `json:"playtime_estimate"` // 小时
	PopularityScore  float64   `json:"popularity_score"`  // 0-1
	CriticScore      float64   `json:"critic_score"`      // 0-1
	UserScore        float64   `json:"user_score"`        // 0-1
}

// Combined 拼接成单个检索向量, 供向量索引使用
func (v *Vector) Combined() []float64 {
	out := make([]float64, 0, len(v.GenreVector)+len(v.MoodVector)+2)
	out = append(out, v.GenreVector...)
	out = append(out, v.MoodVector...)
	out = append(out, v.DifficultyScore, v.SocialScore)
	return out
}

// 类型先验: 难度与预估时长, 缺少显式元数据时使用
var genrePriors = map[string]struct {
	difficulty float64
	playtime   float64
}{
	"action":       {0.6, 15},
	"adventure":    {0.4, 20},
	"rpg":          {0.5, 60},
	"strategy":     {0.7, 40},
	"simulation":   {0.4, 50},
	"puzzle":       {0.5, 10},
	"horror":       {0.6, 12},
	"shooter":      {0.6, 20},
	"platformer":   {0.6, 10},
	"racing":       {0.5, 15},
	"sports":       {0.5, 30},
	"fighting":     {0.7, 25},
	"sandbox":      {0.3, 80},
	"survival":     {0.7, 40},
	"roguelike":    {0.8, 35},
	"mmo":          {0.5, 200},
	"moba":         {0.8, 150},
	"card":         {0.5, 30},
	"casual":       {0.2, 8},
	"rhythm":       {0.6, 12},
	"visual-novel": {0.1, 15},
	"metroidvania": {0.6, 15},
	"stealth":      {0.6, 15},
	"idle":         {0.1, 100},
}

// 暗示多人属性的标签
var socialTags = map[string]float64{
	"multiplayer":  0.5,
	"co-op":        0.4,
	"coop":         0.4,
	"online":       0.3,
	"pvp":          0.4,
	"party":        0.4,
	"team-based":   0.3,
	"mmo":          0.5,
	"social":       0.4,
	"local-co-op":  0.3,
	"cross-play":   0.2,
	"competitive":  0.2,
	"leaderboards": 0.1,
}

// Builder 游戏特征构建器
// 在此处统一校验目录元数据并填充缺省值, 评分层不再做字段防御。
type Builder struct {
	table    *mood.GenreMoodTable
	genrePos map[string]int
}

// NewBuilder 创建特征构建器, 与情绪引擎共享同一张映射表
func NewBuilder(table *mood.GenreMoodTable) *Builder {
	if table == nil {
		table = mood.NewGenreMoodTable()
	}
	pos := make(map[string]int, len(mood.GenreVocabulary))
	for i, g := range mood.GenreVocabulary {
		pos[g] = i
	}
	return &Builder{table: table, genrePos: pos}
}

// Build 把目录条目转换成特征向量
// 全部字段缺省都有定义好的回退值, 不会失败。
func (b *Builder) Build(game *models.Game) *Vector {
	genres := normalizeGenres(game.Genres)

	return &Vector{
		GameID:           game.ID,
		GenreVector:      b.genreVector(genres),
		MoodVector:       b.table.MoodVector(genres),
		DifficultyScore:  b.difficultyScore(game, genres),
		SocialScore:      b.socialScore(game),
		PlaytimeEstimate: b.playtimeEstimate(game, genres),
		PopularityScore:  optionalScore(game.PopularityScore, 0.5, 1),
		CriticScore:      optionalScore(game.CriticScore, 0.5, 100),
		UserScore:        optionalScore(game.UserScore, 0.5, 100),
	}
}

// genreVector 类型多热编码, 未知类型被忽略
func (b *Builder) genreVector(genres []string) []float64 {
	vec := make([]float64, len(mood.GenreVocabulary))
	for _, g := range genres {
		if i, ok := b.genrePos[g]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// difficultyScore 显式元数据优先, 否则取类型先验平均
func (b *Builder) difficultyScore(game *models.Game, genres []string) float64 {
	if game.Difficulty != nil {
		return vector.Clamp01(*game.Difficulty)
	}

	var total float64
	var count int
	for _, g := range genres {
		if p, ok := genrePriors[g]; ok {
			total += p.difficulty
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return total / float64(count)
}

// socialScore 多人标志为主信号, 标签为辅
func (b *Builder) socialScore(game *models.Game) float64 {
	score := 0.0
	if game.IsMultiplayer != nil && *game.IsMultiplayer {
		score = 0.5
	}
	for _, tag := range game.Tags {
		score += socialTags[strings.ToLower(strings.TrimSpace(tag))]
	}
	return vector.Clamp01(score)
}

// playtimeEstimate 显式平均时长优先, 否则取类型先验平均
func (b *Builder) playtimeEstimate(game *models.Game, genres []string) float64 {
	if game.AveragePlaytime != nil && *game.AveragePlaytime > 0 {
		return *game.AveragePlaytime
	}

	var total float64
	var count int
	for _, g := range genres {
		if p, ok := genrePriors[g]; ok {
			total += p.playtime
			count++
		}
	}
	if count == 0 {
		return 10
	}
	return total / float64(count)
}

// optionalScore 可选评分归一化到0-1, 缺省用中值
func optionalScore(v *float64, fallback, scale float64) float64 {
	if v == nil {
		return fallback
	}
	return vector.Clamp01(*v / scale)
}

// normalizeGenres 小写去空白, 丢弃空项
func normalizeGenres(genres models.StringSlice) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}
