package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wfunc/game-library/internal/engine/feature"
	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Engine 混合推荐引擎
// 协同过滤 + 内容相似 + 情绪匹配 + 玩法匹配四路信号加权混合。
// 数据量不足时降级为按类型亲和度排序的回退路径, 永不报错。
type Engine struct {
	config *Config
	table  *mood.GenreMoodTable
	cache  *feature.Cache
	index  *vector.Index
}

// NewEngine 创建推荐引擎, 权重在此处归一化为和1
func NewEngine(config *Config, table *mood.GenreMoodTable, cache *feature.Cache) *Engine {
	if config == nil {
		config = GetDefaultConfig()
	}
	if table == nil {
		table = mood.NewGenreMoodTable()
	}
	if cache == nil {
		cache = feature.NewCache(feature.NewBuilder(table))
	}

	cfg := *config
	total := cfg.CollaborativeWeight + cfg.ContentBasedWeight + cfg.MoodWeight + cfg.PlaystyleWeight
	if total <= 0 {
		def := GetDefaultConfig()
		cfg.CollaborativeWeight = def.CollaborativeWeight
		cfg.ContentBasedWeight = def.ContentBasedWeight
		cfg.MoodWeight = def.MoodWeight
		cfg.PlaystyleWeight = def.PlaystyleWeight
		total = 1
	}
	cfg.CollaborativeWeight /= total
	cfg.ContentBasedWeight /= total
	cfg.MoodWeight /= total
	cfg.PlaystyleWeight /= total

	return &Engine{
		config: &cfg,
		table:  table,
		cache:  cache,
		index:  vector.NewIndexWithDimension(cfg.VectorDimension),
	}
}

// RebuildIndex 用目录重建向量索引
func (e *Engine) RebuildIndex(games []models.Game) {
	e.index.Clear()
	for i := range games {
		fv := e.cache.Get(&games[i])
		e.index.AddVector(strconv.FormatUint(uint64(games[i].ID), 10), fv.Combined(), nil)
	}
}

// IndexSize 当前索引内游戏数
func (e *Engine) IndexSize() int {
	return e.index.Size()
}

// GetRecommendations 生成排序后的推荐列表
// identity与sessions描述请求用户; matrix为全体用户的评分矩阵(可为nil);
// 输出按Score降序, 长度不超过ctx.Count与MaxCount的较小值。
func (e *Engine) GetRecommendations(identity *models.PlayerIdentity, sessions []models.GameSession, ctx *Context, candidates []models.Game, matrix *Matrix) []Recommendation {
	if ctx == nil {
		ctx = &Context{}
	}
	count := ctx.Count
	if count <= 0 || count > e.config.MaxCount {
		count = e.config.MaxCount
	}

	filtered := e.applyFilters(sessions, ctx, candidates)
	if len(filtered) == 0 {
		return []Recommendation{}
	}

	// 数据量不足: 走类型亲和度回退路径
	if len(sessions) < e.config.MinDataPoints {
		return e.fallbackRecommendations(identity, filtered, count)
	}

	profile := BuildProfile(userIDOf(identity, sessions), sessions)
	prefVector := profile.PreferenceVector(e.table)
	filtered = e.narrowByIndex(prefVector, filtered)

	currentMood := ctx.CurrentMood
	if currentMood == "" && identity != nil {
		currentMood = identity.ComputedMood
	}
	moodVec := e.table.MoodVector([]string{}) // 零向量兜底
	if currentMood != "" {
		moodVec = moodVectorFor(currentMood)
	}

	results := make([]Recommendation, 0, len(filtered))
	for i := range filtered {
		game := &filtered[i]
		fv := e.cache.Get(game)

		collab, hasCollab := 0.0, false
		if matrix != nil {
			collab, hasCollab = matrix.Score(profile.UserID, game.ID, e.config.MinDataPoints)
		}

		content := vector.Clamp01(vector.CosineSimilarity(prefVector, fv.Combined()))
		moodMatch := vector.Clamp01(vector.CosineSimilarity(moodVec, fv.MoodVector))
		playstyle := e.playstyleMatch(identity, profile, fv)

		// 无协同数据时该路贡献为0, 其余信号照常
		score := e.config.ContentBasedWeight*content +
			e.config.MoodWeight*moodMatch +
			e.config.PlaystyleWeight*playstyle
		if hasCollab {
			score += e.config.CollaborativeWeight * collab
		}

		confidence := 0.5 + 0.5*vector.Clamp01(float64(len(sessions))/20.0)
		if !hasCollab {
			confidence *= 0.85
		}

		results = append(results, Recommendation{
			GameID:            game.ID,
			Score:             vector.Clamp01(score),
			Reasons:           e.buildReasons(collab, hasCollab, content, moodMatch, playstyle, currentMood),
			MoodMatch:         moodMatch,
			PlaystyleMatch:    playstyle,
			SocialMatch:       fv.SocialScore,
			EstimatedPlaytime: fv.PlaytimeEstimate,
			Difficulty:        fv.DifficultyScore,
			Tags:              game.Tags,
			Confidence:        vector.Clamp01(confidence),
		})
	}

	sortRecommendations(results)
	if len(results) > count {
		results = results[:count]
	}
	return results
}

// applyFilters 按请求上下文过滤候选
func (e *Engine) applyFilters(sessions []models.GameSession, ctx *Context, candidates []models.Game) []models.Game {
	recent := make(map[uint]bool)
	if ctx.ExcludeRecent {
		cutoff := time.Now().AddDate(0, 0, -7)
		for i := range sessions {
			if sessions[i].StartTime.After(cutoff) {
				recent[sessions[i].GameID] = true
			}
		}
	}

	wantGenres := make(map[string]bool, len(ctx.Genres))
	for _, g := range ctx.Genres {
		wantGenres[strings.ToLower(strings.TrimSpace(g))] = true
	}

	out := make([]models.Game, 0, len(candidates))
	for i := range candidates {
		game := &candidates[i]

		if recent[game.ID] {
			continue
		}
		if ctx.Platform != "" && !strings.EqualFold(game.Platform, ctx.Platform) {
			continue
		}
		if len(wantGenres) > 0 && !matchesGenre(game.Genres, wantGenres) {
			continue
		}
		if ctx.SocialContext == "group" {
			if game.IsMultiplayer == nil || !*game.IsMultiplayer {
				continue
			}
		}
		if ctx.TimeAvailable > 0 {
			fv := e.cache.Get(game)
			// 预估单次会话时长约为总时长的1/10, 超出可用时间2倍的跳过
			if fv.PlaytimeEstimate/10 > ctx.TimeAvailable*2 {
				continue
			}
		}

		out = append(out, *game)
	}
	return out
}

// narrowByIndex 大目录时用向量索引预筛TopK, 小目录原样返回
func (e *Engine) narrowByIndex(prefVector []float64, candidates []models.Game) []models.Game {
	if len(candidates) <= e.config.IndexTopK || e.index.Size() == 0 {
		return candidates
	}

	hits := e.index.Search(prefVector, e.config.IndexTopK)
	keep := make(map[uint]bool, len(hits))
	for _, h := range hits {
		if id, err := strconv.ParseUint(h.ID, 10, 64); err == nil {
			keep[uint(id)] = true
		}
	}

	out := make([]models.Game, 0, len(hits))
	for i := range candidates {
		if keep[candidates[i].ID] {
			out = append(out, candidates[i])
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

// playstyleMatch 画像玩法属性与候选属性的贴合度
func (e *Engine) playstyleMatch(identity *models.PlayerIdentity, profile *Profile, fv *feature.Vector) float64 {
	// 会话时长贴合: 预估单次时长与平均会话时长之比
	durFit := 1.0
	if profile.AverageSessionLength > 0 {
		perSession := fv.PlaytimeEstimate / 10
		ratio := perSession / profile.AverageSessionLength
		if ratio > 1 {
			ratio = 1 / ratio
		}
		durFit = ratio
	}

	diffFit := 1 - abs(profile.DifficultyPreference-fv.DifficultyScore)
	socialFit := 1 - abs(profile.SocialPreference-fv.SocialScore)

	match := durFit*0.3 + diffFit*0.4 + socialFit*0.3

	// 画像中的显式玩法声明覆盖行为推断
	if identity != nil && identity.Playstyle != nil {
		if v, ok := identity.Playstyle["preferred_difficulty"].(float64); ok {
			match = match*0.7 + (1-abs(v-fv.DifficultyScore))*0.3
		}
	}

	return vector.Clamp01(match)
}

// buildReasons 超过阈值的信号生成可读理由
func (e *Engine) buildReasons(collab float64, hasCollab bool, content, moodMatch, playstyle float64, currentMood string) []string {
	reasons := make([]string, 0, 4)
	th := e.config.ReasonThreshold

	if hasCollab && collab >= th {
		reasons = append(reasons, "与你相似的玩家也喜欢这款游戏")
	}
	if content >= th {
		reasons = append(reasons, "与你的游戏偏好高度相似")
	}
	if moodMatch >= th && currentMood != "" {
		reasons = append(reasons, fmt.Sprintf("契合你当前的%s情绪", currentMood))
	}
	if playstyle >= th {
		reasons = append(reasons, "符合你的玩法习惯")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "综合评分推荐")
	}
	return reasons
}

// fallbackRecommendations 类型亲和度回退排序
// 仅用画像中的GenreAffinities打分, 置信度统一压低。
func (e *Engine) fallbackRecommendations(identity *models.PlayerIdentity, candidates []models.Game, count int) []Recommendation {
	var affinities models.FloatMap
	if identity != nil {
		affinities = identity.GenreAffinities
	}

	results := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		game := &candidates[i]
		fv := e.cache.Get(game)

		score := 0.0
		var n int
		for _, g := range game.Genres {
			score += affinities[strings.ToLower(strings.TrimSpace(g))]
			n++
		}
		if n > 0 {
			score /= float64(n)
		}
		// 无任何亲和度数据时用流行度兜底
		if score == 0 {
			score = fv.PopularityScore * 0.5
		}

		results = append(results, Recommendation{
			GameID:            game.ID,
			Score:             vector.Clamp01(score),
			Reasons:           []string{"基于你的类型偏好推荐"},
			SocialMatch:       fv.SocialScore,
			EstimatedPlaytime: fv.PlaytimeEstimate,
			Difficulty:        fv.DifficultyScore,
			Tags:              game.Tags,
			Confidence:        0.2,
			Fallback:          true,
		})
	}

	sortRecommendations(results)
	if len(results) > count {
		results = results[:count]
	}
	return results
}

// sortRecommendations 按Score降序, 同分按GameID升序保证确定性
func sortRecommendations(results []Recommendation) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].GameID < results[j].GameID
	})
}

// moodVectorFor 单个情绪标签的one-hot向量
func moodVectorFor(moodID string) []float64 {
	vec := make([]float64, len(mood.Vocabulary))
	for i, m := range mood.Vocabulary {
		if m == moodID {
			vec[i] = 1
			break
		}
	}
	return vec
}

func userIDOf(identity *models.PlayerIdentity, sessions []models.GameSession) uint {
	if identity != nil {
		return identity.UserID
	}
	if len(sessions) > 0 {
		return sessions[0].UserID
	}
	return 0
}

func matchesGenre(genres models.StringSlice, want map[string]bool) bool {
	for _, g := range genres {
		if want[strings.ToLower(strings.TrimSpace(g))] {
			return true
		}
	}
	return false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
