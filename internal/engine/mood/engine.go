package mood

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Config 情绪引擎配置
type Config struct {
	WindowSessions int           // 滑动窗口内最多会话数
	WindowDays     int           // 滑动窗口天数
	HalfLife       time.Duration // 指数衰减半衰期
	MaxTriggers    int           // 输出触发标签上限
}

// GetDefaultConfig 默认配置
func GetDefaultConfig() *Config {
	return &Config{
		WindowSessions: 20,
		WindowDays:     14,
		HalfLife:       72 * time.Hour,
		MaxTriggers:    5,
	}
}

// Analysis 情绪分析结果
type Analysis struct {
	Mood       string   `json:"mood"`
	Confidence float64  `json:"confidence"` // 0-1, 胜出得分/总得分
	Intensity  float64  `json:"intensity"`  // 0-1, 按贡献加权的强度
	Triggers   []string `json:"triggers"`   // 贡献最大的标签
	Reasoning  []string `json:"reasoning"`  // 可读的贡献来源说明
}

// Engine 规则式情绪分类引擎
// 纯计算, 不持有会话数据, 无自身状态变更,
// 相同输入窗口总是产生相同输出。
type Engine struct {
	config *Config
	table  *GenreMoodTable
}

// NewEngine 创建情绪引擎
func NewEngine(config *Config, table *GenreMoodTable) *Engine {
	if config == nil {
		config = GetDefaultConfig()
	}
	if table == nil {
		table = NewGenreMoodTable()
	}
	return &Engine{config: config, table: table}
}

// Table 引擎使用的共享映射表
func (e *Engine) Table() *GenreMoodTable {
	return e.table
}

// Analyze 从会话窗口推断当前情绪
// sessions按StartTime升序传入; 空窗口返回零置信度的中性结果, 不报错。
func (e *Engine) Analyze(sessions []models.GameSession, now time.Time) *Analysis {
	window := e.selectWindow(sessions, now)
	if len(window) == 0 {
		return &Analysis{
			Mood:       MoodRelaxing,
			Confidence: 0,
			Intensity:  0.5,
			Triggers:   []string{},
			Reasoning:  []string{"无近期会话, 使用中性默认情绪"},
		}
	}

	scores := make(map[string]float64)
	triggerScores := make(map[string]float64)
	var totalScore, weightedIntensity, totalWeight float64
	reasoning := make([]string, 0, len(window))

	for i := range window {
		s := &window[i]
		w := e.sessionWeight(s, now)
		if w <= 0 {
			continue
		}

		// 显式情绪标注是最强的投票
		if s.Mood != "" {
			scores[s.Mood] += w
			totalScore += w
		}

		// 类型映射表投票, 强度放大紧张类情绪
		for moodID, mw := range e.table.Lookup(s.Genre) {
			vote := mw * w
			if moodID == MoodIntense || moodID == MoodGritty || moodID == MoodCompetitive {
				vote *= 0.5 + s.Intensity
			}
			scores[moodID] += vote
			totalScore += vote
		}

		for _, tag := range s.Tags {
			triggerScores[tag] += w
		}

		weightedIntensity += s.Intensity * w
		totalWeight += w
		reasoning = append(reasoning, fmt.Sprintf(
			"会话%s(%s, %.1fh前)贡献权重%.3f", s.SessionID, s.Genre,
			now.Sub(s.StartTime).Hours(), w))
	}

	if totalScore == 0 {
		return &Analysis{
			Mood:       MoodRelaxing,
			Confidence: 0,
			Intensity:  0.5,
			Triggers:   []string{},
			Reasoning:  reasoning,
		}
	}

	winner, winScore := e.pickWinner(scores, window)

	intensity := 0.5
	if totalWeight > 0 {
		intensity = vector.Clamp01(weightedIntensity / totalWeight)
	}

	return &Analysis{
		Mood:       winner,
		Confidence: vector.Clamp01(winScore / totalScore),
		Intensity:  intensity,
		Triggers:   topTriggers(triggerScores, e.config.MaxTriggers),
		Reasoning:  reasoning,
	}
}

// selectWindow 截取分析窗口: 最近WindowSessions条且在WindowDays天内
func (e *Engine) selectWindow(sessions []models.GameSession, now time.Time) []models.GameSession {
	cutoff := now.AddDate(0, 0, -e.config.WindowDays)

	window := make([]models.GameSession, 0, e.config.WindowSessions)
	for i := len(sessions) - 1; i >= 0 && len(window) < e.config.WindowSessions; i-- {
		if sessions[i].StartTime.Before(cutoff) {
			break
		}
		window = append(window, sessions[i])
	}

	// 恢复时间升序
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window
}

// sessionWeight 会话投票权重 = 指数时间衰减 × 时长系数
func (e *Engine) sessionWeight(s *models.GameSession, now time.Time) float64 {
	age := now.Sub(s.StartTime)
	if age < 0 {
		age = 0
	}
	decay := math.Exp2(-age.Hours() / e.config.HalfLife.Hours())

	// 时长系数: 2小时封顶, 避免超长会话独占
	hours := s.DurationHours()
	durFactor := 0.5 + vector.Clamp(hours, 0, 2)/2

	return decay * durFactor
}

// pickWinner 选出最高得分情绪, 平分时取最近会话的标注情绪
func (e *Engine) pickWinner(scores map[string]float64, window []models.GameSession) (string, float64) {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	winner, best := "", -1.0
	for _, id := range ids {
		if scores[id] > best {
			winner, best = id, scores[id]
		}
	}

	// 收集并列最高分的情绪
	tied := make(map[string]bool)
	for _, id := range ids {
		if scores[id] == best {
			tied[id] = true
		}
	}

	// 平分用最近会话的显式情绪打破
	if len(tied) > 1 {
		for i := len(window) - 1; i >= 0; i-- {
			if m := window[i].Mood; tied[m] {
				winner = m
				break
			}
		}
	}

	return winner, best
}

// topTriggers 取贡献最大的若干标签, 得分相同按字典序保证确定性
func topTriggers(scores map[string]float64, limit int) []string {
	tags := make([]string, 0, len(scores))
	for tag := range scores {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if scores[tags[i]] != scores[tags[j]] {
			return scores[tags[i]] > scores[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
