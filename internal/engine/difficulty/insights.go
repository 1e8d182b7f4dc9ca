package difficulty

import (
	"sort"
	"time"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// TrendPoint 技能趋势点
type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Performance float64   `json:"performance"`
}

// Insights 难度洞察报告, 只读不修改档案
type Insights struct {
	UserID           uint         `json:"user_id"`
	SkillLevel       float64      `json:"skill_level"`
	SkillTrend       []TrendPoint `json:"skill_trend"`
	ImprovementRate  float64      `json:"improvement_rate"` // 每学习点的表现增量
	ConsistencyScore float64      `json:"consistency_score"`
	OptimalHours     []int        `json:"optimal_hours"` // 表现最好的时段(0-23)
	SampleCount      int          `json:"sample_count"`
}

// GetInsights 汇总用户的学习曲线趋势
// 档案不存在时返回空报告而不是nil。
func (a *Assessor) GetInsights(userID uint) *Insights {
	a.mu.RLock()
	defer a.mu.RUnlock()

	report := &Insights{
		UserID:           userID,
		SkillLevel:       a.config.DefaultSkill,
		SkillTrend:       []TrendPoint{},
		ConsistencyScore: 0.5,
		OptimalHours:     []int{},
	}

	el, ok := a.profiles[userID]
	if !ok {
		return report
	}
	profile := el.Value.(*arenaEntry).profile

	report.SkillLevel = profile.SkillLevel
	report.SampleCount = len(profile.LearningCurve)
	if report.SampleCount == 0 {
		return report
	}

	for _, p := range profile.LearningCurve {
		report.SkillTrend = append(report.SkillTrend, TrendPoint{
			Timestamp:   p.Timestamp,
			Performance: p.Performance,
		})
	}

	report.ImprovementRate = improvementTrend(profile.LearningCurve)
	report.ConsistencyScore = consistencyOf(profile.LearningCurve)
	report.OptimalHours = optimalHours(profile.LearningCurve)
	return report
}

// optimalHours 按小时聚合表现, 返回显著高于平均的时段
func optimalHours(curve []models.LearningPoint) []int {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range curve {
		h := p.Timestamp.Hour()
		sums[h] += p.Performance
		counts[h]++
	}

	var overall float64
	for h, s := range sums {
		overall += s / float64(counts[h])
	}
	if len(sums) == 0 {
		return []int{}
	}
	overall /= float64(len(sums))

	threshold := vector.Clamp01(overall * 1.1)
	out := make([]int, 0)
	for h, s := range sums {
		if counts[h] >= 2 && s/float64(counts[h]) >= threshold {
			out = append(out, h)
		}
	}
	sort.Ints(out)
	return out
}
