package resonance

import (
	"sort"

	"github.com/wfunc/game-library/internal/models"
)

// 趋势分类
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Analysis 共鸣记录窗口的聚合分析
type Analysis struct {
	OverallResonance float64            `json:"overall_resonance"` // 0-1
	MoodAccuracy     map[string]float64 `json:"mood_accuracy"`     // 预测情绪 -> 平均共鸣
	Trend            string             `json:"trend"`             // improving | stable | declining
	StrongestMood    string             `json:"strongest_mood"`
	WeakestMood      string             `json:"weakest_mood"`
	OptimalDurations map[string]float64 `json:"optimal_durations"` // 情绪 -> 高共鸣会话平均时长
	Insights         []string           `json:"insights"`
	SampleCount      int                `json:"sample_count"`
}

// Analyze 聚合一组共鸣记录
// 空输入返回零值分析而不是错误; 趋势取前后两半窗口的均值差。
func Analyze(records []models.SessionResonance) *Analysis {
	analysis := &Analysis{
		MoodAccuracy:     make(map[string]float64),
		Trend:            TrendStable,
		OptimalDurations: make(map[string]float64),
		Insights:         []string{},
		SampleCount:      len(records),
	}
	if len(records) == 0 {
		analysis.Insights = append(analysis.Insights, "暂无共鸣记录")
		return analysis
	}

	var total float64
	moodSums := make(map[string]float64)
	moodCounts := make(map[string]int)
	durSums := make(map[string]float64)
	durCounts := make(map[string]int)

	for i := range records {
		r := &records[i]
		total += r.ResonanceScore

		if r.PredictedMood != "" {
			moodSums[r.PredictedMood] += r.ResonanceScore
			moodCounts[r.PredictedMood]++
			// 高共鸣会话的时长更值得参考
			if r.ResonanceScore >= 0.6 && r.Duration > 0 {
				durSums[r.PredictedMood] += r.Duration
				durCounts[r.PredictedMood]++
			}
		}
	}

	analysis.OverallResonance = total / float64(len(records))

	for moodID, sum := range moodSums {
		analysis.MoodAccuracy[moodID] = sum / float64(moodCounts[moodID])
	}
	for moodID, sum := range durSums {
		analysis.OptimalDurations[moodID] = sum / float64(durCounts[moodID])
	}

	analysis.StrongestMood, analysis.WeakestMood = extremeMoods(analysis.MoodAccuracy)
	analysis.Trend = classifyTrend(records)
	analysis.Insights = buildInsights(analysis)
	return analysis
}

// classifyTrend 前半窗口与后半窗口的均值比较
func classifyTrend(records []models.SessionResonance) string {
	if len(records) < 4 {
		return TrendStable
	}

	mid := len(records) / 2
	var first, second float64
	for i := 0; i < mid; i++ {
		first += records[i].ResonanceScore
	}
	for i := mid; i < len(records); i++ {
		second += records[i].ResonanceScore
	}
	first /= float64(mid)
	second /= float64(len(records) - mid)

	const threshold = 0.05
	switch {
	case second-first > threshold:
		return TrendImproving
	case first-second > threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// extremeMoods 准确率最高与最低的情绪, 同分按字典序保证确定性
func extremeMoods(accuracy map[string]float64) (strongest, weakest string) {
	moods := make([]string, 0, len(accuracy))
	for m := range accuracy {
		moods = append(moods, m)
	}
	sort.Strings(moods)

	best, worst := -1.0, 2.0
	for _, m := range moods {
		if accuracy[m] > best {
			best, strongest = accuracy[m], m
		}
		if accuracy[m] < worst {
			worst, weakest = accuracy[m], m
		}
	}
	return strongest, weakest
}

// buildInsights 生成描述性洞察
func buildInsights(a *Analysis) []string {
	insights := make([]string, 0, 4)

	switch {
	case a.OverallResonance >= 0.7:
		insights = append(insights, "情绪预测整体准确度较高")
	case a.OverallResonance <= 0.4:
		insights = append(insights, "情绪预测整体准确度偏低, 模型需要更多会话数据")
	}

	if a.StrongestMood != "" && a.StrongestMood != a.WeakestMood {
		insights = append(insights, "预测最准的情绪: "+a.StrongestMood)
		insights = append(insights, "预测最弱的情绪: "+a.WeakestMood)
	}

	switch a.Trend {
	case TrendImproving:
		insights = append(insights, "预测准确度呈上升趋势")
	case TrendDeclining:
		insights = append(insights, "预测准确度呈下降趋势")
	}

	if len(insights) == 0 {
		insights = append(insights, "预测表现平稳")
	}
	return insights
}
