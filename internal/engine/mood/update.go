package mood

import (
	"time"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// UpdatePreferences 按最新分析结果微调用户情绪档案
// 指数式推移Preference, 只调整不重置; 返回更新后的档案切片,
// 分析出的情绪不在档案中时追加一条新档案, 由调用方负责持久化。
func (e *Engine) UpdatePreferences(moods []models.UserMood, analysis *Analysis, session *models.GameSession, now time.Time) []models.UserMood {
	if analysis == nil || analysis.Mood == "" {
		return moods
	}

	// 推移速率随置信度放大, 低置信度的分析几乎不改动档案
	rate := 0.2 * analysis.Confidence

	found := false
	for i := range moods {
		m := &moods[i]
		if m.MoodID == analysis.Mood {
			found = true
			// 朝满偏好指数推移
			m.Preference = vector.Clamp(m.Preference+(100-m.Preference)*rate, 0, 100)
			m.Frequency++
			t := now
			m.LastExperienced = &t
			m.Triggers = mergeLimited(m.Triggers, analysis.Triggers, 10)
			if session != nil && session.Genre != "" {
				m.AssociatedGenres = mergeLimited(m.AssociatedGenres, []string{session.Genre}, 10)
			}
		} else {
			// 其他情绪轻微衰减
			m.Preference = vector.Clamp(m.Preference*(1-rate*0.1), 0, 100)
		}
	}

	if !found {
		t := now
		entry := models.UserMood{
			MoodID:          analysis.Mood,
			Preference:      vector.Clamp(50+50*rate, 0, 100),
			Frequency:       1,
			LastExperienced: &t,
			Triggers:        mergeLimited(nil, analysis.Triggers, 10),
		}
		if session != nil && session.Genre != "" {
			entry.AssociatedGenres = models.StringSlice{session.Genre}
		}
		moods = append(moods, entry)
	}

	return moods
}

// mergeLimited 合并去重并限制长度, 保留原有顺序
func mergeLimited(existing models.StringSlice, incoming []string, limit int) models.StringSlice {
	seen := make(map[string]bool, len(existing))
	out := make(models.StringSlice, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
