package recommend

import (
	"strings"

	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// BuildProfile 从完整会话历史重建用户行为画像
// 空历史返回全缺省画像(中位难度/独游偏好), 不报错。
func BuildProfile(userID uint, sessions []models.GameSession) *Profile {
	p := &Profile{
		UserID:               userID,
		PreferredGenres:      make(map[string]float64),
		MoodPatterns:         make(map[string]float64),
		DifficultyPreference: 0.5,
		SocialPreference:     0.3,
	}
	if len(sessions) == 0 {
		return p
	}

	var totalHours float64
	var diffSum, diffN float64
	var multiCount, closedCount, completedCount int
	genreHours := make(map[string]float64)
	moodHours := make(map[string]float64)

	for i := range sessions {
		s := &sessions[i]
		hours := s.DurationHours()
		totalHours += hours

		if g := strings.ToLower(strings.TrimSpace(s.Genre)); g != "" {
			genreHours[g] += hours
		}
		if s.Mood != "" {
			moodHours[s.Mood] += hours
		}
		if s.Difficulty != nil {
			diffSum += *s.Difficulty
			diffN++
		}
		if s.IsMultiplayer != nil && *s.IsMultiplayer {
			multiCount++
		}
		if s.Closed() {
			closedCount++
			if s.Completed != nil && *s.Completed {
				completedCount++
			}
		}
		if ts := s.StartTime.Unix(); ts > p.LastActive {
			p.LastActive = ts
		}
	}

	p.TotalPlaytime = totalHours
	p.AverageSessionLength = totalHours / float64(len(sessions))
	p.PreferredGenres = normalizeWeights(genreHours)
	p.MoodPatterns = normalizeWeights(moodHours)
	if diffN > 0 {
		p.DifficultyPreference = vector.Clamp01(diffSum / diffN)
	}
	p.SocialPreference = vector.Clamp01(float64(multiCount) / float64(len(sessions)))
	if closedCount > 0 {
		p.CompletionRate = float64(completedCount) / float64(closedCount)
	}

	return p
}

// PreferenceVector 把画像投影成与游戏特征Combined同维的偏好向量
// 维度排列: 类型词表 + 情绪词表 + 难度 + 社交。
func (p *Profile) PreferenceVector(table *mood.GenreMoodTable) []float64 {
	out := make([]float64, 0, len(mood.GenreVocabulary)+len(mood.Vocabulary)+2)

	for _, g := range mood.GenreVocabulary {
		out = append(out, p.PreferredGenres[g])
	}

	// 情绪偏好: 直接观测到的情绪分布, 叠加类型映射推导的分布
	derived := table.MoodVector(topKeys(p.PreferredGenres))
	for i, m := range mood.Vocabulary {
		out = append(out, p.MoodPatterns[m]*0.6+derived[i]*0.4)
	}

	out = append(out, p.DifficultyPreference, p.SocialPreference)
	return out
}

// normalizeWeights 权重归一化为和1
func normalizeWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return out
	}
	for k, w := range weights {
		out[k] = w / total
	}
	return out
}

// topKeys 返回map的全部键, 权重为0的忽略
func topKeys(weights map[string]float64) []string {
	out := make([]string, 0, len(weights))
	for k, w := range weights {
		if w > 0 {
			out = append(out, k)
		}
	}
	return out
}
