package mood

import (
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Forecast 基于当前分析结果预测下一次会话的情绪
// horizon为预测时效(小时); 预期时长取窗口内已关闭会话的平均时长,
// 无数据时回退到1小时。Confidence使用与共鸣追踪一致的0-1刻度。
func (e *Engine) Forecast(userID uint, analysis *Analysis, sessions []models.GameSession, horizon int, now time.Time) *models.MoodForecast {
	if analysis == nil {
		analysis = e.Analyze(sessions, now)
	}

	expected := 1.0
	window := e.selectWindow(sessions, now)
	var total float64
	var count int
	for i := range window {
		if window[i].Closed() {
			total += window[i].DurationHours()
			count++
		}
	}
	if count > 0 {
		expected = total / float64(count)
	}

	// 预测置信度随时效折减: 预测越远, 把握越低
	confidence := analysis.Confidence
	if horizon > 24 {
		confidence *= 24.0 / float64(horizon)
	}

	return &models.MoodForecast{
		ForecastID:       uuid.NewString(),
		UserID:           userID,
		PredictedMood:    analysis.Mood,
		Confidence:       vector.Clamp01(confidence),
		ExpectedDuration: expected,
		Horizon:          horizon,
	}
}
