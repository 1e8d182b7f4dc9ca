package resonance

import (
	"time"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// SessionData 会话的实际观测数据
type SessionData struct {
	Duration     float64  `json:"duration"`     // 实际时长(小时)
	Engagement   float64  `json:"engagement"`   // 0-1
	Satisfaction float64  `json:"satisfaction"` // 0-1
	GameIDs      []string `json:"game_ids"`
}

// 三个子因子的混合权重
const (
	moodAlignmentWeight         = 0.5
	durationFitWeight           = 0.25
	engagementCorrelationWeight = 0.25
)

// Calculate 计算单次会话的共鸣记录
// 比较预测与实际: 情绪对齐 + 时长贴合 + 置信度-投入相关。
// 纯函数, 返回的记录由调用方持久化, 创建后不再修改。
func Calculate(sessionID string, userID uint, forecast *models.MoodForecast, actualMood string, data *SessionData) *models.SessionResonance {
	if data == nil {
		data = &SessionData{}
	}

	predictedMood := ""
	confidence := 0.0
	expectedDuration := 0.0
	if forecast != nil {
		predictedMood = forecast.PredictedMood
		confidence = vector.Clamp01(forecast.Confidence)
		expectedDuration = forecast.ExpectedDuration
	}

	alignment := moodAlignment(predictedMood, actualMood)
	durFit := durationFit(expectedDuration, data.Duration)
	engagement := engagementCorrelation(confidence, data.Engagement, data.Satisfaction)

	score := vector.Clamp01(alignment*moodAlignmentWeight +
		durFit*durationFitWeight +
		engagement*engagementCorrelationWeight)

	return &models.SessionResonance{
		SessionID:             sessionID,
		UserID:                userID,
		PredictedMood:         predictedMood,
		ActualMood:            actualMood,
		ResonanceScore:        score,
		ConfidenceDelta:       vector.Clamp01(absDiff(confidence, score)),
		Duration:              data.Duration,
		Engagement:            vector.Clamp01(data.Engagement),
		Satisfaction:          vector.Clamp01(data.Satisfaction),
		GameIDs:               models.StringSlice(data.GameIDs),
		MoodAlignment:         alignment,
		DurationFit:           durFit,
		EngagementCorrelation: engagement,
		Timestamp:             time.Now(),
	}
}

// moodAlignment 预测与实际情绪的对齐度: 全对1, 同族0.5, 不对0
func moodAlignment(predicted, actual string) float64 {
	if predicted == "" || actual == "" {
		return 0.5 // 缺失一侧时取中性, 不惩罚
	}
	if predicted == actual {
		return 1
	}
	if moodFamily(predicted) == moodFamily(actual) {
		return 0.5
	}
	return 0
}

// 粗粒度情绪族, 部分对齐按同族判断
var moodFamilies = map[string]string{
	"relaxing":    "calm",
	"nostalgic":   "calm",
	"creative":    "calm",
	"intense":     "charged",
	"gritty":      "charged",
	"competitive": "charged",
	"adventurous": "engaged",
	"strategic":   "engaged",
	"social":      "engaged",
}

func moodFamily(moodID string) string {
	if f, ok := moodFamilies[moodID]; ok {
		return f
	}
	return moodID
}

// durationFit 实际时长与预期时长的贴合度
func durationFit(expected, actual float64) float64 {
	if expected <= 0 || actual <= 0 {
		return 0.5
	}
	ratio := actual / expected
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return vector.Clamp01(ratio)
}

// engagementCorrelation 预测置信度与实际投入/满意度的相关性
// 高置信度配高投入(或低配低)为正确预测, 错配折半。
func engagementCorrelation(confidence, engagement, satisfaction float64) float64 {
	observed := vector.Clamp01(engagement*0.6 + satisfaction*0.4)
	return vector.Clamp01(1 - absDiff(confidence, observed))
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
