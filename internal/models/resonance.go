package models

import (
	"time"
)

// SessionResonance 会话共鸣记录表
// 每个"已完成且有预测"的会话一条，只追加，创建后不再修改。
type SessionResonance struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	SessionID             string      `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	UserID                uint        `gorm:"not null;index" json:"user_id"`
	PredictedMood         string      `gorm:"size:30" json:"predicted_mood"`
	ActualMood            string      `gorm:"size:30" json:"actual_mood"`
	ResonanceScore        float64     `json:"resonance_score"`  // 0-1
	ConfidenceDelta       float64     `json:"confidence_delta"` // 预测置信度与实际的偏差，0-1刻度
	Duration              float64     `json:"duration"`         // 实际时长（小时）
	Engagement            float64     `json:"engagement"`       // 0-1
	Satisfaction          float64     `json:"satisfaction"`     // 0-1
	GameIDs               StringSlice `gorm:"type:json" json:"game_ids"`
	MoodAlignment         float64     `json:"mood_alignment"`
	DurationFit           float64     `json:"duration_fit"`
	EngagementCorrelation float64     `json:"engagement_correlation"`
	Timestamp             time.Time   `gorm:"index" json:"timestamp"`
	CreatedAt             time.Time   `json:"created_at"`
}

// TableName 指定表名
func (SessionResonance) TableName() string {
	return "session_resonances"
}
