package models

import (
	"time"
)

// PlayerIdentity 玩家画像表
// 每次新会话到达时增量重算（不整体替换），Version单调递增用于前向兼容。
type PlayerIdentity struct {
	BaseModel
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Playstyle       JSONMap   `gorm:"type:json" json:"playstyle"`
	GenreAffinities FloatMap  `gorm:"type:json" json:"genre_affinities"`
	ComputedMood    string    `gorm:"size:30" json:"computed_mood"`
	MoodConfidence  float64   `json:"mood_confidence"` // 0-1
	LastUpdated     time.Time `json:"last_updated"`
	Version         int       `gorm:"default:1" json:"version"`

	// 关联
	Moods []UserMood `gorm:"foreignKey:IdentityID" json:"moods,omitempty"`
}

// UserMood 用户情绪档案表
// 每个用户每种情绪一条，由情绪引擎在会话结束后指数式微调，
// 除用户显式操作外不会重置。
type UserMood struct {
	BaseModel
	IdentityID       uint        `gorm:"not null;index" json:"identity_id"`
	MoodID           string      `gorm:"size:30;not null;index" json:"mood_id"`
	Preference       float64     `json:"preference"` // 0-100
	Frequency        int         `json:"frequency"`
	LastExperienced  *time.Time  `json:"last_experienced,omitempty"`
	Triggers         StringSlice `gorm:"type:json" json:"triggers"`
	AssociatedGenres StringSlice `gorm:"type:json" json:"associated_genres"`
}

// MoodForecast 情绪预测记录表
// 由情绪引擎的预测步骤产生，共鸣追踪器事后消费。
// Confidence统一使用0-1刻度（与SessionResonance共享同一契约）。
type MoodForecast struct {
	BaseModel
	ForecastID       string  `gorm:"uniqueIndex;size:64;not null" json:"forecast_id"`
	UserID           uint    `gorm:"not null;index" json:"user_id"`
	PredictedMood    string  `gorm:"size:30;not null" json:"predicted_mood"`
	Confidence       float64 `json:"confidence"`        // 0-1
	ExpectedDuration float64 `json:"expected_duration"` // 小时
	Horizon          int     `json:"horizon"`           // 小时
	Consumed         bool    `gorm:"default:false;index" json:"consumed"`
}

// TableName 指定表名
func (MoodForecast) TableName() string {
	return "mood_forecasts"
}
