package models

import (
	"time"
)

// DifficultyProfile 用户难度档案表
// 每个用户一条，首次评估时懒创建（SkillLevel=0.5、中位心流区间）。
type DifficultyProfile struct {
	BaseModel
	UserID               uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	SkillLevel           float64  `json:"skill_level"`          // 0-1
	AdaptabilityRate     float64  `json:"adaptability_rate"`    // EMA平滑系数
	PreferredDifficulty  float64  `json:"preferred_difficulty"` // 0-1
	FrustrationThreshold float64  `json:"frustration_threshold"`
	FlowZoneMin          float64  `json:"flow_zone_min"`
	FlowZoneMax          float64  `json:"flow_zone_max"`
	FlowZoneOptimal      float64  `json:"flow_zone_optimal"`
	GenreDifficulties    FloatMap `gorm:"type:json" json:"genre_difficulties"`

	// 关联（学习曲线只追加，不修改）
	LearningCurve []LearningPoint `gorm:"foreignKey:ProfileID" json:"learning_curve,omitempty"`
}

// LearningPoint 学习曲线记录点表
type LearningPoint struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uint      `gorm:"not null;index" json:"profile_id"`
	GameID       uint      `gorm:"not null;index" json:"game_id"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	Difficulty   float64   `json:"difficulty"`     // 0-1
	Performance  float64   `json:"performance"`    // 0-1
	TimeToMaster float64   `json:"time_to_master"` // 小时，0表示未统计
	Attempts     int       `json:"attempts"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (LearningPoint) TableName() string {
	return "learning_points"
}
