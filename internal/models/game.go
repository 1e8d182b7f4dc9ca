package models

import (
	"time"
)

// Game 游戏库目录条目表
// 目录元数据由平台同步层写入，引擎只读。
// Genres/Tags为必填，其余元数据可选（缺省值在特征构建层统一填充）。
type Game struct {
	BaseModel
	Name            string      `gorm:"size:200;not null" json:"name"`
	Platform        string      `gorm:"size:50" json:"platform"` // steam, manual, ...
	ExternalID      string      `gorm:"index;size:100" json:"external_id"`
	Genres          StringSlice `gorm:"type:json;not null" json:"genres"`
	Tags            StringSlice `gorm:"type:json" json:"tags"`
	Description     string      `gorm:"size:2000" json:"description"`
	CoverImage      string      `gorm:"size:255" json:"cover_image"`
	IsMultiplayer   *bool       `json:"is_multiplayer,omitempty"`
	Difficulty      *float64    `json:"difficulty,omitempty"`       // 0-1，显式元数据
	AveragePlaytime *float64    `json:"average_playtime,omitempty"` // 小时
	PopularityScore *float64    `json:"popularity_score,omitempty"` // 0-1
	CriticScore     *float64    `json:"critic_score,omitempty"`     // 0-100
	UserScore       *float64    `json:"user_score,omitempty"`       // 0-100
	ReleaseYear     int         `json:"release_year"`
	CatalogVersion  int         `gorm:"default:1;index" json:"catalog_version"`
}

// GameSession 游玩会话表
// 由游玩跟踪层产生，EndTime写入后即不可变，引擎只读。
type GameSession struct {
	BaseModel
	SessionID     string      `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	UserID        uint        `gorm:"not null;index" json:"user_id"`
	GameID        uint        `gorm:"not null;index" json:"game_id"`
	Genre         string      `gorm:"size:50" json:"genre"`
	StartTime     time.Time   `gorm:"index" json:"start_time"`
	EndTime       *time.Time  `json:"end_time,omitempty"`
	Duration      int         `json:"duration"` // 秒
	Mood          string      `gorm:"size:30" json:"mood"`
	Intensity     float64     `json:"intensity"` // 0-1
	Tags          StringSlice `gorm:"type:json" json:"tags"`
	Difficulty    *float64    `json:"difficulty,omitempty"` // 0-1
	IsMultiplayer *bool       `json:"is_multiplayer,omitempty"`
	Rating        *float64    `json:"rating,omitempty"` // 0-5
	Completed     *bool       `json:"completed,omitempty"`

	// 关联
	Game Game `gorm:"foreignKey:GameID" json:"game,omitempty"`
}

// Closed 会话是否已关闭
func (s *GameSession) Closed() bool {
	return s.EndTime != nil
}

// DurationHours 会话时长（小时）
func (s *GameSession) DurationHours() float64 {
	return float64(s.Duration) / 3600.0
}
