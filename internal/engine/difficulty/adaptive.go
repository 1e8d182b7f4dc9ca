package difficulty

import (
	"fmt"

	"github.com/wfunc/game-library/internal/engine/vector"
	"github.com/wfunc/game-library/internal/models"
)

// Settings 具体的自适应难度参数
// 各数值项为相对基准的倍率, 1为游戏默认。
type Settings struct {
	AimAssist         float64 `json:"aim_assist"`         // 0-1, 0为关闭
	EnemyHealth       float64 `json:"enemy_health"`       // 倍率
	ResourceAbundance float64 `json:"resource_abundance"` // 倍率
	TimeLimits        float64 `json:"time_limits"`        // 倍率, 越大越宽松
	HintFrequency     float64 `json:"hint_frequency"`     // 0-1

	// 无障碍选项
	AutoAim        bool `json:"auto_aim"`
	SkipPuzzles    bool `json:"skip_puzzles"`
	ExtendedTimers bool `json:"extended_timers"`
	VisualAssist   bool `json:"visual_assist"`
	OneButtonMode  bool `json:"one_button_mode"`
}

// AdaptiveRecommendation 自适应难度建议
type AdaptiveRecommendation struct {
	UserID           uint     `json:"user_id"`
	GameID           uint     `json:"game_id"`
	CurrentSkill     float64  `json:"current_skill"`
	TargetDifficulty float64  `json:"target_difficulty"`
	SkillGap         float64  `json:"skill_gap"` // 目标难度-当前技能, 正值偏难
	Settings         Settings `json:"settings"`
	Rationale        string   `json:"rationale"`
}

// GenerateAdaptiveRecommendations 生成可直接应用的难度参数
// targetDifficulty为nil时用评估出的建议难度; 参数由技能差距线性推导。
func (a *Assessor) GenerateAdaptiveRecommendations(userID uint, game *models.Game, targetDifficulty *float64) *AdaptiveRecommendation {
	metrics := a.AssessDifficulty(userID, game, nil)

	target := metrics.RecommendedDifficulty
	if targetDifficulty != nil {
		target = vector.Clamp01(*targetDifficulty)
	}

	gap := target - metrics.CurrentSkill

	var gameID uint
	if game != nil {
		gameID = game.ID
	}

	return &AdaptiveRecommendation{
		UserID:           userID,
		GameID:           gameID,
		CurrentSkill:     metrics.CurrentSkill,
		TargetDifficulty: target,
		SkillGap:         gap,
		Settings:         deriveSettings(gap),
		Rationale: fmt.Sprintf("当前技能%.2f, 目标难度%.2f, 差距%.2f: %s",
			metrics.CurrentSkill, target, gap, metrics.AdjustmentReason),
	}
}

// deriveSettings 技能差距映射到具体参数
// gap>0表示目标偏难于当前水平, 需要辅助; gap<0则收紧辅助。
func deriveSettings(gap float64) Settings {
	assist := vector.Clamp01(gap * 2) // 差距0.5即满辅助

	s := Settings{
		AimAssist:         assist,
		EnemyHealth:       vector.Clamp(1-gap*0.5, 0.5, 1.5),
		ResourceAbundance: vector.Clamp(1+gap*0.8, 0.5, 2),
		TimeLimits:        vector.Clamp(1+gap*0.6, 0.5, 2),
		HintFrequency:     assist * 0.8,
	}

	// 差距过大时开启无障碍选项
	if gap > 0.3 {
		s.AutoAim = true
		s.ExtendedTimers = true
	}
	if gap > 0.5 {
		s.SkipPuzzles = true
		s.VisualAssist = true
	}
	return s
}
