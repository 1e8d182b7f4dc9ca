package difficulty

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/game-library/internal/models"
)

func perfSession(userID, gameID uint, genre string, difficulty float64, start time.Time) *models.GameSession {
	end := start.Add(time.Hour)
	return &models.GameSession{
		SessionID:  fmt.Sprintf("d-%d-%d-%d", userID, gameID, start.Unix()),
		UserID:     userID,
		GameID:     gameID,
		Genre:      genre,
		StartTime:  start,
		EndTime:    &end,
		Duration:   3600,
		Difficulty: &difficulty,
	}
}

func TestAssessDifficultyLazyProfile(t *testing.T) {
	assessor := NewAssessor(nil, nil)

	// 首次评估懒创建默认档案, 永不返回nil
	metrics := assessor.AssessDifficulty(42, nil, nil)
	if metrics == nil {
		t.Fatal("AssessDifficulty() returned nil")
	}
	if metrics.CurrentSkill < 0 || metrics.CurrentSkill > 1 {
		t.Errorf("CurrentSkill = %v, out of [0,1]", metrics.CurrentSkill)
	}
	if metrics.AdjustmentStrategy != "maintain" {
		t.Errorf("strategy = %s, want maintain for fresh profile", metrics.AdjustmentStrategy)
	}
	if metrics.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 with no learning points", metrics.Confidence)
	}

	profile := assessor.Profile(42)
	if profile == nil {
		t.Fatal("Profile() returned nil after lazy creation")
	}
	if profile.SkillLevel != 0.5 {
		t.Errorf("lazy profile SkillLevel = %v, want 0.5", profile.SkillLevel)
	}
}

func TestAssessDifficultyUsesSuppliedSessions(t *testing.T) {
	// 学习曲线为空时, 传入的会话是唯一的近期表现信号
	assessor := NewAssessor(nil, nil)
	game := &models.Game{Genres: models.StringSlice{"shooter"}}

	done := true
	rating := 5.0
	start := time.Now().Add(-9 * 24 * time.Hour)
	sessions := make([]models.GameSession, 0, 10)
	for i := 0; i < 10; i++ {
		s := perfSession(31, 7, "shooter", 0.6, start.Add(time.Duration(i)*24*time.Hour))
		s.Completed = &done
		s.Rating = &rating
		sessions = append(sessions, *s)
	}

	metrics := assessor.AssessDifficulty(31, game, sessions)
	if metrics.Confidence == 0 {
		t.Error("Confidence = 0 despite supplied sessions")
	}
	if metrics.AdjustmentStrategy != "increase" {
		t.Errorf("strategy = %s, want increase for sustained high performance", metrics.AdjustmentStrategy)
	}

	baseline := assessor.AssessDifficulty(32, game, nil)
	if metrics.CurrentSkill <= baseline.CurrentSkill {
		t.Errorf("CurrentSkill = %v, want above no-history baseline %v",
			metrics.CurrentSkill, baseline.CurrentSkill)
	}
}

func TestAssessDifficultyConsistencyFactor(t *testing.T) {
	// 相同均值下, 表现稳定的玩家技能评估高于大起大落的玩家
	assessor := NewAssessor(nil, nil)
	game := &models.Game{Genres: models.StringSlice{"puzzle"}}
	start := time.Now().Add(-9 * 24 * time.Hour)

	steadyRating := 3.0
	steady := make([]models.GameSession, 0, 10)
	for i := 0; i < 10; i++ {
		s := perfSession(41, 2, "puzzle", 0.5, start.Add(time.Duration(i)*24*time.Hour))
		s.Rating = &steadyRating
		steady = append(steady, *s)
	}

	lowRating, highRating := 1.0, 5.0
	swingy := make([]models.GameSession, 0, 10)
	for i := 0; i < 10; i++ {
		s := perfSession(42, 2, "puzzle", 0.5, start.Add(time.Duration(i)*24*time.Hour))
		if i%2 == 0 {
			s.Rating = &lowRating
		} else {
			s.Rating = &highRating
		}
		swingy = append(swingy, *s)
	}

	steadyMetrics := assessor.AssessDifficulty(41, game, steady)
	swingyMetrics := assessor.AssessDifficulty(42, game, swingy)

	if steadyMetrics.Factors["consistency"] <= swingyMetrics.Factors["consistency"] {
		t.Errorf("consistency: steady %v <= swingy %v",
			steadyMetrics.Factors["consistency"], swingyMetrics.Factors["consistency"])
	}
	if steadyMetrics.CurrentSkill <= swingyMetrics.CurrentSkill {
		t.Errorf("CurrentSkill: steady %v <= swingy %v",
			steadyMetrics.CurrentSkill, swingyMetrics.CurrentSkill)
	}
}

func TestAssessConcurrentWithUpdates(t *testing.T) {
	// 评估与档案更新并发执行时结果始终有界
	assessor := NewAssessor(nil, nil)
	game := &models.Game{Genres: models.StringSlice{"action"}}
	now := time.Now()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			session := perfSession(51, 1, "action", 0.5, now.Add(time.Duration(i)*time.Minute))
			assessor.UpdateProfile(51, session, &PerformanceMetrics{Performance: 0.7})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			metrics := assessor.AssessDifficulty(51, game, nil)
			if metrics.CurrentSkill < 0 || metrics.CurrentSkill > 1 {
				t.Errorf("CurrentSkill = %v, out of [0,1]", metrics.CurrentSkill)
			}
			if metrics.RecommendedDifficulty < 0 || metrics.RecommendedDifficulty > 1 {
				t.Errorf("RecommendedDifficulty = %v, out of [0,1]", metrics.RecommendedDifficulty)
			}
		}
	}()
	wg.Wait()
}

func TestUpdateProfileImprovingPerformance(t *testing.T) {
	// 20次稳步提升的表现: 技能单调上升并最终触发increase策略
	assessor := NewAssessor(nil, nil)
	start := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)

	prevSkill := -1.0
	for i := 0; i < 20; i++ {
		session := perfSession(1, 5, "shooter", 0.5, start.Add(time.Duration(i)*24*time.Hour))
		perf := &PerformanceMetrics{
			Performance: 0.5 + float64(i)*0.025,
			Attempts:    1,
			Success:     true,
		}
		profile := assessor.UpdateProfile(1, session, perf)

		if profile.SkillLevel < 0 || profile.SkillLevel > 1 {
			t.Fatalf("SkillLevel = %v after update %d, out of [0,1]", profile.SkillLevel, i)
		}
		if profile.SkillLevel < prevSkill-1e-9 {
			t.Errorf("SkillLevel dropped at update %d: %v -> %v", i, prevSkill, profile.SkillLevel)
		}
		prevSkill = profile.SkillLevel
	}

	game := &models.Game{Genres: models.StringSlice{"shooter"}}
	metrics := assessor.AssessDifficulty(1, game, nil)
	if metrics.AdjustmentStrategy != "increase" {
		t.Errorf("strategy = %s after sustained improvement, want increase", metrics.AdjustmentStrategy)
	}
	if metrics.RecommendedDifficulty <= 0.55 {
		t.Errorf("RecommendedDifficulty = %v, want above flow optimal", metrics.RecommendedDifficulty)
	}
}

func TestUpdateProfilePoorPerformance(t *testing.T) {
	assessor := NewAssessor(nil, nil)
	start := time.Now().Add(-10 * 24 * time.Hour)

	for i := 0; i < 8; i++ {
		session := perfSession(2, 3, "roguelike", 0.8, start.Add(time.Duration(i)*24*time.Hour))
		assessor.UpdateProfile(2, session, &PerformanceMetrics{Performance: 0.1})
	}

	metrics := assessor.AssessDifficulty(2, nil, nil)
	if metrics.AdjustmentStrategy != "decrease" {
		t.Errorf("strategy = %s after poor performance, want decrease", metrics.AdjustmentStrategy)
	}
}

func TestUpdateProfileGenreDifficulties(t *testing.T) {
	assessor := NewAssessor(nil, nil)
	session := perfSession(3, 1, "horror", 0.6, time.Now())

	profile := assessor.UpdateProfile(3, session, &PerformanceMetrics{Performance: 0.9})
	if _, ok := profile.GenreDifficulties["horror"]; !ok {
		t.Error("GenreDifficulties missing horror entry after update")
	}
	if len(profile.LearningCurve) != 1 {
		t.Errorf("LearningCurve length = %d, want 1", len(profile.LearningCurve))
	}
}

func TestUpdateProfileWithoutMetrics(t *testing.T) {
	// 无显式表现指标时从会话信号推导, 不报错
	assessor := NewAssessor(nil, nil)
	done := true
	rating := 4.0
	session := perfSession(4, 2, "puzzle", 0.5, time.Now())
	session.Completed = &done
	session.Rating = &rating

	profile := assessor.UpdateProfile(4, session, nil)
	if len(profile.LearningCurve) != 1 {
		t.Fatalf("LearningCurve length = %d, want 1", len(profile.LearningCurve))
	}
	if p := profile.LearningCurve[0].Performance; p <= 0.5 {
		t.Errorf("derived performance = %v, want > 0.5 for completed high-rated session", p)
	}
}

func TestSkillBoundsUnderExtremes(t *testing.T) {
	// 极端输入序列后技能仍在[0,1]
	assessor := NewAssessor(nil, nil)
	now := time.Now()
	for i := 0; i < 100; i++ {
		p := 0.0
		if i%2 == 0 {
			p = 1.0
		}
		session := perfSession(5, 1, "action", 1.0, now.Add(time.Duration(i)*time.Minute))
		profile := assessor.UpdateProfile(5, session, &PerformanceMetrics{Performance: p})
		if profile.SkillLevel < 0 || profile.SkillLevel > 1 {
			t.Fatalf("SkillLevel = %v at update %d, out of [0,1]", profile.SkillLevel, i)
		}
	}
}

func TestLRUEviction(t *testing.T) {
	flushed := make([]uint, 0)
	assessor := NewAssessor(&Config{
		DefaultSkill:        0.5,
		DefaultAdaptability: 0.3,
		RecentWindow:        10,
		MaxProfiles:         3,
	}, func(p *models.DifficultyProfile) {
		flushed = append(flushed, p.UserID)
	})

	for uid := uint(1); uid <= 5; uid++ {
		assessor.AssessDifficulty(uid, nil, nil)
	}

	if assessor.ProfileCount() != 3 {
		t.Errorf("ProfileCount() = %d, want 3 (LRU cap)", assessor.ProfileCount())
	}
	// 最早创建的两个档案被驱逐并回调落盘
	if len(flushed) != 2 || flushed[0] != 1 || flushed[1] != 2 {
		t.Errorf("flushed = %v, want [1 2]", flushed)
	}
	if assessor.Profile(1) != nil {
		t.Error("evicted profile 1 still resident")
	}
	if assessor.Profile(5) == nil {
		t.Error("recent profile 5 missing")
	}
}

func TestLoadProfile(t *testing.T) {
	assessor := NewAssessor(nil, nil)
	assessor.LoadProfile(&models.DifficultyProfile{
		UserID:     9,
		SkillLevel: 0.8,
	})

	profile := assessor.Profile(9)
	if profile == nil || profile.SkillLevel != 0.8 {
		t.Errorf("Profile(9) = %+v, want loaded skill 0.8", profile)
	}
}

func TestGenerateAdaptiveRecommendations(t *testing.T) {
	assessor := NewAssessor(nil, nil)
	game := &models.Game{Genres: models.StringSlice{"shooter"}}
	game.ID = 7

	t.Run("目标高于技能时开启辅助", func(t *testing.T) {
		target := 1.0
		rec := assessor.GenerateAdaptiveRecommendations(11, game, &target)
		if rec.SkillGap <= 0 {
			t.Fatalf("SkillGap = %v, want positive", rec.SkillGap)
		}
		if rec.Settings.AimAssist == 0 {
			t.Error("AimAssist should be enabled for large positive gap")
		}
		if !rec.Settings.AutoAim {
			t.Error("AutoAim should be on when gap > 0.3")
		}
		if rec.Settings.ResourceAbundance <= 1 {
			t.Errorf("ResourceAbundance = %v, want > 1", rec.Settings.ResourceAbundance)
		}
	})

	t.Run("目标低于技能时收紧辅助", func(t *testing.T) {
		target := 0.1
		rec := assessor.GenerateAdaptiveRecommendations(12, game, &target)
		if rec.SkillGap >= 0 {
			t.Fatalf("SkillGap = %v, want negative", rec.SkillGap)
		}
		if rec.Settings.AimAssist != 0 {
			t.Errorf("AimAssist = %v, want 0", rec.Settings.AimAssist)
		}
		if rec.Settings.EnemyHealth <= 1 {
			t.Errorf("EnemyHealth = %v, want > 1 for negative gap", rec.Settings.EnemyHealth)
		}
	})

	t.Run("缺省目标用评估建议难度", func(t *testing.T) {
		rec := assessor.GenerateAdaptiveRecommendations(13, game, nil)
		if rec.TargetDifficulty < 0 || rec.TargetDifficulty > 1 {
			t.Errorf("TargetDifficulty = %v, out of [0,1]", rec.TargetDifficulty)
		}
		if rec.Rationale == "" {
			t.Error("Rationale empty")
		}
	})
}

func TestGetInsights(t *testing.T) {
	assessor := NewAssessor(nil, nil)

	// 无档案时返回空报告
	empty := assessor.GetInsights(99)
	if empty == nil {
		t.Fatal("GetInsights() returned nil")
	}
	if empty.SampleCount != 0 {
		t.Errorf("empty insights SampleCount = %d, want 0", empty.SampleCount)
	}

	// 写入一段上升曲线
	start := time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		session := perfSession(21, 1, "strategy", 0.5, start.Add(time.Duration(i)*24*time.Hour))
		assessor.UpdateProfile(21, session, &PerformanceMetrics{Performance: 0.3 + float64(i)*0.05})
	}

	insights := assessor.GetInsights(21)
	if insights.SampleCount != 10 {
		t.Errorf("SampleCount = %d, want 10", insights.SampleCount)
	}
	if len(insights.SkillTrend) != 10 {
		t.Errorf("SkillTrend length = %d, want 10", len(insights.SkillTrend))
	}
	if insights.ImprovementRate <= 0 {
		t.Errorf("ImprovementRate = %v, want positive for rising curve", insights.ImprovementRate)
	}
	if insights.ConsistencyScore < 0 || insights.ConsistencyScore > 1 {
		t.Errorf("ConsistencyScore = %v, out of [0,1]", insights.ConsistencyScore)
	}
}
