package mood

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/wfunc/game-library/internal/models"
)

func makeSession(id string, genre string, mood string, intensity float64, start time.Time, durationHours float64) models.GameSession {
	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	return models.GameSession{
		SessionID: id,
		UserID:    1,
		GameID:    1,
		Genre:     genre,
		Mood:      mood,
		Intensity: intensity,
		StartTime: start,
		EndTime:   &end,
		Duration:  int(durationHours * 3600),
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()

	analysis := engine.Analyze(nil, now)
	if analysis.Confidence != 0 {
		t.Errorf("empty window Confidence = %v, want 0", analysis.Confidence)
	}
	if analysis.Mood == "" {
		t.Error("empty window should still return a default mood")
	}
}

func TestAnalyzeHorrorSessions(t *testing.T) {
	// 连续5场高强度恐怖游戏会话应得到gritty/intense且置信度>0.5
	engine := NewEngine(nil, nil)
	now := time.Now()

	sessions := make([]models.GameSession, 0, 5)
	for i := 0; i < 5; i++ {
		start := now.Add(-time.Duration(5-i) * 24 * time.Hour)
		sessions = append(sessions, makeSession(
			fmt.Sprintf("s%d", i), "horror", "", 0.9, start, 1.5))
	}

	analysis := engine.Analyze(sessions, now)
	if analysis.Mood != MoodGritty && analysis.Mood != MoodIntense {
		t.Errorf("Analyze() mood = %s, want gritty or intense", analysis.Mood)
	}
	if analysis.Confidence <= 0.5 {
		t.Errorf("Analyze() confidence = %v, want > 0.5", analysis.Confidence)
	}
	if analysis.Intensity < 0.8 {
		t.Errorf("Analyze() intensity = %v, want >= 0.8", analysis.Intensity)
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sessions := []models.GameSession{
		makeSession("a", "puzzle", "relaxing", 0.2, now.Add(-72*time.Hour), 0.5),
		makeSession("b", "shooter", "", 0.8, now.Add(-48*time.Hour), 2),
		makeSession("c", "casual", "relaxing", 0.1, now.Add(-2*time.Hour), 1),
	}

	first := engine.Analyze(sessions, now)
	second := engine.Analyze(sessions, now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze() not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeRecencyDominates(t *testing.T) {
	// 大量久远的紧张会话 vs 少量最近的放松会话, 最近的应占优
	engine := NewEngine(nil, nil)
	now := time.Now()

	sessions := make([]models.GameSession, 0, 8)
	for i := 0; i < 5; i++ {
		start := now.Add(-time.Duration(13-i) * 24 * time.Hour)
		sessions = append(sessions, makeSession(
			fmt.Sprintf("old%d", i), "shooter", MoodIntense, 0.9, start, 1))
	}
	for i := 0; i < 3; i++ {
		start := now.Add(-time.Duration(6-2*i) * time.Hour)
		sessions = append(sessions, makeSession(
			fmt.Sprintf("new%d", i), "casual", MoodRelaxing, 0.1, start, 1.5))
	}

	analysis := engine.Analyze(sessions, now)
	if analysis.Mood != MoodRelaxing {
		t.Errorf("Analyze() mood = %s, want relaxing (recent sessions dominate)", analysis.Mood)
	}
}

func TestAnalyzeWindowCutoff(t *testing.T) {
	// 窗口天数外的会话不参与分析
	engine := NewEngine(&Config{
		WindowSessions: 20,
		WindowDays:     14,
		HalfLife:       72 * time.Hour,
		MaxTriggers:    5,
	}, nil)
	now := time.Now()

	sessions := []models.GameSession{
		makeSession("ancient", "horror", MoodGritty, 1, now.Add(-30*24*time.Hour), 3),
		makeSession("recent", "casual", MoodRelaxing, 0.1, now.Add(-1*time.Hour), 1),
	}

	analysis := engine.Analyze(sessions, now)
	if analysis.Mood != MoodRelaxing {
		t.Errorf("Analyze() mood = %s, want relaxing (ancient session outside window)", analysis.Mood)
	}
}

func TestAnalyzeTriggers(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()

	s := makeSession("t1", "horror", "", 0.8, now.Add(-time.Hour), 1)
	s.Tags = models.StringSlice{"jumpscare", "dark"}

	analysis := engine.Analyze([]models.GameSession{s}, now)
	if len(analysis.Triggers) != 2 {
		t.Fatalf("Triggers = %v, want 2 entries", analysis.Triggers)
	}
}

func TestGenreMoodTableLookupMiss(t *testing.T) {
	table := NewGenreMoodTable()

	// 未知类型回退到中性项而不是失败
	weights := table.Lookup("unknown-genre-xyz")
	if len(weights) == 0 {
		t.Fatal("Lookup() on unknown genre returned empty map")
	}

	// 已知类型正常返回
	horror := table.Lookup("Horror")
	if horror[MoodGritty] == 0 {
		t.Errorf("Lookup(horror) missing gritty weight: %v", horror)
	}
}

func TestGenreMoodTableVersion(t *testing.T) {
	table := NewGenreMoodTable()
	v1 := table.Version()
	table.SetGenre("horror", map[string]float64{MoodIntense: 1})
	if table.Version() != v1+1 {
		t.Errorf("Version() = %d after update, want %d", table.Version(), v1+1)
	}
}

func TestMoodVector(t *testing.T) {
	table := NewGenreMoodTable()

	vec := table.MoodVector([]string{"horror"})
	if len(vec) != len(Vocabulary) {
		t.Fatalf("MoodVector() dimension = %d, want %d", len(vec), len(Vocabulary))
	}

	var sum float64
	for _, x := range vec {
		sum += x
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("MoodVector() sum = %v, want 1", sum)
	}

	// 确定性: 同输入同输出
	again := table.MoodVector([]string{"horror"})
	if !reflect.DeepEqual(vec, again) {
		t.Error("MoodVector() not deterministic")
	}

	empty := table.MoodVector(nil)
	for _, x := range empty {
		if x != 0 {
			t.Errorf("MoodVector(nil) = %v, want zero vector", empty)
			break
		}
	}
}

func TestUpdatePreferences(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()
	session := makeSession("u1", "horror", "", 0.9, now.Add(-time.Hour), 1)

	analysis := &Analysis{
		Mood:       MoodGritty,
		Confidence: 0.8,
		Triggers:   []string{"dark"},
	}

	moods := []models.UserMood{
		{MoodID: MoodGritty, Preference: 50, Frequency: 2},
		{MoodID: MoodRelaxing, Preference: 60, Frequency: 5},
	}

	updated := engine.UpdatePreferences(moods, analysis, &session, now)
	if len(updated) != 2 {
		t.Fatalf("UpdatePreferences() len = %d, want 2", len(updated))
	}
	if updated[0].Preference <= 50 {
		t.Errorf("winning mood preference = %v, should increase from 50", updated[0].Preference)
	}
	if updated[0].Frequency != 3 {
		t.Errorf("winning mood frequency = %d, want 3", updated[0].Frequency)
	}
	if updated[1].Preference >= 60 {
		t.Errorf("losing mood preference = %v, should decay from 60", updated[1].Preference)
	}
	if updated[0].LastExperienced == nil {
		t.Error("winning mood LastExperienced not set")
	}
}

func TestUpdatePreferencesNewMood(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()

	analysis := &Analysis{Mood: MoodCreative, Confidence: 0.5}
	updated := engine.UpdatePreferences(nil, analysis, nil, now)
	if len(updated) != 1 {
		t.Fatalf("UpdatePreferences() len = %d, want 1 new entry", len(updated))
	}
	if updated[0].MoodID != MoodCreative {
		t.Errorf("new entry MoodID = %s, want creative", updated[0].MoodID)
	}
}

func TestUpdatePreferencesBounds(t *testing.T) {
	// 反复更新后Preference始终在[0,100]
	engine := NewEngine(nil, nil)
	now := time.Now()
	analysis := &Analysis{Mood: MoodIntense, Confidence: 1}

	moods := []models.UserMood{
		{MoodID: MoodIntense, Preference: 99},
		{MoodID: MoodRelaxing, Preference: 1},
	}
	for i := 0; i < 50; i++ {
		moods = engine.UpdatePreferences(moods, analysis, nil, now)
	}
	for _, m := range moods {
		if m.Preference < 0 || m.Preference > 100 {
			t.Errorf("mood %s preference = %v, out of [0,100]", m.MoodID, m.Preference)
		}
	}
}

func TestForecast(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()

	sessions := []models.GameSession{
		makeSession("f1", "casual", MoodRelaxing, 0.2, now.Add(-4*time.Hour), 2),
		makeSession("f2", "casual", MoodRelaxing, 0.2, now.Add(-2*time.Hour), 1),
	}

	forecast := engine.Forecast(7, nil, sessions, 12, now)
	if forecast.UserID != 7 {
		t.Errorf("Forecast() UserID = %d, want 7", forecast.UserID)
	}
	if forecast.PredictedMood != MoodRelaxing {
		t.Errorf("Forecast() mood = %s, want relaxing", forecast.PredictedMood)
	}
	if forecast.Confidence < 0 || forecast.Confidence > 1 {
		t.Errorf("Forecast() confidence = %v, out of [0,1]", forecast.Confidence)
	}
	if forecast.ExpectedDuration != 1.5 {
		t.Errorf("Forecast() expected duration = %v, want 1.5", forecast.ExpectedDuration)
	}
	if forecast.ForecastID == "" {
		t.Error("Forecast() ForecastID empty")
	}
}

func TestForecastHorizonDecay(t *testing.T) {
	engine := NewEngine(nil, nil)
	now := time.Now()
	sessions := []models.GameSession{
		makeSession("h1", "horror", "", 0.9, now.Add(-time.Hour), 1),
	}

	near := engine.Forecast(1, nil, sessions, 12, now)
	far := engine.Forecast(1, nil, sessions, 72, now)
	if far.Confidence >= near.Confidence {
		t.Errorf("far horizon confidence %v should be lower than near %v", far.Confidence, near.Confidence)
	}
}
