package feature

import (
	"reflect"
	"testing"

	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/models"
)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestBuildDeterminism(t *testing.T) {
	builder := NewBuilder(nil)
	game := &models.Game{
		Genres: models.StringSlice{"horror", "survival"},
		Tags:   models.StringSlice{"co-op", "dark"},
	}
	game.ID = 3

	first := builder.Build(game)
	second := builder.Build(game)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build() not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestBuildGenreVector(t *testing.T) {
	builder := NewBuilder(nil)
	game := &models.Game{Genres: models.StringSlice{"Horror", " rpg ", "not-a-genre"}}

	vec := builder.Build(game)
	if len(vec.GenreVector) != len(mood.GenreVocabulary) {
		t.Fatalf("GenreVector dimension = %d, want %d", len(vec.GenreVector), len(mood.GenreVocabulary))
	}

	hot := 0
	for _, x := range vec.GenreVector {
		if x == 1 {
			hot++
		}
	}
	// 未知类型被忽略, 大小写与空白被归一化
	if hot != 2 {
		t.Errorf("GenreVector hot count = %d, want 2", hot)
	}
}

func TestBuildDifficulty(t *testing.T) {
	builder := NewBuilder(nil)

	tests := []struct {
		name string
		game *models.Game
		want float64
	}{
		{
			name: "显式难度优先",
			game: &models.Game{Genres: models.StringSlice{"casual"}, Difficulty: floatPtr(0.9)},
			want: 0.9,
		},
		{
			name: "类型先验回退",
			game: &models.Game{Genres: models.StringSlice{"roguelike"}},
			want: 0.8,
		},
		{
			name: "未知类型取中值",
			game: &models.Game{Genres: models.StringSlice{"mystery-genre"}},
			want: 0.5,
		},
		{
			name: "显式难度越界被裁剪",
			game: &models.Game{Genres: models.StringSlice{"casual"}, Difficulty: floatPtr(1.7)},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builder.Build(tt.game).DifficultyScore
			if got != tt.want {
				t.Errorf("DifficultyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSocialScore(t *testing.T) {
	builder := NewBuilder(nil)

	solo := builder.Build(&models.Game{Genres: models.StringSlice{"puzzle"}})
	if solo.SocialScore != 0 {
		t.Errorf("solo SocialScore = %v, want 0", solo.SocialScore)
	}

	multi := builder.Build(&models.Game{
		Genres:        models.StringSlice{"shooter"},
		Tags:          models.StringSlice{"PvP", "online"},
		IsMultiplayer: boolPtr(true),
	})
	if multi.SocialScore <= solo.SocialScore {
		t.Errorf("multiplayer SocialScore = %v, want > 0", multi.SocialScore)
	}
	if multi.SocialScore > 1 {
		t.Errorf("SocialScore = %v, out of [0,1]", multi.SocialScore)
	}
}

func TestBuildPlaytime(t *testing.T) {
	builder := NewBuilder(nil)

	explicit := builder.Build(&models.Game{
		Genres:          models.StringSlice{"casual"},
		AveragePlaytime: floatPtr(42),
	})
	if explicit.PlaytimeEstimate != 42 {
		t.Errorf("PlaytimeEstimate = %v, want 42 (explicit)", explicit.PlaytimeEstimate)
	}

	prior := builder.Build(&models.Game{Genres: models.StringSlice{"rpg"}})
	if prior.PlaytimeEstimate != 60 {
		t.Errorf("PlaytimeEstimate = %v, want 60 (genre prior)", prior.PlaytimeEstimate)
	}
}

func TestBuildOptionalScores(t *testing.T) {
	builder := NewBuilder(nil)

	bare := builder.Build(&models.Game{Genres: models.StringSlice{"action"}})
	if bare.CriticScore != 0.5 || bare.UserScore != 0.5 || bare.PopularityScore != 0.5 {
		t.Errorf("missing optional scores should default to 0.5: %+v", bare)
	}

	rich := builder.Build(&models.Game{
		Genres:          models.StringSlice{"action"},
		CriticScore:     floatPtr(85),
		UserScore:       floatPtr(70),
		PopularityScore: floatPtr(0.9),
	})
	if rich.CriticScore != 0.85 {
		t.Errorf("CriticScore = %v, want 0.85", rich.CriticScore)
	}
	if rich.UserScore != 0.7 {
		t.Errorf("UserScore = %v, want 0.7", rich.UserScore)
	}
	if rich.PopularityScore != 0.9 {
		t.Errorf("PopularityScore = %v, want 0.9", rich.PopularityScore)
	}
}

func TestCombinedDimension(t *testing.T) {
	builder := NewBuilder(nil)
	vec := builder.Build(&models.Game{Genres: models.StringSlice{"horror"}})

	want := len(mood.GenreVocabulary) + len(mood.Vocabulary) + 2
	if got := len(vec.Combined()); got != want {
		t.Errorf("Combined() dimension = %d, want %d", got, want)
	}
}

func TestCache(t *testing.T) {
	table := mood.NewGenreMoodTable()
	cache := NewCache(NewBuilder(table))

	game := &models.Game{Genres: models.StringSlice{"horror"}, CatalogVersion: 1}
	game.ID = 9

	first := cache.Get(game)
	second := cache.Get(game)
	if first != second {
		t.Error("Cache.Get() should return the cached pointer for identical input")
	}
	if cache.Len() != 1 {
		t.Errorf("Cache.Len() = %d, want 1", cache.Len())
	}

	// 目录版本变化后缓存键失效
	game.CatalogVersion = 2
	third := cache.Get(game)
	if third == first {
		t.Error("Cache.Get() should rebuild after catalog version change")
	}

	// 映射表版本变化后缓存键失效
	table.SetGenre("horror", map[string]float64{mood.MoodIntense: 1})
	fourth := cache.Get(game)
	if fourth == third {
		t.Error("Cache.Get() should rebuild after table version change")
	}

	cache.InvalidateAll()
	if cache.Len() != 0 {
		t.Errorf("Cache.Len() after InvalidateAll = %d, want 0", cache.Len())
	}
}
