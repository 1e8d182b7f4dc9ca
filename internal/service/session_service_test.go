package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/models"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionPipelineTestSuite 会话流水线测试套件
// 覆盖 开始会话 -> 结束会话 -> 情绪分析 -> 画像重算 -> 预测 -> 共鸣结算 全链路。
type SessionPipelineTestSuite struct {
	suite.Suite
	db       *gorm.DB
	services *Services
	game     *models.Game
}

// SetupTest 每个测试使用独立的内存库与服务栈
func (suite *SessionPipelineTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.services = NewServices(suite.db, DefaultConfig(), zap.NewNop())

	game, err := suite.services.Game.CreateGame(context.Background(), &GameRequest{
		Name:   "Dread Manor",
		Genres: []string{"horror", "survival"},
		Tags:   []string{"atmospheric", "dark"},
	})
	require.NoError(suite.T(), err)
	suite.game = game
}

// playOne 开始并结束一个1小时的会话
func (suite *SessionPipelineTestSuite) playOne(userID uint, mood string, intensity float64) *SessionCloseResult {
	ctx := context.Background()

	session, err := suite.services.Session.StartSession(ctx, userID, &StartSessionRequest{
		GameID:    suite.game.ID,
		Mood:      mood,
		Intensity: intensity,
	})
	require.NoError(suite.T(), err)

	end := session.StartTime.Add(time.Hour)
	rating := 4.5
	completed := true
	result, err := suite.services.Session.CloseSession(ctx, userID, &CloseSessionRequest{
		SessionID: session.SessionID,
		EndTime:   &end,
		Mood:      mood,
		Rating:    &rating,
		Completed: &completed,
	})
	require.NoError(suite.T(), err)
	return result
}

// TestStartSession 测试开始会话
func (suite *SessionPipelineTestSuite) TestStartSession() {
	ctx := context.Background()

	session, err := suite.services.Session.StartSession(ctx, 1, &StartSessionRequest{
		GameID: suite.game.ID,
	})
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.SessionID)
	assert.Equal(suite.T(), "horror", session.Genre) // 取目录首个类型
	assert.False(suite.T(), session.Closed())

	// 同一用户不允许并行开两个会话
	_, err = suite.services.Session.StartSession(ctx, 1, &StartSessionRequest{
		GameID: suite.game.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrSessionAlreadyOpen)

	// 不存在的游戏
	_, err = suite.services.Session.StartSession(ctx, 2, &StartSessionRequest{
		GameID: 9999,
	})
	assert.ErrorIs(suite.T(), err, ErrGameNotFound)
}

// TestCloseSessionRunsPipeline 测试结束会话触发完整流水线
func (suite *SessionPipelineTestSuite) TestCloseSessionRunsPipeline() {
	ctx := context.Background()
	result := suite.playOne(1, "gritty", 0.9)

	// 会话已关闭
	require.NotNil(suite.T(), result.Session)
	assert.True(suite.T(), result.Session.Closed())
	assert.Equal(suite.T(), 3600, result.Session.Duration)

	// 情绪分析产出
	require.NotNil(suite.T(), result.Analysis)
	assert.Equal(suite.T(), "gritty", result.Analysis.Mood)
	assert.Greater(suite.T(), result.Analysis.Confidence, 0.0)

	// 画像已建立并落盘
	require.NotNil(suite.T(), result.Identity)
	assert.Equal(suite.T(), "gritty", result.Identity.ComputedMood)
	assert.Equal(suite.T(), 1, result.Identity.Version)
	assert.Greater(suite.T(), result.Identity.GenreAffinities["horror"], 0.0)

	stored, err := suite.services.Identity.GetIdentity(ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), result.Identity.Version, stored.Version)
	assert.NotEmpty(suite.T(), stored.Moods)

	// 首次关闭没有可结算的预测，但会产出新预测
	assert.Nil(suite.T(), result.Resonance)
	require.NotNil(suite.T(), result.Forecast)
	assert.False(suite.T(), result.Forecast.Consumed)
	assert.GreaterOrEqual(suite.T(), result.Forecast.Confidence, 0.0)
	assert.LessOrEqual(suite.T(), result.Forecast.Confidence, 1.0)
}

// TestSecondCloseSettlesResonance 测试第二次关闭消费上一条预测
func (suite *SessionPipelineTestSuite) TestSecondCloseSettlesResonance() {
	ctx := context.Background()

	first := suite.playOne(1, "gritty", 0.9)
	require.NotNil(suite.T(), first.Forecast)

	second := suite.playOne(1, "gritty", 0.8)
	require.NotNil(suite.T(), second.Resonance)
	assert.Equal(suite.T(), first.Forecast.PredictedMood, second.Resonance.PredictedMood)
	assert.GreaterOrEqual(suite.T(), second.Resonance.ResonanceScore, 0.0)
	assert.LessOrEqual(suite.T(), second.Resonance.ResonanceScore, 1.0)

	// 共鸣分析能看到记录
	analysis, err := suite.services.Identity.GetResonanceAnalysis(ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, analysis.SampleCount)

	// 画像版本随会话递增
	identity, err := suite.services.Identity.GetIdentity(ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, identity.Version)
}

// TestRecommendationsAfterSessions 测试会话积累后的推荐
func (suite *SessionPipelineTestSuite) TestRecommendationsAfterSessions() {
	ctx := context.Background()

	// 再补充一个候选游戏
	_, err := suite.services.Game.CreateGame(ctx, &GameRequest{
		Name:   "Farm Story",
		Genres: []string{"casual", "simulation"},
	})
	require.NoError(suite.T(), err)

	for i := 0; i < 3; i++ {
		suite.playOne(1, "gritty", 0.9)
	}

	recs, err := suite.services.Recommendation.GetRecommendations(ctx, 1, &recommend.Context{Count: 5})
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), recs)
	for _, r := range recs {
		assert.GreaterOrEqual(suite.T(), r.Score, 0.0)
		assert.LessOrEqual(suite.T(), r.Score, 1.0)
	}
}

// TestDifficultyAfterSessions 测试会话积累后的难度评估
func (suite *SessionPipelineTestSuite) TestDifficultyAfterSessions() {
	ctx := context.Background()

	suite.playOne(1, "gritty", 0.9)

	metrics, err := suite.services.Difficulty.Assess(ctx, 1, suite.game.ID)
	require.NoError(suite.T(), err)
	assert.GreaterOrEqual(suite.T(), metrics.CurrentSkill, 0.0)
	assert.LessOrEqual(suite.T(), metrics.CurrentSkill, 1.0)
	assert.NotEmpty(suite.T(), metrics.AdjustmentStrategy)

	profile, err := suite.services.Difficulty.GetProfile(ctx, 1)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), uint(1), profile.UserID)
}

// TestMoodForecastOnDemand 测试即席获取预测
func (suite *SessionPipelineTestSuite) TestMoodForecastOnDemand() {
	ctx := context.Background()

	// 无历史时也能生成（低置信度）
	forecast, err := suite.services.Identity.GetForecast(ctx, 7, 24)
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), forecast.ForecastID)

	// 再次获取返回同一条未消费预测
	again, err := suite.services.Identity.GetForecast(ctx, 7, 24)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), forecast.ForecastID, again.ForecastID)
}

func TestSessionPipelineSuite(t *testing.T) {
	suite.Run(t, new(SessionPipelineTestSuite))
}
