package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameSessionRepo_CreateAndFind(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	session := CreateTestSession(1, 1, "horror", time.Now().Add(-2*time.Hour))
	err := repo.Create(ctx, session)
	require.NoError(t, err)
	assert.NotZero(t, session.ID)

	found, err := repo.FindBySessionID(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, found.SessionID)
	assert.Equal(t, uint(1), found.UserID)
	assert.Equal(t, "Dread Manor", found.Game.Name)
}

func TestGameSessionRepo_CloseSession(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	start := time.Now().Add(-90 * time.Minute)
	session := CreateTestSession(1, 1, "horror", start)
	require.NoError(t, repo.Create(ctx, session))

	// 关闭前是用户的未关闭会话
	open, err := repo.FindOpenByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, session.SessionID, open.SessionID)

	end := start.Add(time.Hour)
	require.NoError(t, repo.CloseSession(ctx, session.SessionID, end))

	closed, err := repo.FindBySessionID(ctx, session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, 3600, closed.Duration)

	// 关闭后不再出现在未关闭查询里
	open, err = repo.FindOpenByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestGameSessionRepo_FindHistoryAscending(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i := 3; i >= 1; i-- {
		s := CreateTestSession(1, 1, "horror", now.Add(-time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, s))
	}

	history, err := repo.FindHistoryByUserID(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.True(t, !history[i].StartTime.Before(history[i-1].StartTime),
			"history should be ordered by start_time ascending")
	}
}

func TestGameSessionRepo_FindHistoryKeepsMostRecent(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 30; i++ {
		s := CreateTestSession(1, 1, "horror", now.Add(-time.Duration(30-i)*time.Hour))
		require.NoError(t, repo.Create(ctx, s))
	}

	// limit裁掉老会话, 保留最新的10条并保持升序
	history, err := repo.FindHistoryByUserID(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 10)
	for i := 1; i < len(history); i++ {
		assert.True(t, !history[i].StartTime.Before(history[i-1].StartTime),
			"history should be ordered by start_time ascending")
	}
	latest := history[len(history)-1].StartTime
	assert.WithinDuration(t, now.Add(-time.Hour), latest, time.Minute,
		"most recent session must survive the limit")
	oldest := history[0].StartTime
	assert.WithinDuration(t, now.Add(-10*time.Hour), oldest, time.Minute)
}

func TestGameSessionRepo_Pagination(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 15; i++ {
		s := CreateTestSession(1, 1, "horror", now.Add(-time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, s))
	}

	p := NewPagination(1, 10)
	page1, err := repo.FindByUserID(ctx, 1, p)
	require.NoError(t, err)
	assert.Len(t, page1, 10)
	assert.Equal(t, int64(15), p.Total)

	p2 := NewPagination(2, 10)
	page2, err := repo.FindByUserID(ctx, 1, p2)
	require.NoError(t, err)
	assert.Len(t, page2, 5)
}

func TestGameSessionRepo_Statistics(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	now := time.Now()
	done := true
	for i := 0; i < 3; i++ {
		s := CreateTestSession(1, 1, "horror", now.Add(-time.Duration(i+1)*time.Hour))
		s.Duration = 1800
		if i == 0 {
			s.Completed = &done
		}
		require.NoError(t, repo.Create(ctx, s))
	}

	stats, err := repo.GetStatistics(ctx, 1, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSessions)
	assert.Equal(t, int64(5400), stats.TotalSeconds)
	assert.Equal(t, int64(1), stats.CompletedCount)
	assert.Equal(t, int64(1), stats.DistinctGames)
}
