package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wfunc/game-library/internal/repository"
	"github.com/wfunc/game-library/internal/service"
)

// newTestRouter 基于内存数据库构建完整路由
func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repository.SetupTestDB()
	return NewRouter(db, service.DefaultConfig(), zap.NewNop())
}

// doJSON 发送JSON请求
func doJSON(router *Router, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

// TestHealthCheck 测试健康检查
func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestOpenAPIDocument(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, "GET", "/openapi", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, w.Body.String(), "openapi: 3.0")
	assert.Contains(t, w.Body.String(), "/api/v1/recommendations")
}

// TestAuthFlow 测试注册登录流程
func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	// 注册
	w := doJSON(router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         "player1",
		"email":            "player1@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var auth service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)

	// 重复注册
	w = doJSON(router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         "player1",
		"email":            "other@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 登录
	w = doJSON(router, "POST", "/api/v1/auth/login", "", map[string]string{
		"account":  "player1",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	// 带令牌访问个人资料
	w = doJSON(router, "GET", "/api/v1/auth/profile", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 无令牌访问被拒绝
	w = doJSON(router, "GET", "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestSessionPipelineFlow 测试从建库到推荐的完整流程
func TestSessionPipelineFlow(t *testing.T) {
	router := newTestRouter(t)

	// 注册并登录
	w := doJSON(router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         "player2",
		"email":            "player2@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var auth service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	token := auth.AccessToken

	// 建立两款游戏
	for i, genres := range [][]string{{"horror", "survival"}, {"puzzle"}} {
		w = doJSON(router, "POST", "/api/v1/games", token, map[string]interface{}{
			"name":   fmt.Sprintf("Game %d", i+1),
			"genres": genres,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// 开始会话
	w = doJSON(router, "POST", "/api/v1/sessions", token, map[string]interface{}{
		"game_id":   1,
		"mood":      "gritty",
		"intensity": 0.8,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	sessionID, _ := session["session_id"].(string)
	require.NotEmpty(t, sessionID)

	// 同一用户重复开启被拒绝
	w = doJSON(router, "POST", "/api/v1/sessions", token, map[string]interface{}{
		"game_id": 2,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 结束会话，触发画像流水线
	w = doJSON(router, "POST", "/api/v1/sessions/close", token, map[string]interface{}{
		"session_id": sessionID,
		"rating":     4.5,
		"completed":  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Contains(t, result, "session")
	assert.Contains(t, result, "analysis")
	assert.Contains(t, result, "identity")

	// 画像可查询
	w = doJSON(router, "GET", "/api/v1/identity", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 心情分析
	w = doJSON(router, "GET", "/api/v1/identity/mood", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var analysis map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.NotEmpty(t, analysis["mood"])

	// 心情预测
	w = doJSON(router, "GET", "/api/v1/identity/forecast", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 推荐
	w = doJSON(router, "POST", "/api/v1/recommendations", token, map[string]interface{}{
		"count": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	for _, rec := range recs {
		score := rec["score"].(float64)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}

	// 难度评估
	w = doJSON(router, "GET", "/api/v1/difficulty/assess?game_id=1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 历史会话
	w = doJSON(router, "GET", "/api/v1/sessions/history", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestGameValidation 测试游戏目录参数校验
func TestGameValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         "player3",
		"email":            "player3@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var auth service.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	// 缺少genres
	w = doJSON(router, "POST", "/api/v1/games", auth.AccessToken, map[string]interface{}{
		"name": "No Genres",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不存在的游戏
	w = doJSON(router, "GET", "/api/v1/games/999", auth.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 非法ID
	w = doJSON(router, "GET", "/api/v1/games/abc", auth.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestNoRoute 测试404
func TestNoRoute(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, "GET", "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp["code"])
}
