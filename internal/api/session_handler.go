package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/service"
	"github.com/wfunc/game-library/internal/websocket"
)

// SessionHandler 游玩会话处理器
type SessionHandler struct {
	sessionService service.SessionService
	pusher         *websocket.Pusher
}

// NewSessionHandler 创建游玩会话处理器
func NewSessionHandler(sessionService service.SessionService, pusher *websocket.Pusher) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		pusher:         pusher,
	}
}

// StartSession 开始游玩会话
// @Summary 开始游玩会话
// @Description 为当前用户开启一个新的游玩会话
// @Tags Session
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body service.StartSessionRequest true "会话信息"
// @Success 200 {object} models.GameSession
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), userID, &req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrGameNotFound {
			status = http.StatusNotFound
		} else if err == service.ErrSessionAlreadyOpen {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Code:    "START_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// CloseSession 结束游玩会话
// @Summary 结束游玩会话
// @Description 结束会话并触发情绪分析/画像重算/预测流水线
// @Tags Session
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body service.CloseSessionRequest true "结算信息"
// @Success 200 {object} service.SessionCloseResult
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/close [post]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req service.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	result, err := h.sessionService.CloseSession(c.Request.Context(), userID, &req)
	if err != nil {
		status := http.StatusBadRequest
		switch err {
		case service.ErrSessionNotFound:
			status = http.StatusNotFound
		case service.ErrNotSessionOwner:
			status = http.StatusForbidden
		case service.ErrSessionClosed:
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Code:    "CLOSE_FAILED",
			Message: err.Error(),
		})
		return
	}

	// 画像更新实时推送给在线客户端
	if h.pusher != nil && result.Analysis != nil {
		h.pusher.PushMoodUpdate(userID, result.Analysis)
		if result.Identity != nil {
			h.pusher.PushIdentityUpdate(userID, result.Identity)
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetSession 获取会话详情
// @Summary 获取会话详情
// @Tags Session
// @Security Bearer
// @Param id path string true "会话ID"
// @Success 200 {object} models.GameSession
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "会话不存在",
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetHistory 获取历史会话
// @Summary 获取历史会话
// @Description 按开始时间升序返回当前用户的历史会话
// @Tags Session
// @Security Bearer
// @Param limit query int false "返回条数上限"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/sessions/history [get]
func (h *SessionHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	sessions, err := h.sessionService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "HISTORY_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: sessions})
}
