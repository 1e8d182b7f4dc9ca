package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/service"
)

// IdentityHandler 玩家画像处理器
type IdentityHandler struct {
	identityService service.IdentityService
}

// NewIdentityHandler 创建玩家画像处理器
func NewIdentityHandler(identityService service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

// GetIdentity 获取玩家画像
// @Summary 获取玩家画像
// @Description 获取当前用户的类型偏好、游玩风格与版本信息
// @Tags Identity
// @Security Bearer
// @Produce json
// @Success 200 {object} models.PlayerIdentity
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/identity [get]
func (h *IdentityHandler) GetIdentity(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	identity, err := h.identityService.GetIdentity(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "IDENTITY_NOT_FOUND",
			Message: "玩家画像不存在",
		})
		return
	}

	c.JSON(http.StatusOK, identity)
}

// AnalyzeMood 分析当前心情
// @Summary 分析当前心情
// @Description 基于近期会话分析当前用户的心情状态
// @Tags Identity
// @Security Bearer
// @Produce json
// @Success 200 {object} mood.Analysis
// @Router /api/v1/identity/mood [get]
func (h *IdentityHandler) AnalyzeMood(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	analysis, err := h.identityService.AnalyzeMood(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "MOOD_ANALYSIS_FAILED",
			Message: "心情分析失败",
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetForecast 获取心情预测
// @Summary 获取心情预测
// @Description 获取当前用户的心情预测，不存在时即时生成
// @Tags Identity
// @Security Bearer
// @Produce json
// @Param horizon query int false "预测时长（小时），默认24"
// @Success 200 {object} models.MoodForecast
// @Router /api/v1/identity/forecast [get]
func (h *IdentityHandler) GetForecast(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	horizon := 0
	if v := c.Query("horizon"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "INVALID_HORIZON",
				Message: "预测时长无效",
			})
			return
		}
		horizon = parsed
	}

	forecast, err := h.identityService.GetForecast(c.Request.Context(), userID, horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "FORECAST_FAILED",
			Message: "心情预测失败",
		})
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// GetResonanceAnalysis 获取共鸣分析
// @Summary 获取共鸣分析
// @Description 获取当前用户的预测命中率与共鸣趋势
// @Tags Identity
// @Security Bearer
// @Produce json
// @Success 200 {object} resonance.Analysis
// @Router /api/v1/identity/resonance [get]
func (h *IdentityHandler) GetResonanceAnalysis(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	analysis, err := h.identityService.GetResonanceAnalysis(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "RESONANCE_FAILED",
			Message: "共鸣分析失败",
		})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
