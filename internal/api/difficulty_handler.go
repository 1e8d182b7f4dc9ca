package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/service"
)

// DifficultyHandler 难度评估处理器
type DifficultyHandler struct {
	difficultyService service.DifficultyService
}

// NewDifficultyHandler 创建难度评估处理器
func NewDifficultyHandler(difficultyService service.DifficultyService) *DifficultyHandler {
	return &DifficultyHandler{difficultyService: difficultyService}
}

// Assess 评估难度匹配
// @Summary 评估难度匹配
// @Description 评估当前用户与指定游戏的难度匹配程度
// @Tags Difficulty
// @Security Bearer
// @Produce json
// @Param game_id query int true "游戏ID"
// @Success 200 {object} difficulty.Metrics
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/difficulty/assess [get]
func (h *DifficultyHandler) Assess(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	gameID, ok := parseGameIDQuery(c)
	if !ok {
		return
	}

	metrics, err := h.difficultyService.Assess(c.Request.Context(), userID, gameID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ASSESS_FAILED"
		if err == service.ErrGameNotFound {
			status = http.StatusNotFound
			code = "GAME_NOT_FOUND"
		}
		c.JSON(status, ErrorResponse{
			Code:    code,
			Message: "难度评估失败",
		})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetProfile 获取难度档案
// @Summary 获取难度档案
// @Description 获取当前用户的技能评级与难度偏好档案
// @Tags Difficulty
// @Security Bearer
// @Produce json
// @Success 200 {object} models.DifficultyProfile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/difficulty/profile [get]
func (h *DifficultyHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	profile, err := h.difficultyService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "PROFILE_NOT_FOUND",
			Message: "难度档案不存在",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetInsights 获取难度洞察
// @Summary 获取难度洞察
// @Description 获取当前用户的技能趋势与挫折/心流统计
// @Tags Difficulty
// @Security Bearer
// @Produce json
// @Success 200 {object} difficulty.Insights
// @Router /api/v1/difficulty/insights [get]
func (h *DifficultyHandler) GetInsights(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	insights, err := h.difficultyService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INSIGHTS_FAILED",
			Message: "难度洞察生成失败",
		})
		return
	}

	c.JSON(http.StatusOK, insights)
}

// GetAdaptiveSettings 获取自适应难度建议
// @Summary 获取自适应难度建议
// @Description 为指定游戏生成自适应难度设置建议
// @Tags Difficulty
// @Security Bearer
// @Produce json
// @Param game_id query int true "游戏ID"
// @Param target query number false "目标难度(0-1)"
// @Success 200 {object} difficulty.AdaptiveRecommendation
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/difficulty/adaptive [get]
func (h *DifficultyHandler) GetAdaptiveSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	gameID, ok := parseGameIDQuery(c)
	if !ok {
		return
	}

	var target *float64
	if v := c.Query("target"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "INVALID_TARGET",
				Message: "目标难度必须在0-1之间",
			})
			return
		}
		target = &parsed
	}

	settings, err := h.difficultyService.GetAdaptiveSettings(c.Request.Context(), userID, gameID, target)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ADAPTIVE_FAILED"
		if err == service.ErrGameNotFound {
			status = http.StatusNotFound
			code = "GAME_NOT_FOUND"
		}
		c.JSON(status, ErrorResponse{
			Code:    code,
			Message: "自适应难度建议生成失败",
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// parseGameIDQuery 解析game_id查询参数
func parseGameIDQuery(c *gin.Context) (uint, bool) {
	v := c.Query("game_id")
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_GAME_ID",
			Message: "游戏ID无效",
		})
		return 0, false
	}
	return uint(id), true
}
