package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/service"
)

// RecommendationHandler 推荐处理器
type RecommendationHandler struct {
	recommendationService service.RecommendationService
}

// NewRecommendationHandler 创建推荐处理器
func NewRecommendationHandler(recommendationService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// GetRecommendations 获取推荐
// @Summary 获取游戏推荐
// @Description 按当前用户画像与请求上下文生成个性化推荐
// @Tags Recommendation
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body recommend.Context true "推荐上下文"
// @Success 200 {array} recommend.Recommendation
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/recommendations [post]
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var reqCtx recommend.Context
	if err := c.ShouldBindJSON(&reqCtx); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	recs, err := h.recommendationService.GetRecommendations(c.Request.Context(), userID, &reqCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "RECOMMEND_FAILED",
			Message: "推荐生成失败",
		})
		return
	}

	c.JSON(http.StatusOK, recs)
}

// RebuildIndex 重建推荐索引
// @Summary 重建向量索引
// @Description 从游戏目录全量重建推荐向量索引
// @Tags Recommendation
// @Security Bearer
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/recommendations/index/rebuild [post]
func (h *RecommendationHandler) RebuildIndex(c *gin.Context) {
	size, err := h.recommendationService.RebuildIndex(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "REBUILD_FAILED",
			Message: "索引重建失败",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "索引重建成功",
		Data:    gin.H{"index_size": size},
	})
}
