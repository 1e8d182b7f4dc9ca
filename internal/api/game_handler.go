package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/game-library/internal/service"
)

// GameHandler 游戏目录处理器
type GameHandler struct {
	gameService service.GameService
}

// NewGameHandler 创建游戏目录处理器
func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// CreateGame 新增游戏
// @Summary 新增游戏
// @Description 向游戏库添加一个游戏条目
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body service.GameRequest true "游戏信息"
// @Success 200 {object} models.Game
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req service.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	game, err := h.gameService.CreateGame(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "CREATE_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, game)
}

// UpdateGame 更新游戏
// @Summary 更新游戏元数据
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "游戏ID"
// @Param request body service.GameRequest true "游戏信息"
// @Success 200 {object} models.Game
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/games/{id} [put]
func (h *GameHandler) UpdateGame(c *gin.Context) {
	gameID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	game, err := h.gameService.UpdateGame(c.Request.Context(), gameID, &req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrGameNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{
			Code:    "UPDATE_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, game)
}

// DeleteGame 删除游戏
// @Summary 删除游戏
// @Tags Game
// @Security Bearer
// @Param id path int true "游戏ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/games/{id} [delete]
func (h *GameHandler) DeleteGame(c *gin.Context) {
	gameID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.gameService.DeleteGame(c.Request.Context(), gameID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "DELETE_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "删除成功"})
}

// GetGame 获取单个游戏
// @Summary 获取游戏详情
// @Tags Game
// @Security Bearer
// @Param id path int true "游戏ID"
// @Success 200 {object} models.Game
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/games/{id} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID, ok := parseIDParam(c)
	if !ok {
		return
	}

	game, err := h.gameService.GetGame(c.Request.Context(), gameID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "GAME_NOT_FOUND",
			Message: "游戏不存在",
		})
		return
	}

	c.JSON(http.StatusOK, game)
}

// ListGames 分页列出游戏
// @Summary 游戏列表
// @Description 支持genre/keyword过滤的分页列表
// @Tags Game
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Param genre query string false "按类型过滤"
// @Param keyword query string false "按关键词搜索"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if keyword := c.Query("keyword"); keyword != "" {
		games, err := h.gameService.SearchGames(c.Request.Context(), keyword, page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    "SEARCH_FAILED",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, SuccessResponse{Data: games})
		return
	}

	if genre := c.Query("genre"); genre != "" {
		games, err := h.gameService.GamesByGenre(c.Request.Context(), genre, page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    "LIST_FAILED",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, SuccessResponse{Data: games})
		return
	}

	games, total, err := h.gameService.ListGames(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "LIST_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games": games,
		"total": total,
		"page":  page,
	})
}

// parseIDParam 解析路径中的数字ID
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_ID",
			Message: "ID格式错误",
		})
		return 0, false
	}
	return uint(id), true
}
