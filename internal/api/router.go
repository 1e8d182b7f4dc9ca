package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/game-library/internal/middleware"
	"github.com/wfunc/game-library/internal/service"
	ws "github.com/wfunc/game-library/internal/websocket"
)

// Router API路由器
type Router struct {
	engine   *gin.Engine
	db       *gorm.DB
	services *service.Services
	hub      *ws.Hub

	authHandler           *AuthHandler
	gameHandler           *GameHandler
	sessionHandler        *SessionHandler
	identityHandler       *IdentityHandler
	recommendationHandler *RecommendationHandler
	difficultyHandler     *DifficultyHandler
	wsHandler             *WebSocketHandler

	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, config *service.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建服务
	services := service.NewServices(db, config, log)

	// WebSocket中心与推送器
	hub := ws.NewHub(log)
	go hub.Run()
	pusher := ws.NewPusher(hub, log)

	// 创建处理器
	authHandler := NewAuthHandler(services.Auth, services.User)
	gameHandler := NewGameHandler(services.Game)
	sessionHandler := NewSessionHandler(services.Session, pusher)
	identityHandler := NewIdentityHandler(services.Identity)
	recommendationHandler := NewRecommendationHandler(services.Recommendation)
	difficultyHandler := NewDifficultyHandler(services.Difficulty)
	wsHandler := NewWebSocketHandler(hub, log)

	// 创建中间件
	authMiddleware := middleware.NewAuthMiddleware(services.Auth)

	router := &Router{
		engine:                engine,
		db:                    db,
		services:              services,
		hub:                   hub,
		authHandler:           authHandler,
		gameHandler:           gameHandler,
		sessionHandler:        sessionHandler,
		identityHandler:       identityHandler,
		recommendationHandler: recommendationHandler,
		difficultyHandler:     difficultyHandler,
		wsHandler:             wsHandler,
		authMiddleware:        authMiddleware,
		log:                   log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			// 需要认证的路由
			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
				authRequired.GET("/profile", r.authHandler.GetProfile)
				authRequired.PUT("/profile", r.authHandler.UpdateProfile)
				authRequired.PUT("/password", r.authHandler.UpdatePassword)
			}
		}

		// 游戏目录路由（需要认证）
		games := v1.Group("/games")
		games.Use(r.authMiddleware.RequireAuth())
		{
			games.GET("", r.gameHandler.ListGames)
			games.POST("", r.gameHandler.CreateGame)
			games.GET("/:id", r.gameHandler.GetGame)
			games.PUT("/:id", r.gameHandler.UpdateGame)
			games.DELETE("/:id", r.gameHandler.DeleteGame)
		}

		// 游玩会话路由（需要认证）
		sessions := v1.Group("/sessions")
		sessions.Use(r.authMiddleware.RequireAuth())
		{
			sessions.POST("", r.sessionHandler.StartSession)
			sessions.POST("/close", r.sessionHandler.CloseSession)
			sessions.GET("/history", r.sessionHandler.GetHistory)
			sessions.GET("/:id", r.sessionHandler.GetSession)
		}

		// 玩家画像路由（需要认证）
		identity := v1.Group("/identity")
		identity.Use(r.authMiddleware.RequireAuth())
		{
			identity.GET("", r.identityHandler.GetIdentity)
			identity.GET("/mood", r.identityHandler.AnalyzeMood)
			identity.GET("/forecast", r.identityHandler.GetForecast)
			identity.GET("/resonance", r.identityHandler.GetResonanceAnalysis)
		}

		// 推荐路由（需要认证）
		recommendations := v1.Group("/recommendations")
		recommendations.Use(r.authMiddleware.RequireAuth())
		{
			recommendations.POST("", r.recommendationHandler.GetRecommendations)
			recommendations.POST("/index/rebuild", r.recommendationHandler.RebuildIndex)
		}

		// 难度评估路由（需要认证）
		difficultyGroup := v1.Group("/difficulty")
		difficultyGroup.Use(r.authMiddleware.RequireAuth())
		{
			difficultyGroup.GET("/assess", r.difficultyHandler.Assess)
			difficultyGroup.GET("/profile", r.difficultyHandler.GetProfile)
			difficultyGroup.GET("/insights", r.difficultyHandler.GetInsights)
			difficultyGroup.GET("/adaptive", r.difficultyHandler.GetAdaptiveSettings)
		}
	}

	// WebSocket路由
	wsGroup := r.engine.Group("/ws")
	wsGroup.Use(r.authMiddleware.RequireAuth())
	{
		wsGroup.GET("", r.wsHandler.Connect)
		wsGroup.GET("/online", r.wsHandler.GetOnlineCount)
	}

	// 文档路由
	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Hub 获取WebSocket中心
func (r *Router) Hub() *ws.Hub {
	return r.hub
}
