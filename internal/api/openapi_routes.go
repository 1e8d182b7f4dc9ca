package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/game-library/docs"
)

// registerOpenAPIRoutes 提供 /openapi 文档数据源
// 文档随二进制内嵌发布, 不依赖工作目录。
func registerOpenAPIRoutes(engine *gin.Engine) {
	engine.GET("/openapi", serveOpenAPI)
	engine.GET("/openapi.yaml", serveOpenAPI)
}

func serveOpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", docs.OpenAPISpec)
}
