// @title Taxonomy Editor Admin API
// @version 1.0
// @description 分类法词条合并与内容标签批量编辑后台 API
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token format: Bearer {token}

package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "taxonomy-editor/docs/admin" // Swagger 生成的文档
	custommiddleware "taxonomy-editor/internal/middleware"
	"taxonomy-editor/internal/pkg/authz"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/notify"
)

// setupRoutes 注册业务路由，所有接口都需要认证
func (m *AdminModule) setupRoutes() {
	requireCap := func(capability string) echo.MiddlewareFunc {
		return custommiddleware.RequireCapability(m.checker, m.respWriter, m.logger, capability)
	}
	manageCategories := requireCap(authz.CapabilityManageCategories)
	editPosts := requireCap(authz.CapabilityEditPosts)

	admin := m.httpServer.Group("/api/v1/admin", custommiddleware.AuthMiddleware(m.respWriter, m.logger))
	{
		// 分类法与词条
		admin.GET("/taxonomies", m.termHandler.ListTaxonomies, manageCategories)
		admin.GET("/taxonomies/:taxonomy/terms", m.termHandler.ListTerms, manageCategories)
		admin.POST("/taxonomies/:taxonomy/terms/merge", m.termHandler.MergeTerms, manageCategories)
		admin.POST("/taxonomies/:taxonomy/terms/bulk-merge", m.termHandler.BulkMergeTerms, manageCategories)

		// 内容标签
		admin.GET("/content", m.termHandler.FilterContent, editPosts)
		admin.POST("/content/bulk-edit", m.termHandler.BulkEdit, editPosts)
	}
}

// setupSystemRoutes 文档、健康检查和指标
func (m *AdminModule) setupSystemRoutes(dbReady bool) {
	m.httpServer.GET("/swagger/*", echoSwagger.WrapHandler)

	m.httpServer.GET("/health", func(c echo.Context) error {
		status, code := "ok", http.StatusOK
		if !dbReady {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]interface{}{
			"status": status,
			"module": "admin",
			"cache":  m.redis != nil,
			"events": notify.Connected(),
		})
	})

	m.httpServer.GET("/metrics", metrics.EchoHandler())
}
