package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/websocket"
	"github.com/sirupsen/logrus"
)

// Controllers 路由需要的全部控制器
type Controllers struct {
	Health    *HealthController
	Product   *ProductController
	Alert     *AlertController
	Approval  *ApprovalController
	Dashboard *DashboardController
	Route     *RouteController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, logger *logrus.Logger, ctrl Controllers, hub *websocket.Hub, validator *auth.TokenValidator) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
		SetProductionMode(true)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware(logger))
	router.Use(ErrorHandlerMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(SecurityHeadersMiddleware())

	// 健康检查
	router.GET("/health", ctrl.Health.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由,推送同步结果
	if hub != nil && validator != nil {
		router.GET("/ws/alerts", websocket.AlertStreamHandler(hub, validator))
	}

	// 未匹配路由返回 JSON 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "")
	})

	// API v1 路由组,全部需要认证
	v1 := router.Group("/api/v1")
	v1.Use(auth.AuthMiddleware(validator))
	v1.Use(RateLimitMiddleware(100, 200))
	{
		// 产品管理路由
		products := v1.Group("/products")
		{
			products.POST("", ctrl.Product.Create)
			products.GET("", ctrl.Product.List)
			products.GET("/:id", ctrl.Product.Get)
			products.PUT("/:id", ctrl.Product.Update)
			products.DELETE("/:id", ctrl.Product.Delete)
		}

		// 风险预警路由
		alerts := v1.Group("/alerts")
		{
			alerts.POST("/sync", ctrl.Alert.Sync)
			alerts.GET("", ctrl.Alert.List)
			alerts.GET("/stats", ctrl.Alert.Stats)
			alerts.GET("/:id/insights", ctrl.Alert.Insights)
			alerts.PUT("/:id/status", ctrl.Alert.UpdateStatus)
			alerts.DELETE("/:id", ctrl.Alert.Delete)
			alerts.POST("/:id/writeoff", ctrl.Alert.RequestWriteoff)
		}

		// 经理审批路由
		approvals := v1.Group("/approvals")
		{
			approvals.GET("", ctrl.Approval.List)
			approvals.GET("/count", ctrl.Approval.Count)
			approvals.PUT("/:id/approve", ctrl.Approval.Approve)
			approvals.PUT("/:id/reject", ctrl.Approval.Reject)
		}

		// 仪表盘路由
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", ctrl.Dashboard.Stats)
			dashboard.GET("/insights", ctrl.Dashboard.Insights)
		}

		// 配送路线路由
		routes := v1.Group("/routes")
		{
			routes.GET("", ctrl.Route.List)
			routes.GET("/insights", ctrl.Route.OptimizationInsights)
			routes.POST("/:id/change", ctrl.Route.RequestChange)
		}

		// 碳排放路由
		carbon := v1.Group("/carbon")
		{
			carbon.GET("/summary", ctrl.Route.CarbonSummary)
			carbon.POST("/offset", ctrl.Route.RequestOffsetPurchase)
		}
	}

	return router
}
