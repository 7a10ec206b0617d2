package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
)

// DashboardController 仪表盘控制器
type DashboardController struct {
	dashboardService service.DashboardService
}

// NewDashboardController 创建仪表盘控制器
func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// Stats 查询仪表盘统计
func (c *DashboardController) Stats(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	stats, err := c.dashboardService.Stats(identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "dashboard", "get dashboard stats")
		return
	}

	Success(ctx, stats)
}

// Insights 获取仪表盘整体洞察
func (c *DashboardController) Insights(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	insight, origin, err := c.dashboardService.Insights(ctx.Request.Context(), identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "dashboard", "get dashboard insights")
		return
	}

	Success(ctx, insightResponse{Insight: insight, Origin: string(origin)})
}
