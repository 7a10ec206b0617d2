package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/utils"
	"github.com/shopspring/decimal"
)

// RouteController 配送路线与碳排放控制器
type RouteController struct {
	routeService  service.RouteService
	carbonService service.CarbonService
}

// NewRouteController 创建路线控制器
func NewRouteController(routeService service.RouteService, carbonService service.CarbonService) *RouteController {
	return &RouteController{
		routeService:  routeService,
		carbonService: carbonService,
	}
}

// List 查询配送路线列表
func (c *RouteController) List(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	routes, err := c.routeService.List(identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "route", "list routes")
		return
	}

	Success(ctx, routes)
}

// OptimizationInsights 获取路线优化建议
func (c *RouteController) OptimizationInsights(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	insight, origin, err := c.routeService.OptimizationInsights(ctx.Request.Context(), identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "route", "get route insights")
		return
	}

	Success(ctx, insightResponse{Insight: insight, Origin: string(origin)})
}

// requestChangeRequest 路线变更请求
type requestChangeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RequestChange 发起路线变更审批
func (c *RouteController) RequestChange(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid route ID", err.Error())
		return
	}

	var req requestChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	approval, err := c.routeService.RequestChange(ctx.Request.Context(), identity.BusinessID, identity.UserID, id, req.Reason)
	if err != nil {
		serviceError(ctx, err, "route", "request route change")
		return
	}

	Success(ctx, approval)
}

// CarbonSummary 查询碳排放汇总
func (c *RouteController) CarbonSummary(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	summary, err := c.carbonService.Summary(identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "carbon", "get carbon summary")
		return
	}

	Success(ctx, summary)
}

// offsetPurchaseRequest 碳补偿购买请求
type offsetPurchaseRequest struct {
	AmountKg decimal.Decimal `json:"amount_kg" binding:"required"`
}

// RequestOffsetPurchase 发起碳补偿购买审批
func (c *RouteController) RequestOffsetPurchase(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	var req offsetPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if req.AmountKg.LessThanOrEqual(decimal.Zero) {
		Error(ctx, http.StatusBadRequest, "invalid request", "amount_kg must be positive")
		return
	}

	approval, err := c.carbonService.RequestOffsetPurchase(ctx.Request.Context(), identity.BusinessID, identity.UserID, req.AmountKg)
	if err != nil {
		serviceError(ctx, err, "carbon", "request offset purchase")
		return
	}

	Success(ctx, approval)
}
