package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/utils"
)

// AlertController 风险预警控制器
type AlertController struct {
	alertService service.AlertService
}

// NewAlertController 创建预警控制器
func NewAlertController(alertService service.AlertService) *AlertController {
	return &AlertController{
		alertService: alertService,
	}
}

// validateAlertID 验证预警 ID 并返回错误响应（如果无效）
func (c *AlertController) validateAlertID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid alert ID", err.Error())
		return false
	}
	return true
}

// Sync 执行风险评估同步
// 幂等操作: 对当前库存重新评估风险并更新预警表
func (c *AlertController) Sync(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	summary, err := c.alertService.Sync(ctx.Request.Context(), identity.BusinessID, identity.UserID)
	if err != nil {
		serviceError(ctx, err, "alert", "sync alerts")
		return
	}

	Success(ctx, summary)
}

// List 查询预警列表
// 支持 risk_level 和 status 过滤,sort/order 控制排序
func (c *AlertController) List(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	riskLevel := ctx.Query("risk_level")
	status := ctx.Query("status")

	sortField := ctx.Query("sort")
	if sortField != "" {
		if err := utils.ValidateAlertSortField(sortField); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid sort field", err.Error())
			return
		}
	}
	sortOrder := utils.SanitizeSortOrder(ctx.Query("order"))

	alerts, err := c.alertService.List(identity.BusinessID, riskLevel, status, sortField, sortOrder)
	if err != nil {
		serviceError(ctx, err, "alert", "list alerts")
		return
	}

	Success(ctx, alerts)
}

// Stats 查询预警统计
func (c *AlertController) Stats(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	stats, err := c.alertService.Stats(identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "alert", "get alert stats")
		return
	}

	Success(ctx, stats)
}

// Insights 获取单个预警的处置建议
type insightResponse struct {
	Insight interface{} `json:"insight"`
	Origin  string      `json:"origin"`
}

// Insights 获取预警洞察
// 洞察服务不可用时返回确定性回退结果,接口永不因此报错
func (c *AlertController) Insights(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateAlertID(ctx, id) {
		return
	}

	insight, origin, err := c.alertService.Insights(ctx.Request.Context(), identity.BusinessID, id)
	if err != nil {
		serviceError(ctx, err, "alert", "get alert insights")
		return
	}

	Success(ctx, insightResponse{Insight: insight, Origin: string(origin)})
}

// updateStatusRequest 更新预警状态请求
type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 更新预警状态
func (c *AlertController) UpdateStatus(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateAlertID(ctx, id) {
		return
	}

	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.alertService.UpdateStatus(ctx.Request.Context(), identity.BusinessID, identity.UserID, id, req.Status); err != nil {
		serviceError(ctx, err, "alert", "update alert status")
		return
	}

	SuccessWithMessage(ctx, "alert status updated", nil)
}

// Delete 删除预警
func (c *AlertController) Delete(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateAlertID(ctx, id) {
		return
	}

	if err := c.alertService.Delete(identity.BusinessID, id); err != nil {
		serviceError(ctx, err, "alert", "delete alert")
		return
	}

	SuccessWithMessage(ctx, "alert deleted", nil)
}

// RequestWriteoff 基于预警发起损耗核销审批
func (c *AlertController) RequestWriteoff(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateAlertID(ctx, id) {
		return
	}

	approval, err := c.alertService.RequestWriteoff(ctx.Request.Context(), identity.BusinessID, identity.UserID, id)
	if err != nil {
		serviceError(ctx, err, "alert", "request writeoff")
		return
	}

	Success(ctx, approval)
}
