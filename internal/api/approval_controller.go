package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/utils"
)

// ApprovalController 经理审批控制器
type ApprovalController struct {
	approvalService service.ApprovalService
}

// NewApprovalController 创建审批控制器
func NewApprovalController(approvalService service.ApprovalService) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
	}
}

// List 查询当前角色可见的审批队列
// 默认只看待处理,可用 status 查询历史
func (c *ApprovalController) List(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	status := ctx.Query("status")

	approvals, err := c.approvalService.ListPending(identity.Role, identity.BusinessID, status)
	if err != nil {
		serviceError(ctx, err, "approval", "list approvals")
		return
	}

	Success(ctx, approvals)
}

// Count 查询当前角色的待处理审批数量
func (c *ApprovalController) Count(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	count, err := c.approvalService.Count(identity.Role, identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "approval", "count approvals")
		return
	}

	Success(ctx, gin.H{"pending": count})
}

// decideRequest 审批决定请求
type decideRequest struct {
	Notes string `json:"notes"`
}

// Approve 批准审批请求
func (c *ApprovalController) Approve(ctx *gin.Context) {
	c.decide(ctx, model.ApprovalStatusApproved)
}

// Reject 拒绝审批请求
func (c *ApprovalController) Reject(ctx *gin.Context) {
	c.decide(ctx, model.ApprovalStatusRejected)
}

// decide 执行审批决定
// 条件更新保证并发下只有一个审阅者生效,落败方得到冲突响应
func (c *ApprovalController) decide(ctx *gin.Context, decision string) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid approval ID", err.Error())
		return
	}

	// 请求体可为空,notes 是可选的
	var req decideRequest
	_ = ctx.ShouldBindJSON(&req)

	err := c.approvalService.Decide(ctx.Request.Context(), identity.Role, identity.BusinessID, identity.UserID, id, decision, req.Notes)
	if err != nil {
		serviceError(ctx, err, "approval", "decide approval")
		return
	}

	SuccessWithMessage(ctx, "approval "+decision, nil)
}
