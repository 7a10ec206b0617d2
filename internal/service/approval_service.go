package service

import (
	"context"
	"time"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/metrics"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApprovalView 审批视图,含审批人显示名
type ApprovalView struct {
	*model.ManagerApprovalModel
	ReviewerName string `json:"reviewer_name,omitempty"`
}

// ApprovalService 审批服务接口
type ApprovalService interface {
	ListPending(role string, businessID string, status string) ([]*ApprovalView, error)
	Count(role string, businessID string) (int64, error)
	Decide(ctx context.Context, role string, businessID string, reviewerID string, approvalID string, decision string, notes string) error
}

// approvalService 审批服务实现
type approvalService struct {
	approvalRepo repository.ApprovalRepository
	audit        AuditLogService
	logger       *logrus.Logger
}

// NewApprovalService 创建审批服务
func NewApprovalService(approvalRepo repository.ApprovalRepository, audit AuditLogService, logger *logrus.Logger) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		audit:        audit,
		logger:       logger,
	}
}

// ListPending 查询角色可见的审批队列
// 未映射角色得到空列表而不是错误,属预期降级
func (s *approvalService) ListPending(role string, businessID string, status string) ([]*ApprovalView, error) {
	if status == "" {
		status = model.ApprovalStatusPending
	}
	if !model.IsValidApprovalStatus(status) {
		return nil, ErrInvalidStatus
	}

	visible := model.VisibleApprovalRoles(role)
	approvals, err := s.approvalRepo.FindByRoles(businessID, visible, status)
	if err != nil {
		return nil, err
	}

	views := make([]*ApprovalView, 0, len(approvals))
	for _, approval := range approvals {
		view := &ApprovalView{ManagerApprovalModel: approval}
		if approval.ReviewerID != "" {
			if name, err := s.approvalRepo.FindApproverName(businessID, approval.ReviewerID); err == nil {
				view.ReviewerName = name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Count 角色可见的 pending 审批数,用于 UI 角标
func (s *approvalService) Count(role string, businessID string) (int64, error) {
	return s.approvalRepo.CountPendingByRoles(businessID, model.VisibleApprovalRoles(role))
}

// Decide 写入审批决定
// 先按企业与角色校验归属(失败一律按未找到处理,不泄露存在性),
// 再以 status = pending 为守卫的单条 UPDATE 落库;
// 受影响行数为 0 说明已有其他审批人抢先,报冲突
func (s *approvalService) Decide(ctx context.Context, role string, businessID string, reviewerID string, approvalID string, decision string, notes string) error {
	if decision != model.ApprovalStatusApproved && decision != model.ApprovalStatusRejected {
		return ErrInvalidDecision
	}

	approval, err := s.approvalRepo.FindByID(businessID, approvalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	if !roleCanDecide(role, approval.RequiredRole) {
		return ErrNotFound
	}

	if approval.Status != model.ApprovalStatusPending {
		return ErrAlreadyDecided
	}

	affected, err := s.approvalRepo.DecideIfPending(approvalID, decision, reviewerID, notes, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyDecided
	}

	metrics.RecordApproval(decision)
	s.logger.WithFields(logrus.Fields{
		"approval_id": approvalID,
		"decision":    decision,
		"reviewer":    reviewerID,
	}).Info("approval decided")

	if s.audit != nil {
		action := model.AuditActionApprove
		if decision == model.ApprovalStatusRejected {
			action = model.AuditActionReject
		}
		_ = s.audit.RecordAction(ctx, businessID, reviewerID, action, "approval", approvalID,
			map[string]string{"decision": decision, "notes": notes})
	}
	return nil
}

// roleCanDecide 校验调用方角色对 required_role 的可见性
func roleCanDecide(role string, requiredRole string) bool {
	for _, r := range model.VisibleApprovalRoles(role) {
		if r == requiredRole {
			return true
		}
	}
	return false
}
