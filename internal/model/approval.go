package model

import (
	"errors"
	"time"
)

// 管理员角色
const (
	RoleInventoryManager      = "inventory_manager"
	RoleLogisticsManager      = "logistics_manager"
	RoleSustainabilityManager = "sustainability_manager"
	RoleFinanceManager        = "finance_manager"
)

// 审批状态
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// 审批动作类型
const (
	ActionSpoilageWriteoff = "spoilage_writeoff"
	ActionRouteChange      = "route_change"
	ActionCarbonOffset     = "carbon_offset_purchase"
	ActionValueAdjustment  = "value_adjustment"
)

// RoleApprovalTypes 角色可审批的 required_role 静态映射
// 未出现在映射中的角色只会看到空队列,不报错
var RoleApprovalTypes = map[string][]string{
	RoleInventoryManager:      {RoleInventoryManager},
	RoleLogisticsManager:      {RoleLogisticsManager},
	RoleSustainabilityManager: {RoleSustainabilityManager},
	RoleFinanceManager:        {RoleFinanceManager},
}

// VisibleApprovalRoles 返回角色可见的 required_role 列表
func VisibleApprovalRoles(role string) []string {
	return RoleApprovalTypes[role]
}

// ManagerApprovalModel 管理员审批数据模型
// 状态机: pending -> approved | rejected,均为终态
type ManagerApprovalModel struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID   string     `gorm:"type:varchar(64);not null;index" json:"business_id"`
	ActionType   string     `gorm:"type:varchar(64);not null" json:"action_type"`
	SubjectID    string     `gorm:"type:varchar(64);index" json:"subject_id"`
	RequiredRole string     `gorm:"type:varchar(64);not null;index" json:"required_role"`
	Status       string     `gorm:"type:varchar(16);not null;index" json:"status"`
	Details      string     `gorm:"type:text" json:"details"`
	RequestedBy  string     `gorm:"type:varchar(64)" json:"requested_by"`
	ReviewerID   string     `gorm:"type:varchar(64)" json:"reviewer_id"`
	ReviewNotes  string     `gorm:"type:text" json:"review_notes"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (ManagerApprovalModel) TableName() string {
	return "manager_approvals"
}

// Validate 验证审批模型
func (ma *ManagerApprovalModel) Validate() error {
	if ma.ID == "" {
		return errors.New("approval ID is required")
	}
	if ma.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if ma.ActionType == "" {
		return errors.New("action type is required")
	}
	if !IsValidManagerRole(ma.RequiredRole) {
		return errors.New("invalid required role")
	}
	if !IsValidApprovalStatus(ma.Status) {
		return errors.New("invalid approval status")
	}
	return nil
}

// IsValidManagerRole 检查管理员角色是否有效
func IsValidManagerRole(role string) bool {
	switch role {
	case RoleInventoryManager, RoleLogisticsManager, RoleSustainabilityManager, RoleFinanceManager:
		return true
	}
	return false
}

// IsValidApprovalStatus 检查审批状态是否有效
func IsValidApprovalStatus(status string) bool {
	switch status {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}
