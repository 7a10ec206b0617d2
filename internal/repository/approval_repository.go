package repository

import (
	"time"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"gorm.io/gorm"
)

// ApprovalRepository 审批仓储接口
type ApprovalRepository interface {
	Save(approval *model.ManagerApprovalModel) error
	FindByID(businessID string, id string) (*model.ManagerApprovalModel, error)
	FindByRoles(businessID string, requiredRoles []string, status string) ([]*model.ManagerApprovalModel, error)
	CountPendingByRoles(businessID string, requiredRoles []string) (int64, error)
	DecideIfPending(id string, status string, reviewerID string, notes string, reviewedAt time.Time) (int64, error)
	FindApproverName(businessID string, reviewerID string) (string, error)
}

// approvalRepository 审批仓储实现
type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository 创建审批仓储
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

// Save 保存审批
func (r *approvalRepository) Save(approval *model.ManagerApprovalModel) error {
	return r.db.Save(approval).Error
}

// FindByID 根据 ID 查找审批(企业维度隔离)
func (r *approvalRepository) FindByID(businessID string, id string) (*model.ManagerApprovalModel, error) {
	var approval model.ManagerApprovalModel
	if err := r.db.Where("id = ? AND business_id = ?", id, businessID).First(&approval).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

// FindByRoles 查找角色可见的审批
// requiredRoles 为空时直接返回空列表,未映射角色不报错
func (r *approvalRepository) FindByRoles(businessID string, requiredRoles []string, status string) ([]*model.ManagerApprovalModel, error) {
	if len(requiredRoles) == 0 {
		return []*model.ManagerApprovalModel{}, nil
	}

	var approvals []*model.ManagerApprovalModel
	query := r.db.Where("business_id = ? AND required_role IN ?", businessID, requiredRoles)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&approvals).Error
	return approvals, err
}

// CountPendingByRoles 统计角色可见的 pending 审批数
func (r *approvalRepository) CountPendingByRoles(businessID string, requiredRoles []string) (int64, error) {
	if len(requiredRoles) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&model.ManagerApprovalModel{}).
		Where("business_id = ? AND required_role IN ? AND status = ?",
			businessID, requiredRoles, model.ApprovalStatusPending).
		Count(&count).Error
	return count, err
}

// DecideIfPending 条件写入审批决定
// 单条 UPDATE 以 status = pending 为守卫,返回受影响行数
// 两个审批人竞争同一条审批时至多一个成功,多写被存储层拒绝
func (r *approvalRepository) DecideIfPending(id string, status string, reviewerID string, notes string, reviewedAt time.Time) (int64, error) {
	result := r.db.Model(&model.ManagerApprovalModel{}).
		Where("id = ? AND status = ?", id, model.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"reviewer_id":  reviewerID,
			"review_notes": notes,
			"reviewed_at":  reviewedAt,
		})
	return result.RowsAffected, result.Error
}

// FindApproverName 解析审批人显示名称
// 已知限制: 未命中 reviewer 记录时回退到该企业任意一名管理员
func (r *approvalRepository) FindApproverName(businessID string, reviewerID string) (string, error) {
	var manager model.ManagerModel
	err := r.db.Where("id = ? AND business_id = ?", reviewerID, businessID).First(&manager).Error
	if err == nil {
		return manager.Name, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	err = r.db.Where("business_id = ?", businessID).First(&manager).Error
	if err != nil {
		return "", err
	}
	return manager.Name, nil
}
