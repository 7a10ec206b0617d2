package repository

import (
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertRepository 告警仓储接口
type AlertRepository interface {
	Save(alert *model.AlertModel) error
	FindByID(businessID string, id string) (*model.AlertModel, error)
	FindActiveByProduct(productID string) (*model.AlertModel, error)
	FindByFilter(filter *AlertFilter) ([]*model.AlertModel, error)
	Stats(businessID string) (*AlertStats, error)
	UpdateStatusIfActive(businessID string, id string, status string) (int64, error)
	Delete(businessID string, id string) (int64, error)
}

// AlertFilter 告警查询过滤器
// SortField 必须经过白名单校验后才能进入 Order 子句
type AlertFilter struct {
	BusinessID string
	RiskLevel  *string
	Status     *string
	ProductID  *string
	SortField  string
	SortOrder  string
}

// AlertStats 告警统计
type AlertStats struct {
	Total          int64           `json:"total"`
	HighRisk       int64           `json:"high_risk"`
	MediumRisk     int64           `json:"medium_risk"`
	LowRisk        int64           `json:"low_risk"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

// alertRepository 告警仓储实现
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository 创建告警仓储
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// Save 保存告警
func (r *alertRepository) Save(alert *model.AlertModel) error {
	return r.db.Save(alert).Error
}

// FindByID 根据 ID 查找告警(企业维度隔离)
func (r *alertRepository) FindByID(businessID string, id string) (*model.AlertModel, error) {
	var alert model.AlertModel
	if err := r.db.Where("id = ? AND business_id = ?", id, businessID).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindActiveByProduct 查找产品当前的 active 告警
// 同一产品至多一条 active 告警由同步器的查找后写入保证
func (r *alertRepository) FindActiveByProduct(productID string) (*model.AlertModel, error) {
	var alert model.AlertModel
	err := r.db.Where("product_id = ? AND status = ?", productID, model.AlertStatusActive).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindByFilter 根据过滤器查找告警
func (r *alertRepository) FindByFilter(filter *AlertFilter) ([]*model.AlertModel, error) {
	var alerts []*model.AlertModel
	query := r.db.Model(&model.AlertModel{}).Where("business_id = ?", filter.BusinessID)

	if filter.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filter.RiskLevel)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}

	order := "created_at DESC"
	if filter.SortField != "" {
		order = filter.SortField + " " + filter.SortOrder
	}

	err := query.Order(order).Find(&alerts).Error
	return alerts, err
}

// Stats 统计企业 active 告警的风险分布与估值总额
func (r *alertRepository) Stats(businessID string) (*AlertStats, error) {
	stats := &AlertStats{EstimatedValue: decimal.Zero}

	type row struct {
		RiskLevel string
		Count     int64
	}
	var rows []row
	err := r.db.Model(&model.AlertModel{}).
		Select("risk_level, COUNT(*) as count").
		Where("business_id = ? AND status = ?", businessID, model.AlertStatusActive).
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, it := range rows {
		stats.Total += it.Count
		switch it.RiskLevel {
		case model.RiskHigh:
			stats.HighRisk = it.Count
		case model.RiskMedium:
			stats.MediumRisk = it.Count
		case model.RiskLow:
			stats.LowRisk = it.Count
		}
	}

	// 估值总额按 decimal 精确累加
	var alerts []*model.AlertModel
	err = r.db.Select("estimated_value").
		Where("business_id = ? AND status = ?", businessID, model.AlertStatusActive).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	for _, a := range alerts {
		stats.EstimatedValue = stats.EstimatedValue.Add(a.EstimatedValue)
	}

	return stats, nil
}

// UpdateStatusIfActive 条件更新告警状态
// 仅当当前状态为 active 时生效,返回受影响行数;终态不可再变更
func (r *alertRepository) UpdateStatusIfActive(businessID string, id string, status string) (int64, error) {
	result := r.db.Model(&model.AlertModel{}).
		Where("id = ? AND business_id = ? AND status = ?", id, businessID, model.AlertStatusActive).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// Delete 删除告警,返回受影响行数
func (r *alertRepository) Delete(businessID string, id string) (int64, error) {
	result := r.db.Where("id = ? AND business_id = ?", id, businessID).Delete(&model.AlertModel{})
	return result.RowsAffected, result.Error
}
