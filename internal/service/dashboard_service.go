package service

import (
	"context"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/advisory"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/metrics"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalProducts       int64           `json:"total_products"`
	ActiveAlerts        int64           `json:"active_alerts"`
	HighRisk            int64           `json:"high_risk"`
	MediumRisk          int64           `json:"medium_risk"`
	LowRisk             int64           `json:"low_risk"`
	PendingApprovals    int64           `json:"pending_approvals"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
	TotalEmissionsKg    decimal.Decimal `json:"total_emissions_kg"`
}

// DashboardService 仪表盘服务接口
type DashboardService interface {
	Stats(businessID string) (*DashboardStats, error)
	Insights(ctx context.Context, businessID string) (*advisory.DashboardInsight, advisory.Origin, error)
}

// dashboardService 仪表盘服务实现
type dashboardService struct {
	db      *gorm.DB
	advisor *advisory.Client
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(db *gorm.DB, advisor *advisory.Client) DashboardService {
	return &dashboardService{db: db, advisor: advisor}
}

// Stats 汇总企业运营统计
func (s *dashboardService) Stats(businessID string) (*DashboardStats, error) {
	stats := &DashboardStats{
		TotalEstimatedValue: decimal.Zero,
		TotalEmissionsKg:    decimal.Zero,
	}

	if err := s.db.Model(&model.ProductModel{}).
		Where("business_id = ?", businessID).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	alertStats, err := repository.NewAlertRepository(s.db).Stats(businessID)
	if err != nil {
		return nil, err
	}
	stats.ActiveAlerts = alertStats.Total
	stats.HighRisk = alertStats.HighRisk
	stats.MediumRisk = alertStats.MediumRisk
	stats.LowRisk = alertStats.LowRisk
	stats.TotalEstimatedValue = alertStats.EstimatedValue

	if err := s.db.Model(&model.ManagerApprovalModel{}).
		Where("business_id = ? AND status = ?", businessID, model.ApprovalStatusPending).
		Count(&stats.PendingApprovals).Error; err != nil {
		return nil, err
	}

	emissions, err := repository.NewCarbonRepository(s.db).TotalEmissions(businessID)
	if err != nil {
		return nil, err
	}
	stats.TotalEmissionsKg = emissions

	return stats, nil
}

// Insights 生成仪表盘洞察,外部服务失败时由规则回退兜底
func (s *dashboardService) Insights(ctx context.Context, businessID string) (*advisory.DashboardInsight, advisory.Origin, error) {
	stats, err := s.Stats(businessID)
	if err != nil {
		return nil, "", err
	}

	value, _ := stats.TotalEstimatedValue.Float64()
	carbon, _ := stats.TotalEmissionsKg.Float64()
	dctx := advisory.DashboardContext{
		TotalProducts:       int(stats.TotalProducts),
		ActiveAlerts:        int(stats.ActiveAlerts),
		HighRisk:            int(stats.HighRisk),
		MediumRisk:          int(stats.MediumRisk),
		LowRisk:             int(stats.LowRisk),
		PendingApprovals:    int(stats.PendingApprovals),
		TotalEstimatedValue: value,
		CarbonKg:            carbon,
	}

	insight, origin := s.advisor.GenerateDashboardInsight(ctx, dctx)
	metrics.RecordAdvisoryRequest("dashboard", string(origin))
	return insight, origin, nil
}
