package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

// CarbonSummary 碳排放汇总
type CarbonSummary struct {
	TotalEmissionsKg decimal.Decimal                `json:"total_emissions_kg"`
	Monthly          []*repository.MonthlyEmissions `json:"monthly"`
	RecordCount      int                            `json:"record_count"`
}

// CarbonService 碳排放服务接口
type CarbonService interface {
	Summary(businessID string) (*CarbonSummary, error)
	RecordEmission(ctx context.Context, businessID string, routeID string, activityType string, emissionsKg decimal.Decimal) (*model.CarbonRecordModel, error)
	RequestOffsetPurchase(ctx context.Context, businessID string, userID string, amountKg decimal.Decimal) (*model.ManagerApprovalModel, error)
}

// carbonService 碳排放服务实现
type carbonService struct {
	carbonRepo   repository.CarbonRepository
	approvalRepo repository.ApprovalRepository
}

// NewCarbonService 创建碳排放服务
func NewCarbonService(carbonRepo repository.CarbonRepository, approvalRepo repository.ApprovalRepository) CarbonService {
	return &carbonService{
		carbonRepo:   carbonRepo,
		approvalRepo: approvalRepo,
	}
}

// Summary 查询企业的碳排放汇总
func (s *carbonService) Summary(businessID string) (*CarbonSummary, error) {
	records, err := s.carbonRepo.FindByBusiness(businessID)
	if err != nil {
		return nil, err
	}

	total, err := s.carbonRepo.TotalEmissions(businessID)
	if err != nil {
		return nil, err
	}

	monthly, err := s.carbonRepo.MonthlySummary(businessID)
	if err != nil {
		return nil, err
	}

	return &CarbonSummary{
		TotalEmissionsKg: total,
		Monthly:          monthly,
		RecordCount:      len(records),
	}, nil
}

// RecordEmission 记录一次碳排放
func (s *carbonService) RecordEmission(ctx context.Context, businessID string, routeID string, activityType string, emissionsKg decimal.Decimal) (*model.CarbonRecordModel, error) {
	record := &model.CarbonRecordModel{
		ID:           uuid.New().String(),
		BusinessID:   businessID,
		RouteID:      routeID,
		ActivityType: activityType,
		EmissionsKg:  emissionsKg,
		RecordedAt:   time.Now(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.carbonRepo.Save(record); err != nil {
		return nil, err
	}
	return record, nil
}

// RequestOffsetPurchase 发起碳补偿购买审批,由可持续发展经理审批
func (s *carbonService) RequestOffsetPurchase(ctx context.Context, businessID string, userID string, amountKg decimal.Decimal) (*model.ManagerApprovalModel, error) {
	approval := &model.ManagerApprovalModel{
		ID:           uuid.New().String(),
		BusinessID:   businessID,
		ActionType:   model.ActionCarbonOffset,
		RequiredRole: model.RoleSustainabilityManager,
		Status:       model.ApprovalStatusPending,
		Details:      fmt.Sprintf("Purchase carbon offsets for %s kg CO2e", amountKg.StringFixed(3)),
		RequestedBy:  userID,
		CreatedAt:    time.Now(),
	}

	if err := s.approvalRepo.Save(approval); err != nil {
		return nil, err
	}
	return approval, nil
}
