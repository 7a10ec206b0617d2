package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/advisory"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/metrics"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
)

// RouteService 配送路线服务接口
type RouteService interface {
	List(businessID string) ([]*model.DeliveryRouteModel, error)
	OptimizationInsights(ctx context.Context, businessID string) (*advisory.RouteInsight, advisory.Origin, error)
	RequestChange(ctx context.Context, businessID string, userID string, routeID string, reason string) (*model.ManagerApprovalModel, error)
}

// routeService 配送路线服务实现
type routeService struct {
	routeRepo    repository.RouteRepository
	carbonRepo   repository.CarbonRepository
	approvalRepo repository.ApprovalRepository
	advisor      *advisory.Client
}

// NewRouteService 创建配送路线服务
func NewRouteService(
	routeRepo repository.RouteRepository,
	carbonRepo repository.CarbonRepository,
	approvalRepo repository.ApprovalRepository,
	advisor *advisory.Client,
) RouteService {
	return &routeService{
		routeRepo:    routeRepo,
		carbonRepo:   carbonRepo,
		approvalRepo: approvalRepo,
		advisor:      advisor,
	}
}

// List 列出企业配送路线
func (s *routeService) List(businessID string) ([]*model.DeliveryRouteModel, error) {
	return s.routeRepo.FindByBusiness(businessID)
}

// OptimizationInsights 生成路线优化洞察,外部服务失败时由规则回退兜底
func (s *routeService) OptimizationInsights(ctx context.Context, businessID string) (*advisory.RouteInsight, advisory.Origin, error) {
	routes, err := s.routeRepo.FindByBusiness(businessID)
	if err != nil {
		return nil, "", err
	}

	rctx := advisory.RouteContext{Routes: make([]advisory.RouteSummary, 0, len(routes))}
	for _, route := range routes {
		rctx.Routes = append(rctx.Routes, advisory.RouteSummary{
			Origin:      route.Origin,
			Destination: route.Destination,
			DistanceKM:  route.DistanceKM,
			VehicleType: route.VehicleType,
		})
		rctx.TotalDistanceKM += route.DistanceKM
	}

	emissions, err := s.carbonRepo.TotalEmissions(businessID)
	if err != nil {
		return nil, "", err
	}
	rctx.EmissionsKg, _ = emissions.Float64()

	insight, origin := s.advisor.GenerateRouteInsight(ctx, rctx)
	metrics.RecordAdvisoryRequest("route", string(origin))
	return insight, origin, nil
}

// RequestChange 发起路线变更申请
// 敏感动作不直接生效,进入 logistics_manager 审批队列
func (s *routeService) RequestChange(ctx context.Context, businessID string, userID string, routeID string, reason string) (*model.ManagerApprovalModel, error) {
	route, err := s.routeRepo.FindByID(businessID, routeID)
	if err != nil {
		return nil, ErrNotFound
	}

	approval := &model.ManagerApprovalModel{
		ID:           uuid.New().String(),
		BusinessID:   businessID,
		ActionType:   model.ActionRouteChange,
		SubjectID:    route.ID,
		RequiredRole: model.RoleLogisticsManager,
		Status:       model.ApprovalStatusPending,
		Details:      fmt.Sprintf("Change route %s -> %s: %s", route.Origin, route.Destination, reason),
		RequestedBy:  userID,
		CreatedAt:    time.Now(),
	}
	if err := s.approvalRepo.Save(approval); err != nil {
		return nil, err
	}
	return approval, nil
}
