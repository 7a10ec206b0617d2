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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AlertBroadcaster 告警同步事件广播接口
type AlertBroadcaster interface {
	BroadcastAlertSync(businessID string, payload interface{})
}

// SyncSummary 一次同步的结果概要
type SyncSummary struct {
	BusinessID string    `json:"business_id"`
	Synced     int       `json:"synced"`
	HighRisk   int       `json:"high_risk"`
	MediumRisk int       `json:"medium_risk"`
	LowRisk    int       `json:"low_risk"`
	SyncedAt   time.Time `json:"synced_at"`
}

// AlertService 告警服务接口
type AlertService interface {
	Sync(ctx context.Context, businessID string, userID string) (*SyncSummary, error)
	List(businessID string, riskLevel string, status string, sortField string, sortOrder string) ([]*model.AlertModel, error)
	Stats(businessID string) (*repository.AlertStats, error)
	UpdateStatus(ctx context.Context, businessID string, userID string, id string, status string) error
	Delete(businessID string, id string) error
	Insights(ctx context.Context, businessID string, id string) (*advisory.AlertInsight, advisory.Origin, error)
	RequestWriteoff(ctx context.Context, businessID string, userID string, alertID string) (*model.ManagerApprovalModel, error)
}

// alertService 告警服务实现
type alertService struct {
	db        *gorm.DB
	sampler   EnvironmentSampler
	advisor   *advisory.Client
	audit     AuditLogService
	broadcast AlertBroadcaster
	unitPrice decimal.Decimal
	logger    *logrus.Logger
}

// NewAlertService 创建告警服务
// unitPrice 为全产品统一单价,已知简化,通过配置覆盖
func NewAlertService(
	db *gorm.DB,
	sampler EnvironmentSampler,
	advisor *advisory.Client,
	audit AuditLogService,
	broadcast AlertBroadcaster,
	unitPrice decimal.Decimal,
	logger *logrus.Logger,
) AlertService {
	return &alertService{
		db:        db,
		sampler:   sampler,
		advisor:   advisor,
		audit:     audit,
		broadcast: broadcast,
		unitPrice: unitPrice,
		logger:    logger,
	}
}

// Sync 同步企业所有产品的腐损风险告警
// 整批在一个事务内执行,任一产品失败则整体回滚,
// 不会出现新旧风险等级混杂的部分同步结果
func (s *alertService) Sync(ctx context.Context, businessID string, userID string) (*SyncSummary, error) {
	summary := &SyncSummary{BusinessID: businessID, SyncedAt: time.Now()}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := repository.NewProductRepository(tx)
		alertRepo := repository.NewAlertRepository(tx)

		products, err := productRepo.FindByBusiness(businessID)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		now := time.Now()
		for _, product := range products {
			if err := s.syncProduct(alertRepo, product, now, summary); err != nil {
				return fmt.Errorf("sync product %s: %w", product.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAlertsSynced(summary.Synced)
	s.logger.WithFields(logrus.Fields{
		"business_id": businessID,
		"synced":      summary.Synced,
		"high_risk":   summary.HighRisk,
	}).Info("alert sync completed")

	if s.audit != nil {
		_ = s.audit.RecordAction(ctx, businessID, userID, model.AuditActionSync, "alert", businessID, summary)
	}
	if s.broadcast != nil {
		s.broadcast.BroadcastAlertSync(businessID, summary)
	}
	return summary, nil
}

// syncProduct 同步单个产品的告警,存在 active 行则原地刷新,否则新建
func (s *alertService) syncProduct(alertRepo repository.AlertRepository, product *model.ProductModel, now time.Time, summary *SyncSummary) error {
	daysSince := int(now.Sub(product.CreatedAt).Hours() / 24)
	daysLeft := product.ShelfLifeDays - daysSince
	if daysLeft < 0 {
		daysLeft = 0
	}

	reading := s.sampler.Sample(product.StorageCategory)
	riskLevel := ClassifyRisk(daysLeft, reading.Temperature, reading.Humidity, product.StorageCategory)
	details := RiskDetails(riskLevel, product.Name, daysLeft)
	value := decimal.NewFromFloat(product.Quantity).Mul(s.unitPrice).Round(2)
	quantity := fmt.Sprintf("%g %s", product.Quantity, product.Unit)

	existing, err := alertRepo.FindActiveByProduct(product.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if existing != nil {
		existing.RiskLevel = riskLevel
		existing.Details = details
		existing.DaysLeft = daysLeft
		existing.Temperature = reading.Temperature
		existing.Humidity = reading.Humidity
		existing.Location = reading.Location
		existing.Quantity = quantity
		existing.EstimatedValue = value
		existing.UpdatedAt = now
		if err := alertRepo.Save(existing); err != nil {
			return err
		}
	} else {
		alert := &model.AlertModel{
			ID:             uuid.New().String(),
			BusinessID:     product.BusinessID,
			ProductID:      product.ID,
			RiskLevel:      riskLevel,
			Details:        details,
			DaysLeft:       daysLeft,
			Temperature:    reading.Temperature,
			Humidity:       reading.Humidity,
			Location:       reading.Location,
			Quantity:       quantity,
			EstimatedValue: value,
			Status:         model.AlertStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := alertRepo.Save(alert); err != nil {
			return err
		}
	}

	summary.Synced++
	switch riskLevel {
	case model.RiskHigh:
		summary.HighRisk++
	case model.RiskMedium:
		summary.MediumRisk++
	default:
		summary.LowRisk++
	}
	return nil
}

// List 按过滤条件查询告警
// 排序字段已在控制器按白名单校验,这里直接透传
func (s *alertService) List(businessID string, riskLevel string, status string, sortField string, sortOrder string) ([]*model.AlertModel, error) {
	filter := &repository.AlertFilter{
		BusinessID: businessID,
		SortField:  sortField,
		SortOrder:  sortOrder,
	}
	if riskLevel != "" {
		filter.RiskLevel = &riskLevel
	}
	if status != "" {
		filter.Status = &status
	}
	return repository.NewAlertRepository(s.db).FindByFilter(filter)
}

// Stats 告警统计
func (s *alertService) Stats(businessID string) (*repository.AlertStats, error) {
	return repository.NewAlertRepository(s.db).Stats(businessID)
}

// UpdateStatus 更新告警状态
// 仅允许从 active 迁出,终态不可再变更;条件更新由存储层保证
// 弃置高风险告警即产生损耗,同一事务内自动进入核销审批队列
func (s *alertService) UpdateStatus(ctx context.Context, businessID string, userID string, id string, status string) error {
	if !model.IsTerminalAlertStatus(status) {
		return ErrInvalidStatus
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alertRepo := repository.NewAlertRepository(tx)
		affected, err := alertRepo.UpdateStatusIfActive(businessID, id, status)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 区分 404 与状态冲突,但不向跨租户调用方泄露存在性
			if _, err := alertRepo.FindByID(businessID, id); err != nil {
				return ErrNotFound
			}
			return ErrStatusConflict
		}

		if status == model.AlertStatusDismissed {
			alert, err := alertRepo.FindByID(businessID, id)
			if err != nil {
				return err
			}
			if alert.RiskLevel == model.RiskHigh {
				return repository.NewApprovalRepository(tx).Save(writeoffApproval(alert, userID))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.RecordAction(ctx, businessID, userID, model.AuditActionStatusUpdate, "alert", id,
			map[string]string{"status": status})
	}
	return nil
}

// Delete 删除告警
func (s *alertService) Delete(businessID string, id string) error {
	affected, err := repository.NewAlertRepository(s.db).Delete(businessID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Insights 生成告警洞察,外部服务失败时由规则回退兜底
func (s *alertService) Insights(ctx context.Context, businessID string, id string) (*advisory.AlertInsight, advisory.Origin, error) {
	alert, err := repository.NewAlertRepository(s.db).FindByID(businessID, id)
	if err != nil {
		return nil, "", ErrNotFound
	}

	value, _ := alert.EstimatedValue.Float64()
	actx := advisory.AlertContext{
		// 产品行可能已被删除,兜底用中性占位名
		ProductName:     "unknown product",
		RiskLevel:       alert.RiskLevel,
		DaysLeft:        alert.DaysLeft,
		Quantity:        alert.Quantity,
		StorageCategory: "",
		Temperature:     alert.Temperature,
		Humidity:        alert.Humidity,
		Location:        alert.Location,
		EstimatedValue:  value,
	}
	if product, err := repository.NewProductRepository(s.db).FindByID(businessID, alert.ProductID); err == nil {
		actx.ProductName = product.Name
		actx.Unit = product.Unit
		actx.StorageCategory = product.StorageCategory
	}

	insight, origin := s.advisor.GenerateAlertInsight(ctx, actx)
	metrics.RecordAdvisoryRequest("alert", string(origin))
	return insight, origin, nil
}

// RequestWriteoff 发起腐损核销申请
// 敏感动作不直接生效,进入 inventory_manager 审批队列
func (s *alertService) RequestWriteoff(ctx context.Context, businessID string, userID string, alertID string) (*model.ManagerApprovalModel, error) {
	alert, err := repository.NewAlertRepository(s.db).FindByID(businessID, alertID)
	if err != nil {
		return nil, ErrNotFound
	}

	approval := writeoffApproval(alert, userID)
	if err := repository.NewApprovalRepository(s.db).Save(approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// writeoffApproval 构造核销审批行,显式申请与高风险弃置共用
func writeoffApproval(alert *model.AlertModel, userID string) *model.ManagerApprovalModel {
	return &model.ManagerApprovalModel{
		ID:           uuid.New().String(),
		BusinessID:   alert.BusinessID,
		ActionType:   model.ActionSpoilageWriteoff,
		SubjectID:    alert.ID,
		RequiredRole: model.RoleInventoryManager,
		Status:       model.ApprovalStatusPending,
		Details:      fmt.Sprintf("Write off %s valued at %s (%s risk)", alert.Quantity, alert.EstimatedValue.StringFixed(2), alert.RiskLevel),
		RequestedBy:  userID,
		CreatedAt:    time.Now(),
	}
}
