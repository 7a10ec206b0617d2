package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/advisory"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/database"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建内存 SQLite 数据库并建表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fixedSampler 固定读数采样器
type fixedSampler struct {
	reading EnvironmentalReading
}

func (f *fixedSampler) Sample(string) EnvironmentalReading {
	return f.reading
}

// recordingBroadcaster 记录广播调用
type recordingBroadcaster struct {
	businessIDs []string
	payloads    []interface{}
}

func (r *recordingBroadcaster) BroadcastAlertSync(businessID string, payload interface{}) {
	r.businessIDs = append(r.businessIDs, businessID)
	r.payloads = append(r.payloads, payload)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// offlineAdvisor 指向不可达地址,所有洞察走回退路径
func offlineAdvisor() *advisory.Client {
	return advisory.NewClient("http://127.0.0.1:1", "test-model", time.Second, testLogger())
}

func newTestAlertService(t *testing.T, db *gorm.DB, sampler EnvironmentSampler, broadcast AlertBroadcaster) AlertService {
	t.Helper()
	if sampler == nil {
		sampler = &fixedSampler{reading: EnvironmentalReading{Temperature: 3.5, Humidity: 90, Location: "Cold Storage A"}}
	}
	audit := NewAuditLogService(repository.NewAuditLogRepository(db))
	return NewAlertService(db, sampler, offlineAdvisor(), audit, broadcast, decimal.NewFromInt(10), testLogger())
}

func seedProduct(t *testing.T, db *gorm.DB, businessID string, shelfLifeDays int, createdDaysAgo int) *model.ProductModel {
	t.Helper()
	now := time.Now()
	product := &model.ProductModel{
		ID:              uuid.New().String(),
		BusinessID:      businessID,
		Name:            "Organic Milk",
		ProductType:     "dairy",
		StorageCategory: model.StorageRefrigerated,
		ShelfLifeDays:   shelfLifeDays,
		Quantity:        120,
		Unit:            "liters",
		CreatedAt:       now.Add(-time.Duration(createdDaysAgo) * 24 * time.Hour),
		UpdatedAt:       now,
	}
	require.NoError(t, repository.NewProductRepository(db).Save(product))
	return product
}

func TestSyncCreatesOneActiveAlertPerProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)
	seedProduct(t, db, "biz-1", 5, 0)

	summary, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)

	alerts, err := svc.List("biz-1", "", model.AlertStatusActive, "", "")
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestSyncIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)

	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	first, err := svc.List("biz-1", "", model.AlertStatusActive, "", "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 重跑同步不能产生第二条 active 告警,而是原地刷新
	_, err = svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	second, err := svc.List("biz-1", "", model.AlertStatusActive, "", "")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.False(t, second[0].UpdatedAt.Before(first[0].UpdatedAt))
}

func TestSyncHighRiskDetails(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	// 保质期 2 天,已过 1 天,剩 1 天,必为 high
	seedProduct(t, db, "biz-1", 2, 1)

	summary, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HighRisk)

	alerts, err := svc.List("biz-1", model.RiskHigh, "", "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, 1, alert.DaysLeft)
	assert.Contains(t, alert.Details, "Critical")
	assert.Contains(t, alert.Details, "1 days")
	assert.Equal(t, "120 liters", alert.Quantity)
	// 120 × 单价 10
	assert.True(t, alert.EstimatedValue.Equal(decimal.NewFromInt(1200)),
		"estimated value %s", alert.EstimatedValue)
}

func TestSyncClampsExpiredShelfLife(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	// 已过期 5 天,剩余天数截断为 0 而不是负数
	seedProduct(t, db, "biz-1", 5, 10)

	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, err := svc.List("biz-1", "", "", "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 0, alerts[0].DaysLeft)
	assert.Equal(t, model.RiskHigh, alerts[0].RiskLevel)
}

func TestSyncScopedToBusiness(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)
	seedProduct(t, db, "biz-2", 30, 0)

	summary, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)

	other, err := svc.List("biz-2", "", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSyncBroadcastsSummary(t *testing.T) {
	db := setupTestDB(t)
	broadcast := &recordingBroadcaster{}
	svc := newTestAlertService(t, db, nil, broadcast)

	seedProduct(t, db, "biz-1", 30, 0)

	summary, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	require.Len(t, broadcast.businessIDs, 1)
	assert.Equal(t, "biz-1", broadcast.businessIDs[0])
	assert.Equal(t, summary, broadcast.payloads[0])
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, err := svc.List("biz-1", "", "", "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	id := alerts[0].ID

	// active 不是合法的目标状态
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", id, model.AlertStatusActive), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", id, "archived"), ErrInvalidStatus)

	// active -> resolved
	require.NoError(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", id, model.AlertStatusResolved))

	// 终态不可再迁移
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", id, model.AlertStatusDismissed), ErrStatusConflict)

	// 不存在以及跨租户访问都报未找到
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", "missing", model.AlertStatusResolved), ErrNotFound)
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "biz-2", "u1", id, model.AlertStatusResolved), ErrNotFound)
}

func TestResolvedAlertLeavesRoomForNewOne(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, _ := svc.List("biz-1", "", "", "", "")
	require.NoError(t, svc.UpdateStatus(context.Background(), "biz-1", "u1", alerts[0].ID, model.AlertStatusResolved))

	// 再次同步时 active 告警已不存在,生成新行
	_, err = svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	all, err := svc.List("biz-1", "", "", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List("biz-1", "", model.AlertStatusActive, "", "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.NotEqual(t, alerts[0].ID, active[0].ID)
}

func TestDeleteAlert(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 30, 0)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, _ := svc.List("biz-1", "", "", "", "")
	require.Len(t, alerts, 1)

	assert.ErrorIs(t, svc.Delete("biz-2", alerts[0].ID), ErrNotFound)
	require.NoError(t, svc.Delete("biz-1", alerts[0].ID))
	assert.ErrorIs(t, svc.Delete("biz-1", alerts[0].ID), ErrNotFound)
}

func TestInsightsFallsBackWhenAdvisoryDown(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 2, 1)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, _ := svc.List("biz-1", "", "", "", "")
	require.Len(t, alerts, 1)

	insight, origin, err := svc.Insights(context.Background(), "biz-1", alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, advisory.OriginFallback, origin)
	require.NotNil(t, insight)
	assert.Equal(t, model.RiskHigh, insight.RiskLevel)

	_, _, err = svc.Insights(context.Background(), "biz-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestWriteoffCreatesPendingApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 2, 1)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, _ := svc.List("biz-1", "", "", "", "")
	require.Len(t, alerts, 1)

	approval, err := svc.RequestWriteoff(context.Background(), "biz-1", "user-7", alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionSpoilageWriteoff, approval.ActionType)
	assert.Equal(t, model.RoleInventoryManager, approval.RequiredRole)
	assert.Equal(t, model.ApprovalStatusPending, approval.Status)
	assert.Equal(t, alerts[0].ID, approval.SubjectID)
	assert.Equal(t, "user-7", approval.RequestedBy)

	// 跨租户引用按未找到处理
	_, err = svc.RequestWriteoff(context.Background(), "biz-2", "user-7", alerts[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDismissHighRiskCreatesWriteoffApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	seedProduct(t, db, "biz-1", 2, 1)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, err := svc.List("biz-1", model.RiskHigh, "", "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// 弃置高风险告警等同承认损耗,必须连带生成核销审批
	require.NoError(t, svc.UpdateStatus(context.Background(), "biz-1", "user-9", alerts[0].ID, model.AlertStatusDismissed))

	var approvals []model.ManagerApprovalModel
	require.NoError(t, db.Where("business_id = ?", "biz-1").Find(&approvals).Error)
	require.Len(t, approvals, 1)
	assert.Equal(t, model.ActionSpoilageWriteoff, approvals[0].ActionType)
	assert.Equal(t, model.RoleInventoryManager, approvals[0].RequiredRole)
	assert.Equal(t, model.ApprovalStatusPending, approvals[0].Status)
	assert.Equal(t, alerts[0].ID, approvals[0].SubjectID)
	assert.Equal(t, "user-9", approvals[0].RequestedBy)
}

func TestOtherTerminalTransitionsSkipWriteoff(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	// 剩 1 天必为 high,30 天必为 low
	seedProduct(t, db, "biz-1", 2, 1)
	seedProduct(t, db, "biz-1", 30, 0)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, err := svc.List("biz-1", "", model.AlertStatusActive, "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	// 高风险但正常处理完,以及弃置低风险,都不产生核销
	for _, alert := range alerts {
		status := model.AlertStatusDismissed
		if alert.RiskLevel == model.RiskHigh {
			status = model.AlertStatusResolved
		}
		require.NoError(t, svc.UpdateStatus(context.Background(), "biz-1", "user-9", alert.ID, status))
	}

	var count int64
	require.NoError(t, db.Model(&model.ManagerApprovalModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInsightsSurviveDeletedProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAlertService(t, db, nil, nil)

	product := seedProduct(t, db, "biz-1", 2, 1)
	_, err := svc.Sync(context.Background(), "biz-1", "user-1")
	require.NoError(t, err)

	alerts, err := svc.List("biz-1", "", "", "", "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.NoError(t, db.Delete(&model.ProductModel{}, "id = ?", product.ID).Error)

	// 产品行没了仍能出洞察,占位名兜底而不是把告警详情当名字
	insight, origin, err := svc.Insights(context.Background(), "biz-1", alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, advisory.OriginFallback, origin)
	require.NotNil(t, insight)
	assert.Contains(t, insight.Summary, "unknown product")
	assert.NotContains(t, insight.Summary, "Critical")
}
