package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/database"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAlert(t *testing.T, repo AlertRepository, businessID string, riskLevel string, status string, value string) *model.AlertModel {
	t.Helper()
	estimated, err := decimal.NewFromString(value)
	require.NoError(t, err)

	alert := &model.AlertModel{
		ID:             uuid.New().String(),
		BusinessID:     businessID,
		ProductID:      uuid.New().String(),
		RiskLevel:      riskLevel,
		Details:        "test alert",
		DaysLeft:       5,
		Temperature:    3.2,
		Humidity:       88,
		Location:       "Cold Storage A",
		Quantity:       "10 kg",
		EstimatedValue: estimated,
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, repo.Save(alert))
	return alert
}

func TestFindActiveByProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	active := seedAlert(t, repo, "biz-1", model.RiskMedium, model.AlertStatusActive, "100")
	resolved := seedAlert(t, repo, "biz-1", model.RiskHigh, model.AlertStatusResolved, "200")

	found, err := repo.FindActiveByProduct(active.ProductID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	// 终态告警不算 active
	_, err = repo.FindActiveByProduct(resolved.ProductID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateStatusIfActiveGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	alert := seedAlert(t, repo, "biz-1", model.RiskLow, model.AlertStatusActive, "50")

	// 跨租户条件不命中
	affected, err := repo.UpdateStatusIfActive("biz-2", alert.ID, model.AlertStatusResolved)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.UpdateStatusIfActive("biz-1", alert.ID, model.AlertStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// 已进入终态,重复更新不再命中
	affected, err = repo.UpdateStatusIfActive("biz-1", alert.ID, model.AlertStatusDismissed)
	require.NoError(t, err)
	assert.Zero(t, affected)

	stored, err := repo.FindByID("biz-1", alert.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusResolved, stored.Status)
}

func TestAlertStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	seedAlert(t, repo, "biz-1", model.RiskHigh, model.AlertStatusActive, "700.50")
	seedAlert(t, repo, "biz-1", model.RiskHigh, model.AlertStatusActive, "299.50")
	seedAlert(t, repo, "biz-1", model.RiskMedium, model.AlertStatusActive, "100")
	// 终态与他租户不计入统计
	seedAlert(t, repo, "biz-1", model.RiskLow, model.AlertStatusResolved, "999")
	seedAlert(t, repo, "biz-2", model.RiskLow, model.AlertStatusActive, "888")

	stats, err := repo.Stats("biz-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.HighRisk)
	assert.Equal(t, int64(1), stats.MediumRisk)
	assert.Zero(t, stats.LowRisk)
	assert.True(t, stats.EstimatedValue.Equal(decimal.RequireFromString("1100")),
		"estimated value %s", stats.EstimatedValue)
}

func TestAlertStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	stats, err := repo.Stats("biz-1")
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.True(t, stats.EstimatedValue.IsZero())
}

func TestFindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	high := seedAlert(t, repo, "biz-1", model.RiskHigh, model.AlertStatusActive, "100")
	seedAlert(t, repo, "biz-1", model.RiskLow, model.AlertStatusActive, "100")
	seedAlert(t, repo, "biz-1", model.RiskHigh, model.AlertStatusDismissed, "100")

	riskHigh := model.RiskHigh
	statusActive := model.AlertStatusActive
	alerts, err := repo.FindByFilter(&AlertFilter{
		BusinessID: "biz-1",
		RiskLevel:  &riskHigh,
		Status:     &statusActive,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, high.ID, alerts[0].ID)

	all, err := repo.FindByFilter(&AlertFilter{BusinessID: "biz-1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDecideIfPendingSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApprovalRepository(db)

	approval := &model.ManagerApprovalModel{
		ID:           uuid.New().String(),
		BusinessID:   "biz-1",
		ActionType:   model.ActionSpoilageWriteoff,
		SubjectID:    "alert-1",
		RequiredRole: model.RoleInventoryManager,
		Status:       model.ApprovalStatusPending,
		RequestedBy:  "user-1",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Save(approval))

	now := time.Now()
	affected, err := repo.DecideIfPending(approval.ID, model.ApprovalStatusApproved, "mgr-1", "ok", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// 第二个审批人条件不命中,首个决定保持有效
	affected, err = repo.DecideIfPending(approval.ID, model.ApprovalStatusRejected, "mgr-2", "no", now)
	require.NoError(t, err)
	assert.Zero(t, affected)

	stored, err := repo.FindByID("biz-1", approval.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, stored.Status)
	assert.Equal(t, "mgr-1", stored.ReviewerID)
	assert.Equal(t, "ok", stored.ReviewNotes)
	require.NotNil(t, stored.ReviewedAt)
}

func TestFindApproverName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApprovalRepository(db)

	require.NoError(t, db.Create(&model.ManagerModel{
		ID:         "mgr-1",
		BusinessID: "biz-1",
		Name:       "Chen Jing",
		Role:       model.RoleFinanceManager,
		CreatedAt:  time.Now(),
	}).Error)

	name, err := repo.FindApproverName("biz-1", "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, "Chen Jing", name)

	_, err = repo.FindApproverName("biz-2", "mgr-1")
	assert.Error(t, err)
}
