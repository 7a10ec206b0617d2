package service

import (
	"fmt"
	"testing"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyRiskDaysLeftDominates(t *testing.T) {
	cases := []struct {
		daysLeft int
		expected string
	}{
		{0, model.RiskHigh},
		{1, model.RiskHigh},
		{3, model.RiskHigh},
		{4, model.RiskMedium},
		{7, model.RiskMedium},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("daysLeft=%d", tc.daysLeft), func(t *testing.T) {
			// 条件完全正常,只有剩余天数驱动分级
			got := ClassifyRisk(tc.daysLeft, 3.0, 90, model.StorageRefrigerated)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClassifyRiskSuboptimalConditions(t *testing.T) {
	// 剩余 8-14 天且环境超限时升为 medium
	assert.Equal(t, model.RiskMedium, ClassifyRisk(10, 7.5, 90, model.StorageRefrigerated))
	assert.Equal(t, model.RiskMedium, ClassifyRisk(14, 3.0, 60, model.StorageRefrigerated))
	assert.Equal(t, model.RiskMedium, ClassifyRisk(8, -10, 50, model.StorageFrozen))

	// 超过 14 天,即使环境超限也保持 low
	assert.Equal(t, model.RiskLow, ClassifyRisk(15, 7.5, 90, model.StorageRefrigerated))

	// 环境正常且天数充足
	assert.Equal(t, model.RiskLow, ClassifyRisk(10, 3.0, 90, model.StorageRefrigerated))
	assert.Equal(t, model.RiskLow, ClassifyRisk(30, -20, 90, model.StorageFrozen))
}

func TestClassifyRiskCategoryThresholds(t *testing.T) {
	// 同一读数在不同类别下结论不同
	assert.Equal(t, model.RiskMedium, ClassifyRisk(10, 20, 50, model.StorageRefrigerated))
	assert.Equal(t, model.RiskLow, ClassifyRisk(10, 20, 50, model.StorageAmbient))

	// 超出 ambient 湿度区间
	assert.Equal(t, model.RiskMedium, ClassifyRisk(10, 20, 80, model.StorageAmbient))
	assert.Equal(t, model.RiskMedium, ClassifyRisk(10, 20, 30, model.StorageAmbient))

	// 受控气调类别的低温上限
	assert.Equal(t, model.RiskMedium, ClassifyRisk(10, 6, 92, model.StorageControlledAtmosphere))
	assert.Equal(t, model.RiskLow, ClassifyRisk(10, 3, 92, model.StorageControlledAtmosphere))
}

func TestClassifyRiskUnknownCategoryFallsBackToAmbient(t *testing.T) {
	assert.Equal(t,
		ClassifyRisk(10, 30, 50, model.StorageAmbient),
		ClassifyRisk(10, 30, 50, "warehouse_x"))
}

func TestRiskDetailsTemplates(t *testing.T) {
	high := RiskDetails(model.RiskHigh, "Organic Milk", 1)
	assert.Contains(t, high, "Critical")
	// 单复数不做处理,1 天也输出 "1 days"
	assert.Contains(t, high, "1 days")

	medium := RiskDetails(model.RiskMedium, "Cheddar", 6)
	assert.Contains(t, medium, "Warning")
	assert.Contains(t, medium, "6 days")

	low := RiskDetails(model.RiskLow, "Canned Beans", 300)
	assert.Contains(t, low, "Stable")

	// 未知等级按 low 模板兜底
	assert.Contains(t, RiskDetails("severe", "X", 2), "Stable")
}
