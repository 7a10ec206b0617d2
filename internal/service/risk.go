package service

import (
	"fmt"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
)

// conditionThreshold 存储类别的适宜条件阈值
type conditionThreshold struct {
	maxTemp     float64
	minHumidity float64
	maxHumidity float64
}

// 各存储类别的阈值,未知类别按 ambient 评估
var conditionThresholds = map[string]conditionThreshold{
	model.StorageRefrigerated:         {maxTemp: 5, minHumidity: 85, maxHumidity: 95},
	model.StorageFrozen:               {maxTemp: -18, minHumidity: 0, maxHumidity: 100},
	model.StorageAmbient:              {maxTemp: 25, minHumidity: 40, maxHumidity: 70},
	model.StorageControlledAtmosphere: {maxTemp: 4, minHumidity: 85, maxHumidity: 100},
}

// ClassifyRisk 腐损风险分级,纯函数
// 判定顺序,先命中先生效:
//  1. daysLeft <= 3  -> high
//  2. daysLeft <= 7  -> medium
//  3. 环境超出类别阈值且 daysLeft <= 14 -> medium
//  4. 其余 -> low
func ClassifyRisk(daysLeft int, temperature float64, humidity float64, storageCategory string) string {
	if daysLeft <= 3 {
		return model.RiskHigh
	}
	if daysLeft <= 7 {
		return model.RiskMedium
	}
	if isSuboptimal(temperature, humidity, storageCategory) && daysLeft <= 14 {
		return model.RiskMedium
	}
	return model.RiskLow
}

// isSuboptimal 判断环境读数是否超出类别阈值
func isSuboptimal(temperature float64, humidity float64, storageCategory string) bool {
	threshold, ok := conditionThresholds[storageCategory]
	if !ok {
		threshold = conditionThresholds[model.StorageAmbient]
	}
	if temperature > threshold.maxTemp {
		return true
	}
	if humidity < threshold.minHumidity || humidity > threshold.maxHumidity {
		return true
	}
	return false
}

// RiskDetails 按风险等级生成告警描述
// 未识别的等级按 low 模板兜底
func RiskDetails(riskLevel string, productName string, daysLeft int) string {
	switch riskLevel {
	case model.RiskHigh:
		return fmt.Sprintf("Critical: %s has %d days left before spoilage", productName, daysLeft)
	case model.RiskMedium:
		return fmt.Sprintf("Warning: %s has %d days left, check storage conditions", productName, daysLeft)
	default:
		return fmt.Sprintf("Stable: %s is within safe parameters, %d days left", productName, daysLeft)
	}
}
