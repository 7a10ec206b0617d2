package utils

import (
	"errors"
	"strings"
)

// 预警列表允许的排序字段
var allowedAlertSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"days_left":       true,
	"risk_level":      true,
	"estimated_value": true,
}

// ValidateAlertSortField 验证预警排序字段,防止 SQL 注入
func ValidateAlertSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}

	if !allowedAlertSortFields[field] {
		return errors.New("invalid sort field")
	}

	return nil
}

// SanitizeSortOrder 清理排序方向
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC" // 默认降序
}
