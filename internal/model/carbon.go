package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CarbonRecordModel 碳排放记录数据模型
type CarbonRecordModel struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID   string          `gorm:"type:varchar(64);not null;index" json:"business_id"`
	RouteID      string          `gorm:"type:varchar(64);index" json:"route_id"`
	ActivityType string          `gorm:"type:varchar(64);not null" json:"activity_type"`
	EmissionsKg  decimal.Decimal `gorm:"type:decimal(14,3)" json:"emissions_kg"`
	RecordedAt   time.Time       `gorm:"not null;index" json:"recorded_at"`
}

// TableName 指定表名
func (CarbonRecordModel) TableName() string {
	return "carbon_records"
}

// Validate 验证碳排放记录模型
func (cr *CarbonRecordModel) Validate() error {
	if cr.ID == "" {
		return errors.New("record ID is required")
	}
	if cr.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if cr.ActivityType == "" {
		return errors.New("activity type is required")
	}
	if cr.EmissionsKg.IsNegative() {
		return errors.New("emissions cannot be negative")
	}
	return nil
}
