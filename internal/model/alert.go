package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// 风险等级
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// 告警状态
const (
	AlertStatusActive    = "active"
	AlertStatusDismissed = "dismissed"
	AlertStatusResolved  = "resolved"
)

// AlertModel 腐损风险告警数据模型
// 每个产品至多对应一条 status=active 的告警,由同步器保证
type AlertModel struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID     string          `gorm:"type:varchar(64);not null;index" json:"business_id"`
	ProductID      string          `gorm:"type:varchar(64);not null;index" json:"product_id"`
	RiskLevel      string          `gorm:"type:varchar(16);not null;index" json:"risk_level"`
	Details        string          `gorm:"type:text" json:"details"`
	DaysLeft       int             `gorm:"not null" json:"days_left"`
	Temperature    float64         `json:"temperature"`
	Humidity       float64         `json:"humidity"`
	Location       string          `gorm:"type:varchar(128)" json:"location"`
	Quantity       string          `gorm:"type:varchar(64)" json:"quantity"`
	EstimatedValue decimal.Decimal `gorm:"type:decimal(14,2)" json:"estimated_value"`
	Status         string          `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (AlertModel) TableName() string {
	return "alerts"
}

// Validate 验证告警模型
func (am *AlertModel) Validate() error {
	if am.ID == "" {
		return errors.New("alert ID is required")
	}
	if am.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if am.ProductID == "" {
		return errors.New("product ID is required")
	}
	if !IsValidRiskLevel(am.RiskLevel) {
		return errors.New("invalid risk level")
	}
	if !IsValidAlertStatus(am.Status) {
		return errors.New("invalid alert status")
	}
	if am.DaysLeft < 0 {
		return errors.New("days left cannot be negative")
	}
	return nil
}

// IsValidRiskLevel 检查风险等级是否有效
func IsValidRiskLevel(level string) bool {
	switch level {
	case RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// IsValidAlertStatus 检查告警状态是否有效
func IsValidAlertStatus(status string) bool {
	switch status {
	case AlertStatusActive, AlertStatusDismissed, AlertStatusResolved:
		return true
	}
	return false
}

// IsTerminalAlertStatus 检查是否为终态(终态告警不再参与同步)
func IsTerminalAlertStatus(status string) bool {
	return status == AlertStatusDismissed || status == AlertStatusResolved
}
