package model

import (
	"errors"
	"time"
)

// 配送路线状态
const (
	RouteStatusActive   = "active"
	RouteStatusInactive = "inactive"
)

// DeliveryRouteModel 配送路线数据模型
type DeliveryRouteModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID  string    `gorm:"type:varchar(64);not null;index" json:"business_id"`
	Origin      string    `gorm:"type:varchar(255);not null" json:"origin"`
	Destination string    `gorm:"type:varchar(255);not null" json:"destination"`
	DistanceKM  float64   `gorm:"not null" json:"distance_km"`
	VehicleType string    `gorm:"type:varchar(64)" json:"vehicle_type"`
	Status      string    `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (DeliveryRouteModel) TableName() string {
	return "delivery_routes"
}

// Validate 验证路线模型
func (dr *DeliveryRouteModel) Validate() error {
	if dr.ID == "" {
		return errors.New("route ID is required")
	}
	if dr.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if dr.Origin == "" || dr.Destination == "" {
		return errors.New("origin and destination are required")
	}
	if dr.DistanceKM <= 0 {
		return errors.New("distance must be positive")
	}
	return nil
}
