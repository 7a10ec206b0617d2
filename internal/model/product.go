package model

import (
	"errors"
	"time"
)

// 存储类别
const (
	StorageRefrigerated         = "refrigerated"
	StorageFrozen               = "frozen"
	StorageAmbient              = "ambient"
	StorageControlledAtmosphere = "controlled_atmosphere"
)

// ProductModel 产品数据模型
type ProductModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID      string    `gorm:"type:varchar(64);not null;index" json:"business_id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	ProductType     string    `gorm:"type:varchar(64)" json:"product_type"`
	StorageCategory string    `gorm:"type:varchar(32);not null" json:"storage_category"`
	ShelfLifeDays   int       `gorm:"not null" json:"shelf_life_days"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	Unit            string    `gorm:"type:varchar(32)" json:"unit"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// Validate 验证产品模型
func (pm *ProductModel) Validate() error {
	if pm.ID == "" {
		return errors.New("product ID is required")
	}
	if pm.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if pm.Name == "" {
		return errors.New("product name is required")
	}
	if !IsValidStorageCategory(pm.StorageCategory) {
		return errors.New("invalid storage category")
	}
	if pm.ShelfLifeDays <= 0 {
		return errors.New("shelf life must be positive")
	}
	if pm.Quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	return nil
}

// IsValidStorageCategory 检查存储类别是否有效
func IsValidStorageCategory(category string) bool {
	switch category {
	case StorageRefrigerated, StorageFrozen, StorageAmbient, StorageControlledAtmosphere:
		return true
	}
	return false
}
