package model

import (
	"errors"
	"time"
)

// ManagerModel 管理员数据模型
// 审批列表中 approved_by 的显示名称通过本表解析
// 已知限制: 多管理员企业解析显示名时取任意一条记录
type ManagerModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BusinessID string    `gorm:"type:varchar(64);not null;index" json:"business_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Role       string    `gorm:"type:varchar(64);not null" json:"role"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (ManagerModel) TableName() string {
	return "managers"
}

// Validate 验证管理员模型
func (mm *ManagerModel) Validate() error {
	if mm.ID == "" {
		return errors.New("manager ID is required")
	}
	if mm.BusinessID == "" {
		return errors.New("business ID is required")
	}
	if mm.Name == "" {
		return errors.New("manager name is required")
	}
	return nil
}
