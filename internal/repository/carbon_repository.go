package repository

import (
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CarbonRepository 碳排放仓储接口
type CarbonRepository interface {
	Save(record *model.CarbonRecordModel) error
	FindByBusiness(businessID string) ([]*model.CarbonRecordModel, error)
	TotalEmissions(businessID string) (decimal.Decimal, error)
	MonthlySummary(businessID string) ([]*MonthlyEmissions, error)
}

// MonthlyEmissions 按月汇总的碳排放
type MonthlyEmissions struct {
	Month       string          `json:"month"`
	EmissionsKg decimal.Decimal `json:"emissions_kg"`
}

// carbonRepository 碳排放仓储实现
type carbonRepository struct {
	db *gorm.DB
}

// NewCarbonRepository 创建碳排放仓储
func NewCarbonRepository(db *gorm.DB) CarbonRepository {
	return &carbonRepository{db: db}
}

// Save 保存碳排放记录
func (r *carbonRepository) Save(record *model.CarbonRecordModel) error {
	return r.db.Save(record).Error
}

// FindByBusiness 查找企业的所有碳排放记录
func (r *carbonRepository) FindByBusiness(businessID string) ([]*model.CarbonRecordModel, error) {
	var records []*model.CarbonRecordModel
	err := r.db.Where("business_id = ?", businessID).Order("recorded_at DESC").Find(&records).Error
	return records, err
}

// TotalEmissions 统计企业碳排放总量
func (r *carbonRepository) TotalEmissions(businessID string) (decimal.Decimal, error) {
	records, err := r.FindByBusiness(businessID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.EmissionsKg)
	}
	return total, nil
}

// MonthlySummary 按月汇总碳排放
// 在应用侧聚合,避免各数据库方言的日期函数差异
func (r *carbonRepository) MonthlySummary(businessID string) ([]*MonthlyEmissions, error) {
	records, err := r.FindByBusiness(businessID)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, rec := range records {
		month := rec.RecordedAt.Format("2006-01")
		if _, ok := byMonth[month]; !ok {
			order = append(order, month)
		}
		byMonth[month] = byMonth[month].Add(rec.EmissionsKg)
	}

	summary := make([]*MonthlyEmissions, 0, len(order))
	for _, month := range order {
		summary = append(summary, &MonthlyEmissions{Month: month, EmissionsKg: byMonth[month]})
	}
	return summary, nil
}
