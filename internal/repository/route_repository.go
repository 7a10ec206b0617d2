package repository

import (
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"gorm.io/gorm"
)

// RouteRepository 配送路线仓储接口
type RouteRepository interface {
	Save(route *model.DeliveryRouteModel) error
	FindByID(businessID string, id string) (*model.DeliveryRouteModel, error)
	FindByBusiness(businessID string) ([]*model.DeliveryRouteModel, error)
}

// routeRepository 配送路线仓储实现
type routeRepository struct {
	db *gorm.DB
}

// NewRouteRepository 创建配送路线仓储
func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

// Save 保存路线
func (r *routeRepository) Save(route *model.DeliveryRouteModel) error {
	return r.db.Save(route).Error
}

// FindByID 根据 ID 查找路线(企业维度隔离)
func (r *routeRepository) FindByID(businessID string, id string) (*model.DeliveryRouteModel, error) {
	var route model.DeliveryRouteModel
	if err := r.db.Where("id = ? AND business_id = ?", id, businessID).First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// FindByBusiness 查找企业的所有路线
func (r *routeRepository) FindByBusiness(businessID string) ([]*model.DeliveryRouteModel, error) {
	var routes []*model.DeliveryRouteModel
	err := r.db.Where("business_id = ?", businessID).Order("created_at DESC").Find(&routes).Error
	return routes, err
}
