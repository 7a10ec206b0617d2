package repository

import (
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"gorm.io/gorm"
)

// ProductRepository 产品仓储接口
type ProductRepository interface {
	Save(product *model.ProductModel) error
	FindByID(businessID string, id string) (*model.ProductModel, error)
	FindByBusiness(businessID string) ([]*model.ProductModel, error)
	Delete(businessID string, id string) (int64, error)
}

// productRepository 产品仓储实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建产品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Save 保存产品
func (r *productRepository) Save(product *model.ProductModel) error {
	return r.db.Save(product).Error
}

// FindByID 根据 ID 查找产品(企业维度隔离)
func (r *productRepository) FindByID(businessID string, id string) (*model.ProductModel, error) {
	var product model.ProductModel
	if err := r.db.Where("id = ? AND business_id = ?", id, businessID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBusiness 查找企业的所有产品
func (r *productRepository) FindByBusiness(businessID string) ([]*model.ProductModel, error) {
	var products []*model.ProductModel
	err := r.db.Where("business_id = ?", businessID).Order("created_at DESC").Find(&products).Error
	return products, err
}

// Delete 删除产品,返回受影响行数
func (r *productRepository) Delete(businessID string, id string) (int64, error) {
	result := r.db.Where("id = ? AND business_id = ?", id, businessID).Delete(&model.ProductModel{})
	return result.RowsAffected, result.Error
}
