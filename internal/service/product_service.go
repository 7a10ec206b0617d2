package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
)

// CreateProductRequest 创建产品请求
type CreateProductRequest struct {
	Name            string  `json:"name" binding:"required"`
	ProductType     string  `json:"product_type"`
	StorageCategory string  `json:"storage_category" binding:"required"`
	ShelfLifeDays   int     `json:"shelf_life_days" binding:"required"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
}

// UpdateProductRequest 更新产品请求
// 告警引用产品后仅数量和元数据可改,存储类别与保质期保持不变
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	ProductType *string  `json:"product_type"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
}

// ProductService 产品服务接口
type ProductService interface {
	Create(businessID string, req *CreateProductRequest) (*model.ProductModel, error)
	Get(businessID string, id string) (*model.ProductModel, error)
	List(businessID string) ([]*model.ProductModel, error)
	Update(businessID string, id string, req *UpdateProductRequest) (*model.ProductModel, error)
	Delete(businessID string, id string) error
}

// productService 产品服务实现
type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建产品服务
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Create 创建产品
func (s *productService) Create(businessID string, req *CreateProductRequest) (*model.ProductModel, error) {
	now := time.Now()
	product := &model.ProductModel{
		ID:              uuid.New().String(),
		BusinessID:      businessID,
		Name:            req.Name,
		ProductType:     req.ProductType,
		StorageCategory: req.StorageCategory,
		ShelfLifeDays:   req.ShelfLifeDays,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := s.productRepo.Save(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get 获取产品
func (s *productService) Get(businessID string, id string) (*model.ProductModel, error) {
	product, err := s.productRepo.FindByID(businessID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// List 列出企业产品
func (s *productService) List(businessID string) ([]*model.ProductModel, error) {
	return s.productRepo.FindByBusiness(businessID)
}

// Update 更新产品数量与元数据
func (s *productService) Update(businessID string, id string, req *UpdateProductRequest) (*model.ProductModel, error) {
	product, err := s.productRepo.FindByID(businessID, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.ProductType != nil {
		product.ProductType = *req.ProductType
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	product.UpdatedAt = time.Now()

	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := s.productRepo.Save(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除产品
func (s *productService) Delete(businessID string, id string) error {
	affected, err := s.productRepo.Delete(businessID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
