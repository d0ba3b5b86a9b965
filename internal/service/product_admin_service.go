package service

import (
	"strings"

	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// ProductInput 商品创建/更新输入
type ProductInput struct {
	CategoryID  uint
	Slug        string
	Name        string
	Description string
	Price       models.Money
	SalePrice   *models.Money
	Images      []string
	InStock     *bool
	StockQty    *int
	Season      string
	IsFeatured  *bool
	IsNew       *bool
	Specs       models.JSON
	IsActive    *bool
	SortOrder   *int
}

// ProductAdminService 商品后台管理服务
type ProductAdminService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductAdminService 创建商品后台服务
func NewProductAdminService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductAdminService {
	return &ProductAdminService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List 后台商品列表（含下架商品）
func (s *ProductAdminService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = false
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// Get 后台商品详情
func (s *ProductAdminService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductAdminService) Create(input ProductInput) (*models.Product, error) {
	if err := s.validate(input, nil); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		Slug:        strings.TrimSpace(input.Slug),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Images:      input.Images,
		Season:      normalizeSeason(input.Season),
		Specs:       input.Specs,
		InStock:     true,
		IsActive:    true,
	}
	applyProductFlags(product, input)

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductAdminService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.validate(input, &id); err != nil {
		return nil, err
	}

	product.CategoryID = input.CategoryID
	product.Slug = strings.TrimSpace(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Specs != nil {
		product.Specs = input.Specs
	}
	product.Season = normalizeSeason(input.Season)
	applyProductFlags(product, input)

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品（软删除）
func (s *ProductAdminService) Delete(id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

// validate 校验商品输入：促销价必须低于原价，slug 不可重复
func (s *ProductAdminService) validate(input ProductInput, excludeID *uint) error {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" || strings.TrimSpace(input.Name) == "" {
		return ErrProductInputInvalid
	}
	if input.CategoryID != 0 {
		category, err := s.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return ErrProductInputInvalid
	}
	if input.SalePrice != nil && !input.SalePrice.LessThan(input.Price.Decimal) {
		return ErrSalePriceInvalid
	}
	count, err := s.productRepo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductSlugExists
	}
	return nil
}

func applyProductFlags(product *models.Product, input ProductInput) {
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.StockQty != nil {
		product.StockQty = *input.StockQty
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsNew != nil {
		product.IsNew = *input.IsNew
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}
}

func normalizeSeason(season string) string {
	switch strings.ToLower(strings.TrimSpace(season)) {
	case "summer":
		return "summer"
	case "winter":
		return "winter"
	default:
		return "all"
	}
}
