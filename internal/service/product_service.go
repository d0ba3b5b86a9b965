package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/offline"
	"github.com/velo-shop/internal/repository"
)

// ProductListInput 商品列表查询输入
type ProductListInput struct {
	Page       int
	PageSize   int
	CategoryID string
	Season     string
	Search     string
	Featured   *bool
	New        *bool
	InStock    *bool
	PriceMin   string
	PriceMax   string
	Sort       string
}

// ProductListResult 商品列表查询结果
type ProductListResult struct {
	Products  []models.Product
	Total     int64
	FromCache bool // 来自边缘缓存（降级读）
}

// ProductService 商品服务：在线走主库，离线降级到边缘缓存快照
type ProductService struct {
	productRepo repository.ProductRepository
	store       *localstore.Store
	signal      ConnectivitySignal
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, store *localstore.Store, signal ConnectivitySignal) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		store:       store,
		signal:      signal,
	}
}

// List 商品列表，主库不可达时回退到缓存快照并在内存中过滤
func (s *ProductService) List(input ProductListInput) (*ProductListResult, error) {
	filter := repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		CategoryID:   input.CategoryID,
		Season:       input.Season,
		Search:       input.Search,
		Featured:     input.Featured,
		New:          input.New,
		InStock:      input.InStock,
		PriceMin:     input.PriceMin,
		PriceMax:     input.PriceMax,
		Sort:         input.Sort,
		OnlyActive:   true,
		WithCategory: true,
	}

	if s.signal == nil || s.signal.Online() {
		products, total, err := s.productRepo.List(filter)
		if err == nil {
			if s.signal != nil {
				s.signal.ReportSuccess()
			}
			return &ProductListResult{Products: products, Total: total}, nil
		}
		if !offline.IsNetError(err) {
			return nil, err
		}
		if s.signal != nil {
			s.signal.ReportFailure(err)
		}
		logger.Warnw("product_list_fallback_to_cache", "error", err)
	}

	return s.listFromCache(input)
}

// GetBySlug 商品详情，主库不可达时读缓存快照
func (s *ProductService) GetBySlug(slug string) (*models.Product, bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, false, ErrProductNotFound
	}

	if s.signal == nil || s.signal.Online() {
		product, err := s.productRepo.GetBySlug(slug, true)
		if err == nil {
			if s.signal != nil {
				s.signal.ReportSuccess()
			}
			if product == nil {
				return nil, false, ErrProductNotFound
			}
			return product, false, nil
		}
		if !offline.IsNetError(err) {
			return nil, false, err
		}
		if s.signal != nil {
			s.signal.ReportFailure(err)
		}
	}

	if s.store == nil {
		return nil, false, ErrOfflineUnavailable
	}
	product, err := s.store.CachedProductBySlug(slug)
	if err != nil {
		return nil, false, err
	}
	if product == nil {
		return nil, true, ErrProductNotFound
	}
	return product, true, nil
}

func (s *ProductService) listFromCache(input ProductListInput) (*ProductListResult, error) {
	if s.store == nil {
		return nil, ErrOfflineUnavailable
	}
	cached, err := s.store.CachedProducts()
	if err != nil {
		return nil, err
	}
	if len(cached) == 0 {
		return nil, ErrOfflineUnavailable
	}

	filtered := filterCachedProducts(cached, input)
	sortCachedProducts(filtered, input.Sort)
	total := int64(len(filtered))

	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(filtered) {
		filtered = nil
	} else {
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}
	return &ProductListResult{Products: filtered, Total: total, FromCache: true}, nil
}

func filterCachedProducts(products []models.Product, input ProductListInput) []models.Product {
	season := strings.TrimSpace(input.Season)
	search := strings.ToLower(strings.TrimSpace(input.Search))
	categoryID := strings.TrimSpace(input.CategoryID)

	out := make([]models.Product, 0, len(products))
	for _, product := range products {
		if !product.IsActive {
			continue
		}
		if categoryID != "" && categoryIDString(product.CategoryID) != categoryID {
			continue
		}
		if season != "" && season != "all" && product.Season != season && product.Season != "all" {
			continue
		}
		if input.Featured != nil && product.IsFeatured != *input.Featured {
			continue
		}
		if input.New != nil && product.IsNew != *input.New {
			continue
		}
		if input.InStock != nil && product.InStock != *input.InStock {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Name), search) &&
			!strings.Contains(strings.ToLower(product.Slug), search) {
			continue
		}
		if !matchPriceRange(product, input.PriceMin, input.PriceMax) {
			continue
		}
		out = append(out, product)
	}
	return out
}

func matchPriceRange(product models.Product, min, max string) bool {
	effective := product.EffectivePrice().Decimal
	if trimmed := strings.TrimSpace(min); trimmed != "" {
		if bound, err := decimal.NewFromString(trimmed); err == nil && effective.LessThan(bound) {
			return false
		}
	}
	if trimmed := strings.TrimSpace(max); trimmed != "" {
		if bound, err := decimal.NewFromString(trimmed); err == nil && effective.GreaterThan(bound) {
			return false
		}
	}
	return true
}

func sortCachedProducts(products []models.Product, sortKey string) {
	switch strings.ToLower(strings.TrimSpace(sortKey)) {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice().Decimal.LessThan(products[j].EffectivePrice().Decimal)
		})
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice().Decimal.GreaterThan(products[j].EffectivePrice().Decimal)
		})
	case "rating":
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].Rating != products[j].Rating {
				return products[i].Rating > products[j].Rating
			}
			return products[i].RatingCount > products[j].RatingCount
		})
	case "newest":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].SortOrder != products[j].SortOrder {
				return products[i].SortOrder > products[j].SortOrder
			}
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

func categoryIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// CatalogSnapshotSource 主库目录读取，供边缘缓存刷新使用
type CatalogSnapshotSource struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogSnapshotSource 创建目录数据来源
func NewCatalogSnapshotSource(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *CatalogSnapshotSource {
	return &CatalogSnapshotSource{productRepo: productRepo, categoryRepo: categoryRepo}
}

// ActiveProducts 全量上架商品
func (s *CatalogSnapshotSource) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.ListAllActive()
}

// Categories 全量分类
func (s *CatalogSnapshotSource) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List()
}
