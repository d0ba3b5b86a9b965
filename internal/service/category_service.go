package service

import (
	"strings"

	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/offline"
	"github.com/velo-shop/internal/repository"
)

// CategoryInput 分类创建/更新输入
type CategoryInput struct {
	Slug        string
	Name        string
	Icon        string
	Description string
	SortOrder   *int
}

// CategoryService 分类服务
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	store        *localstore.Store
	signal       ConnectivitySignal
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo repository.CategoryRepository, store *localstore.Store, signal ConnectivitySignal) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		store:        store,
		signal:       signal,
	}
}

// CategoryListResult 分类列表结果
type CategoryListResult struct {
	Categories []models.Category
	FromCache  bool
}

// List 分类列表（含在售商品数），主库不可达时读缓存快照
func (s *CategoryService) List() (*CategoryListResult, error) {
	if s.signal == nil || s.signal.Online() {
		categories, err := s.categoryRepo.List()
		if err == nil {
			if s.signal != nil {
				s.signal.ReportSuccess()
			}
			for i := range categories {
				count, err := s.categoryRepo.CountProducts(categories[i].ID)
				if err != nil {
					return nil, err
				}
				categories[i].ProductCount = count
			}
			return &CategoryListResult{Categories: categories}, nil
		}
		if !offline.IsNetError(err) {
			return nil, err
		}
		if s.signal != nil {
			s.signal.ReportFailure(err)
		}
	}

	if s.store == nil {
		return nil, ErrOfflineUnavailable
	}
	cached, err := s.store.CachedCategories()
	if err != nil {
		return nil, err
	}
	if len(cached) == 0 {
		return nil, ErrOfflineUnavailable
	}
	return &CategoryListResult{Categories: cached, FromCache: true}, nil
}

// GetBySlug 分类详情
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	if err := s.validate(input, nil); err != nil {
		return nil, err
	}
	category := &models.Category{
		Slug:        strings.TrimSpace(input.Slug),
		Name:        strings.TrimSpace(input.Name),
		Icon:        input.Icon,
		Description: input.Description,
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if err := s.validate(input, &id); err != nil {
		return nil, err
	}
	category.Slug = strings.TrimSpace(input.Slug)
	category.Name = strings.TrimSpace(input.Name)
	category.Icon = input.Icon
	category.Description = input.Description
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类：仍有商品挂载时拒绝
func (s *CategoryService) Delete(id uint) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}
	return s.categoryRepo.Delete(id)
}

func (s *CategoryService) validate(input CategoryInput, excludeID *uint) error {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" || strings.TrimSpace(input.Name) == "" {
		return ErrCategoryInputInvalid
	}
	count, err := s.categoryRepo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategorySlugExists
	}
	return nil
}
