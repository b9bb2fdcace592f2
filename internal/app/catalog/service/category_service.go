package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/util"
	"kmarket/pkg/logger"
)

// maxCategoryDepth ограничивает глубину обхода дерева категорий
// Страхует от бесконечного цикла при поврежденных данных
const maxCategoryDepth = 32

// CategoryService обрабатывает бизнес-логику категорий
// Списки по уровням кешируются в Redis, запись инвалидирует кеш
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CatalogCache
	cacheTTL     time.Duration
}

// NewCategoryService создает новый сервис категорий с внедрением зависимостей
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CatalogCache,
	cacheTTL time.Duration,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

// List возвращает категории уровня через кеш (cache-aside)
// Сбои кеша логируются и не прерывают запрос: источник истины - PostgreSQL
func (s *CategoryService) List(ctx context.Context, level int) (*entity.CategoryListResult, error) {
	cached, err := s.cache.GetCategories(ctx, level)
	if err != nil {
		logger.Warn().Err(err).Int("level", level).Msg("failed to read categories cache")
	}
	if cached != nil {
		return &entity.CategoryListResult{Categories: cached, Total: len(cached)}, nil
	}

	categories, err := s.categoryRepo.ListByLevel(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []entity.Category{}
	}

	if err := s.cache.SetCategories(ctx, level, categories, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Int("level", level).Msg("failed to write categories cache")
	}

	return &entity.CategoryListResult{Categories: categories, Total: len(categories)}, nil
}

// Get получает категорию по ID, кеш не используется
func (s *CategoryService) Get(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Products возвращает страницу товаров категории
// includeSubcategories добавляет товары прямых подкатегорий
func (s *CategoryService) Products(ctx context.Context, categoryID int64, q *entity.CategoryProductsQuery) (*entity.ProductListResult, error) {
	if _, err := s.Get(ctx, categoryID); err != nil {
		return nil, err
	}

	categoryIDs := []int64{categoryID}
	if q.IncludeSubcategories {
		childIDs, err := s.categoryRepo.ListChildIDs(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to list subcategories: %w", err)
		}
		categoryIDs = append(categoryIDs, childIDs...)
	}

	productIDs, err := s.categoryRepo.ListProductIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}
	productIDs = uniqueIDs(productIDs)

	page := repository.PageWindow{Page: q.Page, PerPage: q.PerPage}
	result := &entity.ProductListResult{
		Total:   int64(len(productIDs)),
		Page:    &q.Page,
		PerPage: &q.PerPage,
		Data:    []entity.Product{},
	}
	if len(productIDs) == 0 {
		return result, nil
	}

	sort := repository.ParseSortSpec(q.Sort)
	products, err := s.productRepo.ListByIDs(ctx, productIDs, sort, page)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSort, q.Sort)
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	result.Data = products

	return result, nil
}

// uniqueIDs убирает повторы, сохраняя порядок
// Товар, привязанный и к категории и к её подкатегории, учитывается в total один раз
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// Create создает категорию, уровень выводится из родителя
func (s *CategoryService) Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	level := 1
	if req.ParentID != nil {
		parent, err := s.Get(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
	}

	category := &entity.Category{
		Name:      req.Name,
		Slug:      req.Slug,
		Level:     level,
		ParentID:  req.ParentID,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// Update обновляет категорию
// Смена родителя проверяется на цикл: узел не может стать потомком самого себя
func (s *CategoryService) Update(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Slug != "" {
		category.Slug = req.Slug
	}
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}
	if req.ParentID != nil {
		parent, err := s.checkParent(ctx, id, *req.ParentID)
		if err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
		category.Level = parent.Level + 1
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// checkParent проверяет нового родителя категории id
// Поднимается по цепочке предков: встретить id означает цикл,
// превысить maxCategoryDepth - поврежденное дерево, тоже отказ
func (s *CategoryService) checkParent(ctx context.Context, id, parentID int64) (*entity.Category, error) {
	if parentID == id {
		return nil, ErrCategoryCycle
	}

	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}

	cur := parent
	for depth := 0; cur.ParentID != nil; depth++ {
		if depth >= maxCategoryDepth {
			return nil, ErrCategoryCycle
		}
		if *cur.ParentID == id {
			return nil, ErrCategoryCycle
		}
		cur, err = s.Get(ctx, *cur.ParentID)
		if err != nil {
			return nil, err
		}
	}

	return parent, nil
}

// Delete удаляет категорию
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategories(ctx)

	return nil
}

// invalidateCategories сбрасывает кеш категорий после записи
// Сбой кеша не критичен: категория уже изменена в БД
func (s *CategoryService) invalidateCategories(ctx context.Context) {
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}
