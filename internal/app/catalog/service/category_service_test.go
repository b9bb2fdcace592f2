package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/repository/mocks"
)

const testCacheTTL = time.Hour

func TestCategoryService_List_CacheHitSkipsRepository(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	cached := []entity.Category{{ID: 1, Name: "Electronics", Level: 1}}
	cache.On("GetCategories", ctx, 1).Return(cached, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	result, err := svc.List(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "Electronics", result.Categories[0].Name)

	categoryRepo.AssertNotCalled(t, "ListByLevel", mock.Anything, mock.Anything)
}

func TestCategoryService_List_CacheMissLoadsAndStores(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categories := []entity.Category{{ID: 1, Name: "Electronics", Level: 1}, {ID: 2, Name: "Books", Level: 1}}
	cache.On("GetCategories", ctx, 1).Return(nil, nil)
	categoryRepo.On("ListByLevel", ctx, 1).Return(categories, nil)
	cache.On("SetCategories", ctx, 1, categories, testCacheTTL).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	result, err := svc.List(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	cache.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestCategoryService_List_CacheFailureFallsBackToRepository(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	cache.On("GetCategories", ctx, 1).Return(nil, errors.New("redis down"))
	categoryRepo.On("ListByLevel", ctx, 1).Return([]entity.Category{{ID: 1}}, nil)
	cache.On("SetCategories", ctx, 1, mock.Anything, testCacheTTL).Return(errors.New("redis down"))

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	result, err := svc.List(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestCategoryService_Create_DerivesLevelFromParent(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	parentID := int64(1)
	categoryRepo.On("GetByID", ctx, parentID).Return(&entity.Category{ID: 1, Level: 2}, nil)
	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("InvalidateCategories", ctx).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	category, err := svc.Create(ctx, &entity.CreateCategoryRequest{Name: "Laptops", Slug: "laptops", ParentID: &parentID})

	require.NoError(t, err)
	assert.Equal(t, 3, category.Level)
}

func TestCategoryService_Create_RootLevelOne(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("InvalidateCategories", ctx).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	category, err := svc.Create(ctx, &entity.CreateCategoryRequest{Name: "Electronics", Slug: "electronics"})

	require.NoError(t, err)
	assert.Equal(t, 1, category.Level)
	assert.Nil(t, category.ParentID)
}

func TestCategoryService_Update_SelfParentRejected(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	self := int64(1)
	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	category, err := svc.Update(ctx, 1, &entity.UpdateCategoryRequest{ParentID: &self})

	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrCategoryCycle)
}

func TestCategoryService_Update_DescendantParentRejected(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	// 3 -> 2 -> 1: перенос 1 под 3 создал бы цикл
	one, two := int64(1), int64(2)
	newParent := int64(3)
	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)
	categoryRepo.On("GetByID", ctx, int64(3)).Return(&entity.Category{ID: 3, Level: 3, ParentID: &two}, nil)
	categoryRepo.On("GetByID", ctx, int64(2)).Return(&entity.Category{ID: 2, Level: 2, ParentID: &one}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	category, err := svc.Update(ctx, 1, &entity.UpdateCategoryRequest{ParentID: &newParent})

	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrCategoryCycle)
}

func TestCategoryService_Update_ReparentDerivesLevel(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	newParent := int64(2)
	categoryRepo.On("GetByID", ctx, int64(5)).Return(&entity.Category{ID: 5, Name: "Laptops", Level: 2}, nil)
	categoryRepo.On("GetByID", ctx, int64(2)).Return(&entity.Category{ID: 2, Level: 2}, nil)
	categoryRepo.On("Update", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("InvalidateCategories", ctx).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	category, err := svc.Update(ctx, 5, &entity.UpdateCategoryRequest{ParentID: &newParent})

	require.NoError(t, err)
	assert.Equal(t, 3, category.Level)
	require.NotNil(t, category.ParentID)
	assert.Equal(t, int64(2), *category.ParentID)
}

func TestCategoryService_Products_MergesSubcategories(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)
	categoryRepo.On("ListChildIDs", ctx, int64(1)).Return([]int64{2, 3}, nil)
	categoryRepo.On("ListProductIDs", ctx, []int64{1, 2, 3}).Return([]int64{10, 11}, nil)
	productRepo.On("ListByIDs", ctx, []int64{10, 11}, mock.Anything, repository.PageWindow{Page: 1, PerPage: 10}).
		Return([]entity.Product{{ID: 10}, {ID: 11}}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	q := &entity.CategoryProductsQuery{Page: 1, PerPage: 10, Sort: "created_at:desc", IncludeSubcategories: true}
	result, err := svc.Products(ctx, 1, q)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Data, 2)

	categoryRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestCategoryService_Products_DuplicateLinksCountedOnce(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	// Товар 10 привязан и к категории, и к её подкатегории
	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)
	categoryRepo.On("ListChildIDs", ctx, int64(1)).Return([]int64{2}, nil)
	categoryRepo.On("ListProductIDs", ctx, []int64{1, 2}).Return([]int64{10, 10, 11}, nil)
	productRepo.On("ListByIDs", ctx, []int64{10, 11}, mock.Anything, mock.Anything).
		Return([]entity.Product{{ID: 10}, {ID: 11}}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	q := &entity.CategoryProductsQuery{Page: 1, PerPage: 10, Sort: "created_at:desc", IncludeSubcategories: true}
	result, err := svc.Products(ctx, 1, q)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Data, 2)

	productRepo.AssertExpectations(t)
}

func TestCategoryService_Products_WithoutSubcategories(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)
	categoryRepo.On("ListProductIDs", ctx, []int64{1}).Return([]int64{10}, nil)
	productRepo.On("ListByIDs", ctx, []int64{10}, mock.Anything, mock.Anything).
		Return([]entity.Product{{ID: 10}}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	q := &entity.CategoryProductsQuery{Page: 1, PerPage: 10, Sort: "created_at:desc", IncludeSubcategories: false}
	result, err := svc.Products(ctx, 1, q)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	categoryRepo.AssertNotCalled(t, "ListChildIDs", mock.Anything, mock.Anything)
}

func TestCategoryService_Products_EmptyCategory(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categoryRepo.On("GetByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Level: 1}, nil)
	categoryRepo.On("ListChildIDs", ctx, int64(1)).Return([]int64{}, nil)
	categoryRepo.On("ListProductIDs", ctx, []int64{1}).Return([]int64{}, nil)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	q := &entity.CategoryProductsQuery{Page: 1, PerPage: 10, Sort: "created_at:desc", IncludeSubcategories: true}
	result, err := svc.Products(ctx, 1, q)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)

	productRepo.AssertNotCalled(t, "ListByIDs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_Products_CategoryMissing(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCatalogCache)

	categoryRepo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrCategoryNotFound)

	svc := NewCategoryService(categoryRepo, productRepo, cache, testCacheTTL)

	q := &entity.CategoryProductsQuery{Page: 1, PerPage: 10, Sort: "created_at:desc"}
	result, err := svc.Products(ctx, 404, q)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
