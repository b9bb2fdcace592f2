package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/service"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, level int) (*entity.CategoryListResult, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CategoryListResult), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, id int64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) Products(ctx context.Context, categoryID int64, q *entity.CategoryProductsQuery) (*entity.ProductListResult, error) {
	args := m.Called(ctx, categoryID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductListResult), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupCategoryRouter(svc CategoryServiceInterface) *gin.Engine {
	router := gin.New()
	h := NewCategoryHandler(svc)
	router.GET("/categories", h.ListCategories)
	router.GET("/categories/:id", h.GetCategory)
	router.GET("/categories/:id/products", h.ListCategoryProducts)
	router.POST("/categories", h.CreateCategory)
	router.PATCH("/categories/:id", h.UpdateCategory)
	router.DELETE("/categories/:id", h.DeleteCategory)
	return router
}

func TestListCategories_DefaultLevel(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("List", mock.Anything, 1).
		Return(&entity.CategoryListResult{Categories: []entity.Category{{ID: 1, Name: "Electronics"}}, Total: 1}, nil)
	router := setupCategoryRouter(mockService)

	req, _ := http.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestListCategories_BadLevelRejected(t *testing.T) {
	mockService := new(MockCategoryService)
	router := setupCategoryRouter(mockService)

	req, _ := http.NewRequest(http.MethodGet, "/categories?level=zero", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUpdateCategory_CycleRejected(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("Update", mock.Anything, int64(1), mock.Anything).Return(nil, service.ErrCategoryCycle)
	router := setupCategoryRouter(mockService)

	parentID := int64(3)
	body, _ := json.Marshal(entity.UpdateCategoryRequest{ParentID: &parentID})
	req, _ := http.NewRequest(http.MethodPatch, "/categories/1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w.Body)
	assert.Equal(t, entity.CodeInvalidInput, resp.Error.Code)
}

func TestListCategoryProducts_CategoryMissing(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("Products", mock.Anything, int64(404), mock.Anything).Return(nil, service.ErrCategoryNotFound)
	router := setupCategoryRouter(mockService)

	req, _ := http.NewRequest(http.MethodGet, "/categories/404/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategoryProducts_DefaultsApplied(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("Products", mock.Anything, int64(1), mock.MatchedBy(func(q *entity.CategoryProductsQuery) bool {
		return q.Page == 1 && q.PerPage == 10 && q.IncludeSubcategories
	})).Return(&entity.ProductListResult{Data: []entity.Product{}}, nil)
	router := setupCategoryRouter(mockService)

	req, _ := http.NewRequest(http.MethodGet, "/categories/1/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestListCategoryProducts_EmptySortTreatedAsAbsent(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("Products", mock.Anything, int64(1), mock.MatchedBy(func(q *entity.CategoryProductsQuery) bool {
		return q.Sort == ""
	})).Return(&entity.ProductListResult{Data: []entity.Product{}}, nil)
	router := setupCategoryRouter(mockService)

	req, _ := http.NewRequest(http.MethodGet, "/categories/1/products?sort=", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateCategory_ParentMissing(t *testing.T) {
	mockService := new(MockCategoryService)
	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrCategoryNotFound)
	router := setupCategoryRouter(mockService)

	parentID := int64(404)
	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Laptops", Slug: "laptops", ParentID: &parentID})
	req, _ := http.NewRequest(http.MethodPost, "/categories", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
