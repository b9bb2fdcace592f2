package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/service"
)

type CategoryServiceInterface interface {
	List(ctx context.Context, level int) (*entity.CategoryListResult, error)
	Get(ctx context.Context, id int64) (*entity.Category, error)
	Products(ctx context.Context, categoryID int64, q *entity.CategoryProductsQuery) (*entity.ProductListResult, error)
	Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	Update(ctx context.Context, id int64, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryHandler struct {
	categoryService CategoryServiceInterface
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	levelParam := c.DefaultQuery("level", "1")
	level, err := strconv.Atoi(levelParam)
	if err != nil || level < 1 {
		respondError(c, entity.CodeInvalidInput, "Invalid category level")
		return
	}

	result, err := h.categoryService.List(c.Request.Context(), level)
	if err != nil {
		respondInternal(c, err)
		return
	}

	respondSuccess(c, result, "Categories retrieved successfully")
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid category ID")
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, entity.CodeNotFound, "Category not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, category, "Category retrieved successfully")
}

func (h *CategoryHandler) ListCategoryProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid category ID")
		return
	}

	var q entity.CategoryProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid query parameters")
		return
	}

	// Явный пустой ?sort= обходит default-тег и равносилен отсутствию параметра
	if q.Sort != "" && !sortPattern.MatchString(q.Sort) {
		respondError(c, entity.CodeInvalidInput, "Invalid sort format, expected field:asc|desc")
		return
	}

	if err := h.validator.Struct(q); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	result, err := h.categoryService.Products(c.Request.Context(), id, &q)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, entity.CodeNotFound, "Category not found")
		case errors.Is(err, service.ErrInvalidSort):
			respondError(c, entity.CodeInvalidInput, "Unknown sort field")
		default:
			respondInternal(c, err)
		}
		return
	}

	respondSuccess(c, result, "Category products retrieved successfully")
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, entity.CodeNotFound, "Parent category not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondCreated(c, category, "Category created successfully")
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid category ID")
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, entity.CodeNotFound, "Category not found")
		case errors.Is(err, service.ErrCategoryCycle):
			respondError(c, entity.CodeInvalidInput, "Category cannot become a descendant of itself")
		default:
			respondInternal(c, err)
		}
		return
	}

	respondSuccess(c, category, "Category updated successfully")
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid category ID")
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, entity.CodeNotFound, "Category not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, nil, "Category deleted successfully")
}
