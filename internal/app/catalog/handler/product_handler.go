package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/service"
)

type ProductServiceInterface interface {
	List(ctx context.Context, q *entity.ListProductsQuery) (*entity.ProductListResult, error)
	Get(ctx context.Context, id int64) (*entity.Product, error)
	Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	Update(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.ProductUpdateResult, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	productService ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// parseCategoryParam собирает фильтр категорий из query
// Принимаются обе формы: category=1,2 и category=1&category=2
func parseCategoryParam(c *gin.Context) ([]int64, error) {
	var ids []int64
	for _, raw := range c.QueryArray("category") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id < 1 {
				return nil, errors.New("invalid category id: " + part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var q entity.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid query parameters")
		return
	}

	categoryIDs, err := parseCategoryParam(c)
	if err != nil {
		respondError(c, entity.CodeInvalidInput, err.Error())
		return
	}
	q.Category = categoryIDs

	if q.Sort != "" && !sortPattern.MatchString(q.Sort) {
		respondError(c, entity.CodeInvalidInput, "Invalid sort format, expected field:asc|desc")
		return
	}

	if err := h.validator.Struct(q); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	if q.MinPrice != nil && q.MaxPrice != nil && *q.MaxPrice < *q.MinPrice {
		respondError(c, entity.CodeInvalidInput, "maxPrice must be greater than or equal to minPrice")
		return
	}

	result, err := h.productService.List(c.Request.Context(), &q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSort) {
			respondError(c, entity.CodeInvalidInput, "Unknown sort field")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, result, "Products retrieved successfully")
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, entity.CodeNotFound, "Product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, product, "Product retrieved successfully")
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondInternal(c, err)
		return
	}

	respondCreated(c, product, "Product created successfully")
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	result, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, entity.CodeNotFound, "Product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, result, "Product updated successfully")
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, entity.CodeNotFound, "Product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, nil, "Product deleted successfully")
}
