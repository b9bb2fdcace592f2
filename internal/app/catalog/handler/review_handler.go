package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/service"
)

type ReviewServiceInterface interface {
	ListByProduct(ctx context.Context, productID int64, q *entity.ListReviewsQuery) (*entity.ReviewPageResult, error)
	Create(ctx context.Context, productID int64, req *entity.CreateReviewRequest) (*entity.Review, error)
	Update(ctx context.Context, productID, reviewID int64, req *entity.UpdateReviewRequest) (*entity.Review, error)
	Delete(ctx context.Context, productID, reviewID int64) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}

	var q entity.ListReviewsQuery
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

	result, err := h.reviewService.ListByProduct(c.Request.Context(), productID, &q)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, entity.CodeNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidSort):
			respondError(c, entity.CodeInvalidInput, "Unknown sort field")
		default:
			respondInternal(c, err)
		}
		return
	}

	respondSuccess(c, result, "Reviews retrieved successfully")
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	// Оценка проверяется до обращения к сервису: rating вне 1..5 не доходит до БД
	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), productID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, entity.CodeNotFound, "Product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondCreated(c, review, "Review created successfully")
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid review ID")
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.CodeInvalidInput, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, entity.CodeInvalidInput, formatValidationError(err))
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), productID, reviewID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			respondError(c, entity.CodeNotFound, "Review not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, review, "Review updated successfully")
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid product ID")
		return
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		respondError(c, entity.CodeInvalidInput, "Invalid review ID")
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), productID, reviewID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			respondError(c, entity.CodeNotFound, "Review not found")
			return
		}
		respondInternal(c, err)
		return
	}

	respondSuccess(c, nil, "Review deleted successfully")
}
