package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kmarket/internal/app/catalog/entity"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func scopeByProduct(productID int64, rating *int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("reviews.product_id = ?", productID)
		if rating != nil {
			db = db.Where("reviews.rating = ?", *rating)
		}
		return db
	}
}

// ListByProduct получает страницу отзывов товара с автором
// rating nil - без фильтра по оценке
func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64, rating *int, sort []SortField, page PageWindow) ([]entity.Review, error) {
	order, err := ReviewOrderClause(sort)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&entity.Review{}).
		Scopes(scopeByProduct(productID, rating)).
		Preload("User")
	if order != "" {
		q = q.Order(order)
	}
	q = page.Apply(q)

	var reviews []entity.Review
	if err := q.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// CountByProduct считает отзывы товара с учетом фильтра по оценке
func (r *reviewRepository) CountByProduct(ctx context.Context, productID int64, rating *int) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Scopes(scopeByProduct(productID, rating)).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return total, nil
}

// Distribution возвращает количество отзывов по каждой оценке товара
// Фильтр по оценке сюда не передается: распределение описывает товар целиком.
// Оценки без отзывов в выдаче отсутствуют, нули добавляет service layer
func (r *reviewRepository) Distribution(ctx context.Context, productID int64) ([]entity.RatingCount, error) {
	var rows []entity.RatingCount
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Select("reviews.rating, COUNT(*) AS count").
		Where("reviews.product_id = ?", productID).
		Group("reviews.rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rating distribution: %w", err)
	}
	return rows, nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// Create создает новый отзыв
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Update обновляет изменяемые поля отзыва
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	result := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating":     review.Rating,
			"title":      review.Title,
			"content":    review.Content,
			"user_id":    review.UserID,
			"updated_at": review.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete жестко удаляет отзыв, tombstone не остается
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Review{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
