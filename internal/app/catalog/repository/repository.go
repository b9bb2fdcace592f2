package repository

import (
	"context"
	"errors"

	"kmarket/internal/app/catalog/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReviewNotFound   = errors.New("review not found")
)

// ProductRepository определяет методы для работы с товарами в PostgreSQL
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter, sort []SortField, page PageWindow) ([]entity.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, product *entity.Product, links []entity.ProductCategoryLink) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
	ListNewest(ctx context.Context, limit int) ([]entity.Product, error)
	ListMostReviewed(ctx context.Context, limit int) ([]entity.Product, error)
	ListByIDs(ctx context.Context, ids []int64, sort []SortField, page PageWindow) ([]entity.Product, error)
}

// CategoryRepository определяет методы для работы с деревом категорий
type CategoryRepository interface {
	ListByLevel(ctx context.Context, level int) ([]entity.Category, error)
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	ListChildIDs(ctx context.Context, parentID int64) ([]int64, error)
	ListProductIDs(ctx context.Context, categoryIDs []int64) ([]int64, error)
	ListFeatured(ctx context.Context, level, limit int) ([]entity.FeaturedCategory, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository определяет методы для работы с отзывами
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID int64, rating *int, sort []SortField, page PageWindow) ([]entity.Review, error)
	CountByProduct(ctx context.Context, productID int64, rating *int) (int64, error)
	Distribution(ctx context.Context, productID int64) ([]entity.RatingCount, error)
	GetByID(ctx context.Context, id int64) (*entity.Review, error)
	Create(ctx context.Context, review *entity.Review) error
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id int64) error
}
