package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kmarket/internal/app/catalog/entity"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// ListByLevel получает категории заданного уровня вместе с детьми
func (r *categoryRepository) ListByLevel(ctx context.Context, level int) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).
		Where("level = ?", level).
		Preload("Children").
		Order("categories.id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListChildIDs возвращает id прямых потомков категории
func (r *categoryRepository) ListChildIDs(ctx context.Context, parentID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("parent_id = ?", parentID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list child categories: %w", err)
	}
	return ids, nil
}

// ListProductIDs возвращает id товаров, привязанных к любой из категорий
// Товар с привязками к нескольким категориям списка возвращается один раз
func (r *categoryRepository) ListProductIDs(ctx context.Context, categoryIDs []int64) ([]int64, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).Model(&entity.ProductCategory{}).
		Distinct().
		Where("category_id IN ?", categoryIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}
	return ids, nil
}

// ListFeatured возвращает категории уровня level по убыванию количества товаров
func (r *categoryRepository) ListFeatured(ctx context.Context, level, limit int) ([]entity.FeaturedCategory, error) {
	var categories []entity.FeaturedCategory
	err := r.db.WithContext(ctx).Model(&entity.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.image_url," +
			" (SELECT COUNT(*) FROM product_categories pc WHERE pc.category_id = categories.id) AS product_count").
		Where("categories.level = ?", level).
		Order("product_count DESC").
		Limit(limit).
		Scan(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list featured categories: %w", err)
	}
	return categories, nil
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Omit("Children").Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update обновляет категорию
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":      category.Name,
			"slug":      category.Slug,
			"level":     category.Level,
			"parent_id": category.ParentID,
			"image_url": category.ImageURL,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete удаляет категорию
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
