package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kmarket/internal/app/catalog/entity"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// pricesAscending загружает историю цен по возрастанию id,
// первая строка - действующая цена
func pricesAscending(db *gorm.DB) *gorm.DB {
	return db.Order("prices.id ASC")
}

// withListAssociations загружает связи для листинга и детальной карточки
func withListAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Prices", pricesAscending).
		Preload("Categories.Category").
		Preload("Seller").
		Preload("Brand").
		Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_groups.display_order ASC")
		}).
		Preload("OptionGroups.Options")
}

// withMainPageAssociations загружает связи для карточек главной страницы
func withMainPageAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Prices", pricesAscending).
		Preload("Images", "is_primary = ?", true).
		Preload("Brand").
		Preload("Seller").
		Preload("Reviews").
		Preload("OptionGroups.Options")
}

// List возвращает страницу товаров по фильтру с сортировкой
// Тот же фильтр передается в Count, чтобы total и страница были согласованы
func (r *productRepository) List(ctx context.Context, filter ProductFilter, sort []SortField, page PageWindow) ([]entity.Product, error) {
	order, err := ProductOrderClause(sort)
	if err != nil {
		return nil, err
	}

	q := filter.Apply(r.db.WithContext(ctx).Model(&entity.Product{}))
	if order != "" {
		q = q.Order(order)
	}
	q = withListAssociations(page.Apply(q))

	var products []entity.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// Count считает товары по фильтру без учета пагинации
func (r *productRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	var total int64
	q := filter.Apply(r.db.WithContext(ctx).Model(&entity.Product{}))
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// GetByID получает товар со всеми связями для детальной карточки
func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	q := withListAssociations(r.db.WithContext(ctx)).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_images.display_order ASC")
	})

	if err := q.First(&product, "products.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// Exists проверяет существование товара без загрузки связей
func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return count > 0, nil
}

// Create создает товар вместе со связями категорий в одной транзакции
func (r *productRepository) Create(ctx context.Context, product *entity.Product, links []entity.ProductCategoryLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories", "Prices", "OptionGroups", "Images", "Reviews", "Seller", "Brand").
			Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if len(links) == 0 {
			return nil
		}

		rows := make([]entity.ProductCategory, 0, len(links))
		for _, link := range links {
			rows = append(rows, entity.ProductCategory{
				ProductID:  product.ID,
				CategoryID: link.CategoryID,
				IsPrimary:  link.IsPrimary,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to link categories: %w", err)
		}

		return nil
	})
}

// Update обновляет поля товара
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":              product.Name,
			"slug":              product.Slug,
			"short_description": product.ShortDescription,
			"full_description":  product.FullDescription,
			"status":            product.Status,
			"updated_at":        product.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete жестко удаляет товар
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListNewest возвращает новейшие товары для главной страницы
func (r *productRepository) ListNewest(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	q := withMainPageAssociations(r.db.WithContext(ctx).Model(&entity.Product{})).
		Order("products.created_at DESC").
		Limit(limit)

	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list newest products: %w", err)
	}
	return products, nil
}

// ListMostReviewed возвращает товары по убыванию числа отзывов,
// при равенстве - новее выше
func (r *productRepository) ListMostReviewed(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	q := withMainPageAssociations(r.db.WithContext(ctx).Model(&entity.Product{})).
		Order("(SELECT COUNT(*) FROM reviews rv WHERE rv.product_id = products.id) DESC, products.created_at DESC").
		Limit(limit)

	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list most reviewed products: %w", err)
	}
	return products, nil
}

// ListByIDs возвращает товары по списку id с сортировкой и пагинацией
// Используется листингом товаров категории
func (r *productRepository) ListByIDs(ctx context.Context, ids []int64, sort []SortField, page PageWindow) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}

	order, err := ProductOrderClause(sort)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&entity.Product{}).Where("products.id IN ?", ids)
	if order != "" {
		q = q.Order(order)
	}
	q = page.Apply(q)

	var products []entity.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products by ids: %w", err)
	}
	return products, nil
}
