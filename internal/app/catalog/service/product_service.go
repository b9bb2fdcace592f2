package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/util"
	"kmarket/pkg/logger"
	"kmarket/pkg/metrics"
)

// defaultProductSort применяется когда клиент не передал sort
const defaultProductSort = "created_at:desc"

// ProductService обрабатывает бизнес-логику товаров
// Координирует репозиторий, Kafka producer и инвалидацию кеша главной страницы
type ProductService struct {
	productRepo repository.ProductRepository
	cache       util.CatalogCache
	producer    util.MessagePublisher
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	cache util.CatalogCache,
	producer util.MessagePublisher,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
		producer:    producer,
	}
}

// List возвращает страницу товаров по фильтру вместе с total
// Count и выборка страницы выполняются конкурентно по одному и тому же фильтру
func (s *ProductService) List(ctx context.Context, q *entity.ListProductsQuery) (*entity.ProductListResult, error) {
	filter := repository.ProductFilter{
		Status:      q.Status,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		CategoryIDs: q.Category,
		SellerID:    q.Seller,
		BrandID:     q.Brand,
		Search:      q.Search,
	}
	// inStock=false означает отсутствие фильтра, а не "только отсутствующие"
	if q.InStock != nil && *q.InStock {
		filter.InStock = true
	}

	sortSpec := q.Sort
	if sortSpec == "" {
		sortSpec = defaultProductSort
	}
	sort := repository.ParseSortSpec(sortSpec)
	page := repository.NewPageWindow(q.Page, q.PerPage)

	var (
		products []entity.Product
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.productRepo.List(gctx, filter, sort, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.productRepo.Count(gctx, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSort, sortSpec)
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := &entity.ProductListResult{
		Total: total,
		Data:  products,
	}
	if page.Enabled() {
		result.Page = q.Page
		result.PerPage = q.PerPage
	}

	return result, nil
}

// Get получает товар со всеми связями для детальной карточки
func (s *ProductService) Get(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create создает товар со связями категорий и публикует событие
func (s *ProductService) Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	now := time.Now()
	product := &entity.Product{
		Name:             req.Name,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Status:           req.Status,
		SellerID:         req.SellerID,
		BrandID:          req.BrandID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.productRepo.Create(ctx, product, req.Categories); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	s.publishProductEvent(ctx, "PRODUCT_CREATED", product)
	s.invalidateMainPage(ctx)

	return product, nil
}

// Update обновляет переданные поля товара
// Ответ содержит только идентификацию и метку времени, не весь товар
func (s *ProductService) Update(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.ProductUpdateResult, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Slug != "" {
		product.Slug = req.Slug
	}
	if req.ShortDescription != "" {
		product.ShortDescription = req.ShortDescription
	}
	if req.FullDescription != "" {
		product.FullDescription = req.FullDescription
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_UPDATED", product)
	s.invalidateMainPage(ctx)

	return &entity.ProductUpdateResult{
		ID:        product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		UpdatedAt: product.UpdatedAt,
	}, nil
}

// Delete удаляет товар и публикует событие
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_DELETED", product)
	s.invalidateMainPage(ctx)

	return nil
}

// publishProductEvent отправляет событие в Kafka
// Сбой отправки логируется, но не прерывает запрос: товар уже изменен в БД
func (s *ProductService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Status:    string(product.Status),
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal product event")
		return
	}

	key := strconv.FormatInt(product.ID, 10)
	if err := s.producer.PublishMessage(ctx, key, data); err != nil {
		logger.Error().Err(err).
			Str("event_type", eventType).
			Int64("product_id", product.ID).
			Msg("failed to publish product event")
	}
}

// invalidateMainPage сбрасывает кеш главной страницы после изменения товаров
// Проблемы с кешем не критичны: страница пересоберется при следующем запросе
func (s *ProductService) invalidateMainPage(ctx context.Context) {
	if err := s.cache.InvalidateMainPage(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate main page cache")
	}
}
