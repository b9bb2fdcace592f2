package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/util"
	"kmarket/pkg/logger"
)

const (
	mainPageSectionLimit  = 10
	featuredCategoryLevel = 1
)

// MainService собирает выдачу главной страницы
// Три секции загружаются конкурентно и кешируются одним значением
type MainService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        util.CatalogCache
	cacheTTL     time.Duration
}

// NewMainService создает новый сервис главной страницы с внедрением зависимостей
func NewMainService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cache util.CatalogCache,
	cacheTTL time.Duration,
) *MainService {
	return &MainService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

// GetMain возвращает главную страницу через кеш (cache-aside)
func (s *MainService) GetMain(ctx context.Context) (*entity.MainPage, error) {
	cached, err := s.cache.GetMainPage(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read main page cache")
	}
	if cached != nil {
		return cached, nil
	}

	page, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetMainPage(ctx, page, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to write main page cache")
	}

	return page, nil
}

// Refresh пересобирает главную страницу и обновляет кеш
// Вызывается планировщиком для прогрева до истечения TTL
func (s *MainService) Refresh(ctx context.Context) error {
	page, err := s.build(ctx)
	if err != nil {
		return err
	}

	if err := s.cache.SetMainPage(ctx, page, s.cacheTTL); err != nil {
		return fmt.Errorf("failed to refresh main page cache: %w", err)
	}

	return nil
}

// build загружает три секции главной страницы конкурентно
func (s *MainService) build(ctx context.Context) (*entity.MainPage, error) {
	var (
		newest       []entity.Product
		mostReviewed []entity.Product
		featured     []entity.FeaturedCategory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newest, err = s.productRepo.ListNewest(gctx, mainPageSectionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		mostReviewed, err = s.productRepo.ListMostReviewed(gctx, mainPageSectionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		featured, err = s.categoryRepo.ListFeatured(gctx, featuredCategoryLevel, mainPageSectionLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build main page: %w", err)
	}

	if featured == nil {
		featured = []entity.FeaturedCategory{}
	}

	return &entity.MainPage{
		NewProducts:        buildProductCards(newest),
		PopularProducts:    buildProductCards(mostReviewed),
		FeaturedCategories: featured,
	}, nil
}

func buildProductCards(products []entity.Product) []entity.ProductCard {
	cards := make([]entity.ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, buildProductCard(&products[i]))
	}
	return cards
}

// buildProductCard проецирует товар в плоскую карточку главной страницы
// Цены nil у товара без строк цен, валюта по умолчанию KRW,
// рейтинг nil у товара без отзывов
func buildProductCard(p *entity.Product) entity.ProductCard {
	card := entity.ProductCard{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Currency:         "KRW",
		ReviewCount:      len(p.Reviews),
		InStock:          p.InStock(),
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
	}

	if price := p.CurrentPrice(); price != nil {
		base := price.BasePrice
		sale := price.SalePrice
		card.BasePrice = &base
		card.SalePrice = &sale
		if price.Currency != "" {
			card.Currency = price.Currency
		}
	}

	if len(p.Images) > 0 {
		card.PrimaryImage = &entity.ImageView{
			URL:     p.Images[0].URL,
			AltText: p.Images[0].AltText,
		}
	}

	if p.Brand != nil {
		card.Brand = &entity.PartyRef{ID: p.Brand.ID, Name: p.Brand.Name}
	}
	if p.Seller != nil {
		card.Seller = &entity.PartyRef{ID: p.Seller.ID, Name: p.Seller.Name}
	}

	if len(p.Reviews) > 0 {
		var sum int
		for _, review := range p.Reviews {
			sum += review.Rating
		}
		avg := round2(float64(sum) / float64(len(p.Reviews)))
		card.Rating = &avg
	}

	return card
}
