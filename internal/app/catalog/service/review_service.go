package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/util"
	"kmarket/pkg/logger"
	"kmarket/pkg/metrics"
)

// ReviewService обрабатывает бизнес-логику отзывов
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	producer    util.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	producer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		producer:    producer,
	}
}

// ListByProduct возвращает страницу отзывов товара со сводкой
// Пагинация считается по отфильтрованной выборке (rating),
// сводка всегда по всем отзывам товара - фильтр на нее не влияет
func (s *ReviewService) ListByProduct(ctx context.Context, productID int64, q *entity.ListReviewsQuery) (*entity.ReviewPageResult, error) {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	sort := repository.ParseSortSpec(q.Sort)
	page := repository.PageWindow{Page: q.Page, PerPage: q.PerPage}

	var (
		reviews      []entity.Review
		totalItems   int64
		distribution []entity.RatingCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = s.reviewRepo.ListByProduct(gctx, productID, q.Rating, sort, page)
		return err
	})
	g.Go(func() error {
		var err error
		totalItems, err = s.reviewRepo.CountByProduct(gctx, productID, q.Rating)
		return err
	})
	g.Go(func() error {
		var err error
		distribution, err = s.reviewRepo.Distribution(gctx, productID)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSort, q.Sort)
		}
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return &entity.ReviewPageResult{
		Items:   reviews,
		Summary: buildReviewSummary(distribution),
		Pagination: entity.PageMeta{
			TotalItems:  totalItems,
			TotalPages:  totalPages(totalItems, q.PerPage),
			CurrentPage: q.Page,
			PerPage:     q.PerPage,
		},
	}, nil
}

// buildReviewSummary строит сводку из сырого распределения оценок
// Корзины без отзывов заполняются нулями, порядок всегда 5 -> 1.
// Средняя оценка - взвешенное среднее с округлением до 2 знаков,
// nil когда отзывов нет
func buildReviewSummary(rows []entity.RatingCount) entity.ReviewSummary {
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}

	distribution := make(entity.RatingDistribution, 0, 5)
	var totalCount, weightedSum int64
	for rating := 5; rating >= 1; rating-- {
		count := counts[rating]
		distribution = append(distribution, entity.RatingCount{Rating: rating, Count: count})
		totalCount += count
		weightedSum += int64(rating) * count
	}

	summary := entity.ReviewSummary{
		TotalCount:   totalCount,
		Distribution: distribution,
	}
	if totalCount > 0 {
		avg := round2(float64(weightedSum) / float64(totalCount))
		summary.AverageRating = &avg
	}

	return summary
}

func totalPages(totalItems int64, perPage int) int64 {
	if perPage <= 0 {
		return 0
	}
	return (totalItems + int64(perPage) - 1) / int64(perPage)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Create создает отзыв на существующий товар и публикует событие
func (s *ReviewService) Create(ctx context.Context, productID int64, req *entity.CreateReviewRequest) (*entity.Review, error) {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	now := time.Now()
	review := &entity.Review{
		ProductID:        productID,
		UserID:           &req.UserID,
		Rating:           req.Rating,
		Title:            req.Title,
		Content:          req.Content,
		VerifiedPurchase: req.VerifiedPurchase,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	s.publishReviewEvent(ctx, review)

	return review, nil
}

// Update обновляет отзыв; отзыв чужого товара считается отсутствующим
func (s *ReviewService) Update(ctx context.Context, productID, reviewID int64, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.ProductID != productID {
		return nil, ErrReviewNotFound
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Content != "" {
		review.Content = req.Content
	}
	if req.UserID != nil {
		review.UserID = req.UserID
	}
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return review, nil
}

// Delete удаляет отзыв товара
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to load review: %w", err)
	}
	if review.ProductID != productID {
		return ErrReviewNotFound
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// publishReviewEvent отправляет событие создания отзыва в Kafka
// Сбой логируется, но не прерывает запрос
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	key := strconv.FormatInt(review.ProductID, 10)
	if err := s.producer.PublishMessage(ctx, key, data); err != nil {
		logger.Error().Err(err).
			Int64("review_id", review.ID).
			Int64("product_id", review.ProductID).
			Msg("failed to publish review event")
	}
}
