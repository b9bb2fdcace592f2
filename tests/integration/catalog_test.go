//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kmarket/internal/app/catalog/entity"
	"kmarket/internal/app/catalog/handler"
	"kmarket/internal/app/catalog/repository"
	"kmarket/internal/app/catalog/service"
	"kmarket/internal/app/catalog/util"
	"kmarket/pkg/logger"
)

// CatalogIntegrationTestSuite гоняет полный стек handler -> service -> repository
// Требует запущенные PostgreSQL и Redis (docker compose up postgres redis)
type CatalogIntegrationTestSuite struct {
	suite.Suite
	db          *gorm.DB
	redisClient *util.RedisClient
	router      *gin.Engine
}

func TestCatalogIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}

// mockKafkaProducer не отправляет реальные сообщения
type mockKafkaProducer struct{}

func (m *mockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (m *mockKafkaProducer) Close() error { return nil }

func (s *CatalogIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("catalog-test", "error", io.Discard)

	dsn := "host=localhost port=5433 user=postgres password=postgres dbname=catalog_test sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")
	s.db = db

	s.redisClient, err = util.NewRedisClient("localhost:6380", "", 15)
	require.NoError(s.T(), err, "Failed to connect to Redis")

	s.setupDatabase()

	productRepo := repository.NewProductRepository(s.db)
	categoryRepo := repository.NewCategoryRepository(s.db)
	reviewRepo := repository.NewReviewRepository(s.db)

	producer := &mockKafkaProducer{}

	productService := service.NewProductService(productRepo, s.redisClient, producer)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, s.redisClient, time.Hour)
	reviewService := service.NewReviewService(reviewRepo, productRepo, producer)
	mainService := service.NewMainService(productRepo, categoryRepo, s.redisClient, 5*time.Minute)

	s.router = handler.SetupRoutes(
		handler.NewProductHandler(productService),
		handler.NewCategoryHandler(categoryService),
		handler.NewReviewHandler(reviewService),
		handler.NewMainHandler(mainService),
	)
}

func (s *CatalogIntegrationTestSuite) setupDatabase() {
	err := s.db.AutoMigrate(
		&entity.Seller{},
		&entity.Brand{},
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
		&entity.ProductCategory{},
		&entity.Price{},
		&entity.OptionGroup{},
		&entity.Option{},
		&entity.ProductImage{},
		&entity.Review{},
	)
	require.NoError(s.T(), err, "Failed to migrate test database")
}

func (s *CatalogIntegrationTestSuite) SetupTest() {
	// Чистим данные и кеш перед каждым тестом
	for _, table := range []string{"reviews", "product_images", "options", "option_groups", "prices", "product_categories", "products", "categories", "users", "brands", "sellers"} {
		s.db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
	}
	s.Require().NoError(s.redisClient.InvalidateCategories(context.Background()))
	s.Require().NoError(s.redisClient.InvalidateMainPage(context.Background()))
}

func (s *CatalogIntegrationTestSuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
}

func (s *CatalogIntegrationTestSuite) seedProduct() int64 {
	s.db.Create(&entity.Seller{ID: 1, Name: "TechStore"})
	s.db.Create(&entity.Brand{ID: 1, Name: "KeyCo"})

	product := entity.Product{
		Name:             "Wireless Keyboard",
		Slug:             "wireless-keyboard",
		ShortDescription: "Compact keyboard",
		FullDescription:  "Compact wireless keyboard",
		Status:           entity.StatusActive,
		SellerID:         1,
		BrandID:          1,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	s.Require().NoError(s.db.Create(&product).Error)
	s.db.Create(&entity.Price{ProductID: product.ID, BasePrice: 50000, SalePrice: 45000, Currency: "KRW"})
	return product.ID
}

func (s *CatalogIntegrationTestSuite) TestProductLifecycle() {
	id := s.seedProduct()

	// Детальная карточка
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)

	var resp entity.SuccessResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Success)

	// Листинг без пагинации возвращает весь набор
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/products?status=ACTIVE", nil)
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)

	// Удаление, затем 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/products/%d", id), nil)
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CatalogIntegrationTestSuite) TestReviewSummaryAcrossRequests() {
	id := s.seedProduct()

	for _, rating := range []int{5, 5, 4, 3} {
		body, _ := json.Marshal(entity.CreateReviewRequest{
			Rating:  rating,
			Title:   "Review",
			Content: "Review body",
			UserID:  1,
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/products/%d/reviews", id), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	// Фильтр по оценке не влияет на сводку
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/products/%d/reviews?rating=5", id), nil)
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var envelope struct {
		Success bool                    `json:"success"`
		Data    entity.ReviewPageResult `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.Equal(int64(2), envelope.Data.Pagination.TotalItems)
	s.Equal(int64(4), envelope.Data.Summary.TotalCount)
	s.Require().NotNil(envelope.Data.Summary.AverageRating)
	s.Equal(4.25, *envelope.Data.Summary.AverageRating)
}

func (s *CatalogIntegrationTestSuite) TestCategoriesCachedBetweenRequests() {
	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Electronics", Slug: "electronics"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/categories", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code)

	// Первый запрос кладет уровень в кеш, второй читает из Redis
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest(http.MethodGet, "/categories?level=1", nil)
		s.router.ServeHTTP(w, req)
		s.Require().Equal(http.StatusOK, w.Code)
	}

	cached, err := s.redisClient.GetCategories(context.Background(), 1)
	s.Require().NoError(err)
	s.Len(cached, 1)
}

func (s *CatalogIntegrationTestSuite) TestMainPageEnvelope() {
	s.seedProduct()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/main", nil)
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var envelope struct {
		Success bool            `json:"success"`
		Data    entity.MainPage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	s.True(envelope.Success)
	s.Len(envelope.Data.NewProducts, 1)
}
