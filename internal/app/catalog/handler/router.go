package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kmarket/pkg/logger"
	"kmarket/pkg/metrics"
)

func SetupRoutes(
	productHandler *ProductHandler,
	categoryHandler *CategoryHandler,
	reviewHandler *ReviewHandler,
	mainHandler *MainHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/main", mainHandler.GetMain)

	products := router.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.POST("", productHandler.CreateProduct)
		products.GET("/:id", productHandler.GetProduct)
		// Обновление принимает PUT и PATCH, семантика одинаковая: частичное обновление
		products.PUT("/:id", productHandler.UpdateProduct)
		products.PATCH("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)

		products.GET("/:id/reviews", reviewHandler.ListReviews)
		products.POST("/:id/reviews", reviewHandler.CreateReview)
		products.PUT("/:id/reviews/:review_id", reviewHandler.UpdateReview)
		products.PATCH("/:id/reviews/:review_id", reviewHandler.UpdateReview)
		products.DELETE("/:id/reviews/:review_id", reviewHandler.DeleteReview)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", categoryHandler.ListCategories)
		categories.POST("", categoryHandler.CreateCategory)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.PATCH("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)

		categories.GET("/:id/products", categoryHandler.ListCategoryProducts)
	}

	return router
}
