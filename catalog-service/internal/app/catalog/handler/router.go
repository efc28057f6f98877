package handler

import (
	"net/http"
	"time"

	"texnomart/catalog-service/internal/app/catalog/util"
	"texnomart/pkg/logger"
	"texnomart/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps - зависимости HTTP слоя
type RouterDeps struct {
	Catalog   *CatalogHandler
	Auth      *AuthHandler
	Policies  *AuthMiddleware
	PageCache util.PageCache // nil отключает кеш страниц
	PageTTL   time.Duration
}

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin.
// Аутентификация проверяется одним middleware по таблице политик.
func SetupRoutes(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Политики доступа по маршрутам
	router.Use(deps.Policies.Enforce())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cached := CachePage(deps.PageCache, deps.PageTTL)
	catalog := deps.Catalog

	// Категории
	router.GET("/categories/", cached, catalog.ListCategories)
	router.GET("/category/:slug/", catalog.GetCategory)
	router.POST("/category/add-category/", catalog.CreateCategory)
	router.PUT("/category/:slug/edit/", catalog.UpdateCategory)
	router.PATCH("/category/:slug/edit/", catalog.PatchCategory)
	router.DELETE("/category/:slug/delete/", catalog.DeleteCategory)

	// Товары
	router.GET("/", cached, catalog.ListProducts)
	router.GET("/product/:id", catalog.GetProduct)
	router.POST("/product/add-product/", catalog.CreateProduct)
	router.PUT("/product/:id/edit/", catalog.UpdateProduct)
	router.PATCH("/product/:id/edit/", catalog.PatchProduct)
	router.DELETE("/product/:id/delete/", catalog.DeleteProduct)
	router.GET("/product/:id/product-attributes/", catalog.GetProductAttributes)
	router.POST("/product/:id/like/", catalog.LikeProduct)
	router.DELETE("/product/:id/like/", catalog.UnlikeProduct)

	// Характеристики и отзывы
	router.GET("/attribute-keys/", catalog.ListAttributes)
	router.GET("/attribute-values/", catalog.ListAttributeValues)
	router.GET("/comments/", cached, catalog.ListComments)
	router.POST("/add-comment/", catalog.CreateComment)

	// Аутентификация
	auth := deps.Auth
	router.POST("/register/", auth.Register)
	router.POST("/login/", auth.Login)
	router.POST("/api-token-auth/", auth.Login)
	router.POST("/logout/", auth.Logout)
	router.POST("/api/token/", auth.ObtainTokenPair)
	router.POST("/api/token/refresh/", auth.RefreshToken)

	// REST ресурсы в стиле viewset поверх тех же handler
	viewset := router.Group("/modelviewset")
	{
		viewset.GET("/categories/", catalog.ListCategories)
		viewset.POST("/categories/", catalog.CreateCategory)
		viewset.GET("/categories/:slug/", catalog.GetCategory)
		viewset.PUT("/categories/:slug/", catalog.UpdateCategory)
		viewset.PATCH("/categories/:slug/", catalog.PatchCategory)
		viewset.DELETE("/categories/:slug/", catalog.DeleteCategory)

		viewset.GET("/products/", catalog.ListProducts)
		viewset.POST("/products/", catalog.CreateProduct)
		viewset.GET("/products/:id/", catalog.GetProduct)
		viewset.PUT("/products/:id/", catalog.UpdateProduct)
		viewset.PATCH("/products/:id/", catalog.PatchProduct)
		viewset.DELETE("/products/:id/", catalog.DeleteProduct)
	}

	return router
}
