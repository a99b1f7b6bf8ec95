// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kanistore/storefront/internal/config"
	"github.com/kanistore/storefront/internal/handlers"
	"github.com/kanistore/storefront/internal/i18n"
	"github.com/kanistore/storefront/internal/middleware"
	"github.com/kanistore/storefront/internal/services"
	"github.com/kanistore/storefront/internal/utils"
)

// Services are the application services the HTTP surface exposes.
type Services struct {
	Catalog *services.CatalogService
	Auth    *services.AuthService
	Users   *services.UserService
}

// Router is the gin engine plus the background resources it owns.
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the rate limiter cleanup goroutines.
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
}

func Initialize(cfg *config.Config, svc Services) *Router {
	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg.JWT)
	userHandler := handlers.NewUserHandler(svc.Users)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	authLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute(cfg.RateLimit.AuthPerMinute))), perMinute(cfg.RateLimit.AuthPerMinute))

	authLimit := authLimiter.Middleware()

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimiter.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   "1.0.0",
			"languages": i18n.GetSupportedLanguages(),
		})
	})

	api := r.Group("/api")
	{
		// Catalog routes
		api.GET("/Category", catalogHandler.ListCategories)
		api.GET("/category/:categoryName/subcategories", catalogHandler.ListSubcategories)
		api.GET("/subcategories/:subcategoryId/products", catalogHandler.ListProducts)
		api.GET("/product-details/:productId", catalogHandler.GetProduct)
		api.GET("/related/:subcategoryId", catalogHandler.GetRelatedProducts)
		api.GET("/search", catalogHandler.SearchProducts)

		// Authentication routes
		api.POST("/signup", authLimit, authHandler.Signup)
		api.POST("/signin", authLimit, authHandler.Signin)
		api.GET("/userLogout", authHandler.Logout)

		// User routes
		user := api.Group("")
		user.Use(middleware.AuthToken(cfg.JWT.CookieName))
		{
			user.GET("/user-details", userHandler.GetUserDetails)
			user.PUT("/update-user", userHandler.UpdateUser)
		}
	}

	// 404 handler
	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, utils.CodeNotFound, "Route not found", nil)
	})

	return &Router{
		Engine:   r,
		limiters: []*middleware.RateLimiter{generalLimiter, authLimiter},
	}
}

func perMinute(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
