package main

import (
	"log"
	"net/http"
	"time"

	"github.com/bookhaven/bookhaven-api/config"
	"github.com/bookhaven/bookhaven-api/controllers"
	"github.com/bookhaven/bookhaven-api/middleware"
	"github.com/bookhaven/bookhaven-api/models"
	"github.com/bookhaven/bookhaven-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting BookHaven API server")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Order{},
		&models.Payment{},
		&models.WishlistEntry{},
		&models.Review{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed")

	// Cover image storage is optional; routes that need it report
	// STORAGE_UNAVAILABLE when no bucket is configured.
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			logger.Fatal("Failed to initialize S3", zap.Error(err))
		}
		services.InitImageService(s3Service)
		logger.Info("Cover image storage initialized", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		logger.Warn("AWS_S3_BUCKET not set, cover uploads disabled")
	}

	router := setupRouter(cfg, logger)

	addr := ":" + cfg.Port
	logger.Info("Server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// newLogger builds the process-wide zap logger for the environment.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// setupRouter builds the full application router.
func setupRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/books", controllers.ListBooks)
		v1.GET("/books/:id", controllers.GetBook)
		v1.GET("/books/:id/reviews", controllers.ListBookReviews)

		// Routes requiring a valid token only (profile provisioning)
		token := v1.Group("")
		token.Use(middleware.EnsureValidToken(cfg))
		{
			token.POST("/users", controllers.CreateUser)
		}

		// Routes requiring a resolved user record
		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg), middleware.ResolveUser())
		{
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)

			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders/my", controllers.ListMyOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.PATCH("/orders/:id/cancel", controllers.CancelOrder)
			authed.PATCH("/orders/:id/pay", controllers.MarkOrderPaid)

			authed.POST("/payments", controllers.CreatePayment)
			authed.GET("/payments/my", controllers.ListMyPayments)

			authed.GET("/wishlist", controllers.ListWishlist)
			authed.POST("/wishlist", controllers.AddToWishlist)
			authed.DELETE("/wishlist/:bookId", controllers.RemoveFromWishlist)

			authed.POST("/books/:id/reviews", controllers.UpsertReview)

			// Librarian routes; admins are always in the allowed set
			librarian := authed.Group("")
			librarian.Use(middleware.RequireRole(models.RoleLibrarian, models.RoleAdmin))
			{
				librarian.POST("/books", controllers.CreateBook)
				librarian.PUT("/books/:id", controllers.UpdateBook)
				librarian.PATCH("/books/:id/status", controllers.UpdateBookStatus)
				librarian.POST("/books/:id/cover", controllers.UploadBookCover)
				librarian.GET("/books/mine", controllers.ListMyBooks)
				librarian.GET("/orders", controllers.ListOrders)
				librarian.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			}

			// Admin-only routes
			admin := authed.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.DELETE("/books/:id", controllers.DeleteBook)
				admin.GET("/books/all", controllers.ListAllBooks)
				admin.GET("/users", controllers.ListUsers)
				admin.PUT("/users/:id/role", controllers.UpdateUserRole)
				admin.GET("/payments", controllers.ListPayments)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "BookHaven API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
