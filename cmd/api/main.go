package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"invoicer/internal/cache"
	"invoicer/internal/clock"
	"invoicer/internal/database"
	"invoicer/internal/handler"
	"invoicer/internal/middleware"
	"invoicer/internal/repository"
	"invoicer/internal/service"
	"invoicer/internal/storage"
	"invoicer/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Invoicer API
// @version         1.0
// @description     Small-business invoicing API: invoices, reminders, bulk actions, dashboard and analytics.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	logger, err := zap.NewProduction()
	if gin.Mode() != gin.ReleaseMode {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer logger.Sync()

	dsn := "postgres://" + getenv("DB_USER", "postgres") +
		":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") +
		":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "invoicer") +
		"?sslmode=" + getenv("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	redisDB, _ := strconv.Atoi(getenv("REDIS_DB", "0"))
	rdb, err := cache.NewRedisClient(getenv("REDIS_ADDR", "localhost:6379"), os.Getenv("REDIS_PASSWORD"), redisDB)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("connected to Redis")

	fileStore, err := storage.NewMinioStore(context.Background(), storage.Config{
		Endpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    getenv("MINIO_BUCKET", "invoicer-attachments"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}, logger)
	if err != nil {
		logger.Fatal("object storage connection failed", zap.Error(err))
	}
	logger.Info("connected to object storage")

	// Set up WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	jwtSecret := middleware.GetJWTSecret()
	clk := clock.System()

	dashboardCache := cache.NewAggregateCache(rdb, "dashboard", 5*time.Minute, logger)
	analyticsCache := cache.NewAggregateCache(rdb, "analytics", 5*time.Minute, logger)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	userService := service.NewUserService(userRepo, jwtSecret, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo, txManager, fileStore, dashboardCache, analyticsCache, clk, logger)
	reminderService := service.NewReminderService(reminderRepo, invoiceRepo, txManager, clk, logger)
	bulkService := service.NewBulkService(invoiceRepo, reminderRepo, dashboardCache, analyticsCache, fileStore, clk, logger)
	dashboardService := service.NewDashboardService(invoiceRepo, dashboardCache, clk, logger)
	analyticsService := service.NewAnalyticsService(invoiceRepo, analyticsCache, clk, logger)

	userHandler := handler.NewUserHandler(userService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, bulkService, wsHub)
	reminderHandler := handler.NewReminderHandler(reminderService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, analyticsService)

	// Set up Gin router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{getenv("FRONTEND_ORIGIN", "http://localhost:5173")}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route (docs generated with `swag init -g cmd/api/main.go`)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, jwtSecret)
	})

	auth := middleware.RequireAuth(jwtSecret)
	userHandler.RegisterRoutes(router.Group(""), auth)
	invoiceHandler.RegisterRoutes(router.Group(""), auth)
	reminderHandler.RegisterRoutes(router.Group(""), auth)
	dashboardHandler.RegisterRoutes(router.Group(""), auth)

	port := getenv("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
