package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paulokalleby/api-vendas/internal/cache"
	"github.com/paulokalleby/api-vendas/internal/config"
	"github.com/paulokalleby/api-vendas/internal/database"
	"github.com/paulokalleby/api-vendas/internal/handlers"
	"github.com/paulokalleby/api-vendas/internal/logger"
	"github.com/paulokalleby/api-vendas/internal/mail"
	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/permission"
	"github.com/paulokalleby/api-vendas/internal/repository"
	"github.com/paulokalleby/api-vendas/internal/services"
	"github.com/paulokalleby/api-vendas/internal/storage"
	"github.com/paulokalleby/api-vendas/internal/token"
)

func main() {
	// Missing .env is fine in production, where config comes from the
	// environment.
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, &cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	storageDriver, err := storage.NewDriver(&cfg.Storage)
	if err != nil {
		zl.Fatal("failed to initialize storage", zap.Error(err))
	}

	var mailer mail.Mailer
	if cfg.Mail.MailgunDomain != "" && cfg.Mail.MailgunAPIKey != "" {
		mailer = mail.NewMailgunMailer(cfg.Mail.MailgunDomain, cfg.Mail.MailgunAPIKey, cfg.Mail.FromAddress)
	} else {
		zl.Warn("mailgun not configured, mail will be logged only")
		mailer = mail.NewLogMailer(zl)
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Services
	tokenService := token.NewService(tokenRepo)
	resolver := permission.NewResolver(pool)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, tokenService, mailer, zl)
	orderService := services.NewOrderService(orderRepo, customerRepo, paymentRepo, productRepo)
	imageService := services.NewImageService(productRepo, storageDriver, zl)

	// Handlers
	authHandler := handlers.NewAuthHandler(tenantRepo, userRepo, tokenService, resetService)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	productHandler := handlers.NewProductHandler(productRepo, imageService)
	orderHandler := handlers.NewOrderHandler(orderRepo, orderService)
	roleHandler := handlers.NewRoleHandler(roleRepo)
	userHandler := handlers.NewUserHandler(userRepo)
	resourceHandler := handlers.NewResourceHandler(resourceRepo, redisClient, zl)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, redisClient, zl)

	router := setupRouter(cfg, zl,
		middleware.Auth(tokenService, userRepo, resolver),
		authHandler, customerHandler, categoryHandler, productHandler,
		orderHandler, roleHandler, userHandler, resourceHandler, paymentHandler,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zl.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}

func setupRouter(
	cfg *config.Config,
	zl *zap.Logger,
	auth gin.HandlerFunc,
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	categoryHandler *handlers.CategoryHandler,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	roleHandler *handlers.RoleHandler,
	userHandler *handlers.UserHandler,
	resourceHandler *handlers.ResourceHandler,
	paymentHandler *handlers.PaymentHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zl))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		router.Static("/uploads", cfg.Storage.UploadsPath)
	}

	// Public authentication routes
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/password/code", authHandler.ForgotPassword)
	router.POST("/auth/password/verify", authHandler.VerifyCode)
	router.POST("/auth/password/reset", authHandler.ResetPassword)

	// Routes every authenticated user can reach, no permission gate
	authed := router.Group("")
	authed.Use(auth)
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/profile", authHandler.UpdateProfile)
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/resources", resourceHandler.List)
		authed.GET("/payments", paymentHandler.List)
	}

	// Tenant CRUD, gated per resource by role permissions
	customers := router.Group("/customers", auth, middleware.RequirePermission("customers"))
	{
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.GetByID)
		customers.POST("", customerHandler.Create)
		customers.PUT("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
	}

	categories := router.Group("/categories", auth, middleware.RequirePermission("categories"))
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/:id", categoryHandler.GetByID)
		categories.POST("", categoryHandler.Create)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", categoryHandler.Delete)
	}

	products := router.Group("/products", auth, middleware.RequirePermission("products"))
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.GetByID)
		products.POST("", productHandler.Create)
		products.PUT("/:id", productHandler.Update)
		products.POST("/:id/image", productHandler.UploadImage)
		products.DELETE("/:id", productHandler.Delete)
	}

	orders := router.Group("/orders", auth, middleware.RequirePermission("orders"))
	{
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.GetByID)
		orders.POST("", orderHandler.Create)
		orders.PUT("/:id", orderHandler.Update)
		orders.DELETE("/:id", orderHandler.Delete)
	}

	roles := router.Group("/roles", auth, middleware.RequirePermission("roles"))
	{
		roles.GET("", roleHandler.List)
		roles.GET("/:id", roleHandler.GetByID)
		roles.POST("", roleHandler.Create)
		roles.PUT("/:id", roleHandler.Update)
		roles.DELETE("/:id", roleHandler.Delete)
	}

	users := router.Group("/users", auth, middleware.RequirePermission("users"))
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
		users.POST("", userHandler.Create)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	return router
}
