package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/database"
	"ecommerce-backend/internal/email"
	"ecommerce-backend/internal/handlers"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/routes"
	"ecommerce-backend/internal/services"
	"ecommerce-backend/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger: ", err)
	}
	defer logger.Sync()

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("mongodb disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal("index creation failed", zap.Error(err))
	}

	productRepo := repository.NewProductRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(client, db)
	userRepo := repository.NewUserRepository(db)
	methodRepo := repository.NewMethodRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenExpiry)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.SendGridKey != "" {
		sender = email.NewSendGridSender(cfg.SendGridKey, cfg.SenderName, cfg.SenderEmail, cfg.ExternalTimeout, logger)
	}

	var uploader upload.Uploader
	if cfg.CloudinaryURL != "" {
		uploader, err = upload.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.ExternalTimeout)
		if err != nil {
			logger.Fatal("cloudinary init failed", zap.Error(err))
		}
	}

	identity := auth.NewIdentityService(userRepo, hasher, tokens, sender, cfg.ConfirmBase, logger)
	cartService := services.NewCartService(cartRepo, productRepo, catalogRepo, logger)
	orderService := services.NewOrderService(orderRepo, orderRepo, cartRepo, productRepo, catalogRepo, methodRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:    handlers.NewAuthHandler(identity),
		Product: handlers.NewProductHandler(productRepo, catalogRepo, uploader, logger),
		Catalog: handlers.NewCatalogHandler(catalogRepo, methodRepo),
		Cart:    handlers.NewCartHandler(cartService),
		Order:   handlers.NewOrderHandler(orderService, logger),
	}, tokens)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
