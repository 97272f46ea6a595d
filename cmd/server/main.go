package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/config"
	"chat-eats-backend/internal/database"
	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
	"chat-eats-backend/internal/modules/catalog"
	"chat-eats-backend/internal/modules/identity"
	"chat-eats-backend/internal/modules/orders"
	"chat-eats-backend/internal/modules/promotion"
	"chat-eats-backend/internal/modules/shifts"
	"chat-eats-backend/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("could not load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("could not connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("could not run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("could not connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Event publishing is best-effort: without a broker the service still
	// serves orders, it just stops emitting events.
	var notifier messaging.Notifier = messaging.NopNotifier{}
	if cfg.AMQPURL != "" {
		conn, err := amqp091.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Warn("could not connect to rabbitmq, events disabled", slog.String("error", err.Error()))
		} else {
			publisher, err := messaging.NewPublisher(conn, logger)
			if err != nil {
				logger.Warn("could not set up publisher, events disabled", slog.String("error", err.Error()))
				conn.Close()
			} else {
				notifier = publisher
				defer publisher.Close()
			}
		}
	}

	identityRepo := identity.NewRepository(pool)
	identitySvc := identity.NewService(identityRepo)

	shiftRepo := shifts.NewRepository(pool)
	shiftSvc := shifts.NewService(shiftRepo, notifier, logger)

	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, identitySvc)

	orderRepo := orders.NewRepository(pool)
	orderSvc := orders.NewService(orderRepo, notifier, logger)

	promotionRepo := promotion.NewRepository(pool)
	promotionSvc := promotion.NewService(promotionRepo, identitySvc, shiftSvc, notifier, logger)

	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)
	sessionManager := session.NewManager(sessionStore, orderSvc)

	identityHandler := identity.NewHandler(identitySvc, cfg.JWTSecret, cfg.SessionTTL)
	shiftHandler := shifts.NewHandler(shiftSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	orderHandler := orders.NewHandler(orderSvc)
	promotionHandler := promotion.NewHandler(promotionSvc)
	sessionHandler := session.NewHandler(sessionManager)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status))
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	apiGroup := e.Group("/api")
	identityHandler.RegisterPublicRoutes(apiGroup)

	authed := apiGroup.Group("", api.Middleware(cfg.JWTSecret))
	identityHandler.RegisterRoutes(authed)
	catalogHandler.RegisterRoutes(authed)
	promotionHandler.RegisterRoutes(authed)

	clientGroup := authed.Group("", api.RequireRole(models.RoleClient, models.RoleAdmin))
	orderHandler.RegisterClientRoutes(clientGroup)
	sessionHandler.RegisterRoutes(clientGroup)

	ownerGroup := authed.Group("", api.RequireRole(models.RoleRestaurantOwner))
	catalogHandler.RegisterOwnerRoutes(ownerGroup)

	staffGroup := authed.Group("", api.RequireRole(models.RoleRestaurantOwner, models.RoleDeliveryGuy, models.RoleAdmin))
	orderHandler.RegisterStaffRoutes(staffGroup)

	courierGroup := authed.Group("", api.RequireRole(models.RoleDeliveryGuy))
	shiftHandler.RegisterRoutes(courierGroup)

	adminGroup := authed.Group("/admin", api.RequireRole(models.RoleAdmin))
	promotionHandler.RegisterAdminRoutes(adminGroup)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()
	logger.Info("server started", slog.String("port", cfg.ServerPort))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
