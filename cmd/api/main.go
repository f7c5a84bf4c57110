package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/flicky/greenmart/internal/catalog"
	"github.com/flicky/greenmart/internal/config"
	"github.com/flicky/greenmart/internal/events"
	"github.com/flicky/greenmart/internal/handler"
	"github.com/flicky/greenmart/internal/middleware"
	"github.com/flicky/greenmart/internal/repository"
	"github.com/flicky/greenmart/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	if cfg.DB.EnsureSchema {
		if err := repository.EnsureSchema(ctx, dbPool); err != nil {
			log.Error("ensure schema", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ is optional; without it orders are placed but not announced.
	var (
		amqpConn  *amqp.Connection
		publisher service.OrderPublisher
	)
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		if err := events.SetupRabbitMQ(amqpCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(amqpCh, log)
		log.Info("connected to RabbitMQ")
	} else {
		log.Warn("RABBITMQ_URL empty, order events disabled")
	}

	store := repository.NewStore(dbPool)

	// Services
	authSvc := service.NewAuthService(store.Users(), cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(store.Products(), store.Categories(), redisClient)
	categorySvc := service.NewCategoryService(store.Categories(), productSvc)
	cartSvc := service.NewCartService(store)
	wishlistSvc := service.NewWishlistService(store)
	orderSvc := service.NewOrderService(store, productSvc, publisher, service.InvoiceSettings{
		StoreName: cfg.Store.Name,
		TaxRate:   cfg.Store.TaxRate,
	}, log)
	adminSvc := service.NewAdminService(store, cfg.Store.LowStockThreshold)
	contactSvc := service.NewContactService(store.Contacts())

	if cfg.Admin.Email != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Error("ensure admin", "error", err)
			os.Exit(1)
		}
		log.Info("admin account ready", "email", cfg.Admin.Email, "created", created)
	}

	if cfg.Store.SeedCatalog {
		n, err := catalog.Seed(ctx, store)
		if err != nil {
			log.Error("seed catalog", "error", err)
			os.Exit(1)
		}
		log.Info("catalog seeded", "products", n)
	}

	// Sessions
	cookieStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	auth := middleware.NewAuth(cookieStore, cfg.Session.Name, authSvc, authSvc, log)

	// Handlers
	handlers := handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, auth, log),
		Product: handler.NewProductHandler(cfg.Store.Name, productSvc, categorySvc, log),
		Cart:    handler.NewCartHandler(cartSvc, wishlistSvc, log),
		Order:   handler.NewOrderHandler(orderSvc, log),
		Admin:   handler.NewAdminHandler(adminSvc, productSvc, log),
		Contact: handler.NewContactHandler(contactSvc, log),
		Health:  handler.NewHealthHandler(dbPool, redisClient, amqpConn),
	}

	if strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(log, auth, handlers, cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port, "store", cfg.Store.Name)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	cancel()
	log.Info("server stopped")
}

// newLogger writes JSON to stdout and, when LOG_FILE is set, also to a
// size-rotated file.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	log := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}
