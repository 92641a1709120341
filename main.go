package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/statustrack/backend/docs"
	"github.com/statustrack/backend/internal/client"
	"github.com/statustrack/backend/internal/config"
	"github.com/statustrack/backend/internal/db"
	"github.com/statustrack/backend/internal/handler"
	"github.com/statustrack/backend/internal/metrics"
	"github.com/statustrack/backend/internal/revocation"
	"github.com/statustrack/backend/internal/service"
)

// @title Status Tracker API
// @version 1.0
// @description REST API for authentication, user management, and status CRUD.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	database := &db.Postgres{Pool: pool}
	if err := database.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	// Session revocations live in Redis when an address is configured so
	// that logout survives restarts and is shared across replicas.
	var revoker service.TokenRevoker
	if cfg.Redis.Addr != "" {
		redisDB, _ := strconv.Atoi(cfg.Redis.DB)
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to ping redis", zap.Error(err))
		}
		defer rdb.Close()
		revoker = revocation.NewRedisSet(rdb)
		logger.Info("using redis revocation set", zap.String("addr", cfg.Redis.Addr))
	} else {
		revoker = revocation.NewMemorySet()
		logger.Info("using in-memory revocation set")
	}

	sessions, err := service.NewSessionManager(cfg.Auth, revoker)
	if err != nil {
		logger.Fatal("failed to build session manager", zap.Error(err))
	}

	identityTimeout, err := time.ParseDuration(cfg.Identity.Timeout)
	if err != nil {
		logger.Fatal("invalid identity timeout", zap.Error(err))
	}
	identity := client.NewIdentityClient(cfg.Identity.BaseURL, cfg.Identity.ServiceKey, identityTimeout, logger)

	authService, err := service.NewAuthService(database, sessions, identity, cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	evaluator := service.NewAccessEvaluator(database)
	userService := service.NewUserService(database, evaluator)
	statusService := service.NewStatusService(database, evaluator)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	statusHandler := handler.NewStatusHandler(statusService)

	loginRPS, err := strconv.ParseFloat(cfg.Auth.LoginRPS, 64)
	if err != nil {
		logger.Fatal("invalid login rate limit", zap.Error(err))
	}
	loginBurst, err := strconv.Atoi(cfg.Auth.LoginBurst)
	if err != nil {
		logger.Fatal("invalid login rate burst", zap.Error(err))
	}
	limiter := handler.NewRateLimiter(loginRPS, loginBurst)

	m := metrics.New()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.CORSMiddleware(strings.Split(cfg.CORS.AllowedOrigins, ",")))
	router.Use(m.Middleware())

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", m.Handler())

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", limiter.Middleware(), authHandler.Signup)
		auth.POST("/login", limiter.Middleware(), authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", handler.AuthMiddleware(sessions), authHandler.Logout)
	}

	users := router.Group("/api/users", handler.AuthMiddleware(sessions))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/me", userHandler.Me)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	statuses := router.Group("/api/statuses", handler.AuthMiddleware(sessions))
	{
		statuses.GET("", statusHandler.List)
		statuses.POST("", statusHandler.Create)
		statuses.GET("/:id", statusHandler.Get)
		statuses.PATCH("/:id", statusHandler.Update)
		statuses.DELETE("/:id", statusHandler.Delete)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr), zap.String("auth_provider", cfg.Auth.Provider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("server stopping")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}
