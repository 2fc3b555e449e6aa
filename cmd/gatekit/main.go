package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/api"
	"github.com/getgatekit/gatekit/auth"
	"github.com/getgatekit/gatekit/config"
	"github.com/getgatekit/gatekit/federation"
	"github.com/getgatekit/gatekit/gormstore"
	"github.com/getgatekit/gatekit/guard"
	"github.com/getgatekit/gatekit/health"
	"github.com/getgatekit/gatekit/link"
	"github.com/getgatekit/gatekit/logger"
	"github.com/getgatekit/gatekit/provider"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting Gatekit Access Service",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
	)

	repo, err := gormstore.NewStorage(cfg.DBType, cfg.DSN, nil)
	if err != nil {
		logger.Log.Fatal("failed to initialize storage", zap.Error(err))
	}
	if !cfg.SkipAutoMigrate {
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	links := link.NewManager(repo,
		link.WithAuditStore(repo),
		link.WithActorResolver(auth.ActorFromContext),
		link.WithLogger(logger.Log),
	)
	accounts := account.NewManager(repo, logger.Log)
	providers := provider.NewManager(repo, logger.Log)
	identities := federation.NewManager(repo, logger.Log)

	h := api.NewHandler(links, accounts, providers, identities, repo, logger.Log)

	// Health probes: liveness is unconditional, readiness pings the database.
	hm := health.NewManager(version)
	hm.Register(health.NewDatabaseChecker(cfg.DBType, func(ctx context.Context) error {
		sqlDB, err := repo.DB().DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	e.GET("/healthz", echo.WrapHandler(hm.LiveHandler()))
	e.GET("/ready", echo.WrapHandler(hm.ReadyHandler()))
	e.GET("/health", echo.WrapHandler(hm.FullHandler()))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMW := auth.NewMiddleware([]byte(cfg.JWTSecret), logger.Log)

	g := e.Group("/api/v1", authMW.Authenticate)
	h.RegisterRoutes(g)

	// Guarded roster routes: each configured entity table gets a
	// member-facing listing where the caller needs a link of their own on
	// the entity to see who else holds one.
	policies := guard.NewRegistry()
	gm := guard.NewMiddleware(links, policies, logger.Log)
	for _, table := range cfg.GuardedTables() {
		operation := table + ".links.view"
		policies.Declare(operation, guard.Policy{EntityTable: table, RequiredRole: "readonly"})

		grp := e.Group("/api/v1/"+table, authMW.Authenticate)
		grp.GET("/:entityId/links", h.HandleListEntityLinks(table), gm.Protect(operation))
	}

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
