package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/memberportal/planinfo/internal/config"
	"github.com/memberportal/planinfo/internal/domain/banners"
	"github.com/memberportal/planinfo/internal/domain/benefits"
	"github.com/memberportal/planinfo/internal/domain/claims"
	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/domain/planinfo"
	"github.com/memberportal/planinfo/internal/platform/auth"
	"github.com/memberportal/planinfo/internal/platform/cache"
	"github.com/memberportal/planinfo/internal/platform/db"
	"github.com/memberportal/planinfo/internal/platform/metrics"
	"github.com/memberportal/planinfo/internal/platform/middleware"
	"github.com/memberportal/planinfo/internal/platform/redis"
	"github.com/memberportal/planinfo/migrations"
)

const (
	version        = "0.1.0"
	devPlanID      = "dev-plan"
	requestTimeout = 15 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planinfo-server",
		Short: "Member portal plan information API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the plan information API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// migrationSource returns the embedded migrations unless dir overrides them.
func migrationSource(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if schema == "" {
				schema = cfg.DBSchema
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, schema, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationSource(dir))
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "", "Target schema for migrations (default DB_SCHEMA)")
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if schema == "" {
				schema = cfg.DBSchema
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, schema, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationSource(dir))
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "", "Target schema for migrations (default DB_SCHEMA)")
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV"))

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	// Booklet cache: Redis when configured, otherwise in-process
	var store cache.Store
	var deps []db.Dependency
	rdb, err := redis.New(ctx, cfg.RedisURL, redis.DefaultOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		store = cache.NewRedisStore(rdb.Client, "planinfo:")
		deps = append(deps, db.Dependency{Name: "redis", Ping: rdb.Health})
		logger.Info().Msg("booklet cache using redis")
	} else {
		mem := cache.NewMemoryStore()
		mem.StartCleanup(ctx, time.Minute)
		store = mem
		logger.Info().Msg("booklet cache using in-memory store")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(m.Middleware())

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(devPlanID))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
			Skipper:  auth.AuthSkipper,
		}))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.IngestBodyLimit))
	apiV1.Use(middleware.RequestTimeout(requestTimeout))
	apiV1.Use(middleware.RateLimit(ctx, middleware.DefaultRateLimitConfig()))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, deps...))
	e.GET("/metrics", m.Handler())

	// Coverage domain
	coverageSvc := coverage.NewService(
		coverage.NewMemberPlanRepoPG(pool),
		coverage.NewMemberCoverageRepoPG(pool),
		pool,
		logger,
	)
	coverage.NewHandler(coverageSvc).RegisterRoutes(apiV1)

	// Benefit booklets
	var fetcher benefits.BookletFetcher
	if cfg.BenefitBookletAPIURL != "" {
		fetcher = benefits.NewHTTPBookletFetcher(cfg.BenefitBookletAPIURL)
	} else {
		logger.Warn().Msg("BENEFIT_BOOKLET_API_URL not set, booklet refresh disabled")
	}
	window, err := benefits.NewRenewalWindow(cfg.RenewalWindowStart, cfg.RenewalWindowEnd)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid renewal window")
	}
	benefitsSvc := benefits.NewService(benefits.NewBookletRepoPG(pool), coverageSvc, fetcher, logger)
	benefitsSvc.SetTxBeginner(pool)
	benefitsSvc.SetRenewalWindow(window)
	benefitsSvc.SetHandbookBaseURL(cfg.MedicaidHandbookBaseURL)
	benefitsSvc.SetMetrics(m)
	benefitsSvc.SetCache(benefits.NewBookletCache(store, cfg.BookletCacheTTL, m, logger))
	benefits.NewHandler(benefitsSvc).RegisterRoutes(apiV1)

	// Claims
	claimsSvc := claims.NewService(claims.NewClaimRepoPG(pool), claims.NewEOBRepoPG(pool), logger)
	claimsSvc.SetLookbackMonths(cfg.ClaimsLookbackMonths)
	claimsSvc.SetPageSizes(cfg.ClaimsPageSizeFull, cfg.ClaimsPageSizeCompact)
	claimsSvc.SetMetrics(m)
	claimsSvc.SetTxBeginner(pool)
	claims.NewHandler(claimsSvc).RegisterRoutes(apiV1)

	// Banners
	rules, err := banners.NewRuleEngine()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create banner rule engine")
	}
	bannersSvc := banners.NewService(banners.NewBannerRepoPG(pool), rules, logger)
	bannersSvc.SetMetrics(m)
	banners.NewHandler(bannersSvc, coverageSvc).RegisterRoutes(apiV1)

	// Plan information page
	pageSvc := planinfo.NewService(coverageSvc, benefitsSvc, claimsSvc, bannersSvc, logger)
	planinfo.NewHandler(pageSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
