// Package bootstrap wires configuration, storage, services and HTTP handlers together
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/luct/reporting/internal/app/auth"
	appControllers "github.com/luct/reporting/internal/app/controllers"
	appMigrations "github.com/luct/reporting/internal/app/migrations"
	appRepos "github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/app/repositories/sqlite"
	appRoutes "github.com/luct/reporting/internal/app/routes"
	appServices "github.com/luct/reporting/internal/app/services"
	"github.com/luct/reporting/internal/config"
	"github.com/luct/reporting/internal/cron"
	"github.com/luct/reporting/internal/db"
	appMiddleware "github.com/luct/reporting/internal/middleware"
	pkgAuth "github.com/luct/reporting/internal/pkg/auth"
	"github.com/luct/reporting/internal/pkg/filestorage"
	"github.com/luct/reporting/internal/pkg/logger"
	"github.com/luct/reporting/internal/pkg/websocket"
	"github.com/luct/reporting/internal/seed"
)

// Storage is the opened repository set and the function releasing it
type Storage struct {
	Repos *appRepos.Repositories
	Close func() error
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Policy         *appAuth.AccessPolicy
	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	AuthService    *appServices.AuthService
	ReportService  *appServices.ReportService
	CatalogService *appServices.CatalogService
	SearchService  *appServices.SearchService
	ExportService  *appServices.ExportService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	// Scheduler is nil when no export schedule is configured
	Scheduler *cron.Scheduler
	Logger    zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(filepath.Join("configs", "config.yaml"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  level,
		Pretty: cfg.Logging.Pretty,
	})
	lgr.Info().Str("logLevel", string(level)).Bool("pretty", cfg.Logging.Pretty).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured database, applies the schema and seeds demo data when enabled.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	var storage *Storage

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		lgr.Info().Msg("Establishing database connection...")
		pool, err := db.NewPostgresPool(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}

		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(pool, logger.Component("migrations")).Up(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		storage = &Storage{
			Repos: appRepos.NewRepositories(pool),
			Close: func() error {
				pool.Close()
				return nil
			},
		}
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		storage = &Storage{Repos: store.NewRepositories(), Close: store.Close}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, storage.Repos, cfg.Seed.Password, logger.Component("seed")); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}
	return storage, nil
}

// BuildDependencies initializes the policy, services, realtime hub and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	deps.Policy = appAuth.NewAccessPolicy(repos.Catalog,
		appAuth.WithStrictAnnotationScope(cfg.Policy.StrictAnnotationScope))
	lgr.Info().Bool("strictAnnotationScope", deps.Policy.StrictAnnotationScope()).Msg("Access policy configured")

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.JWT.AccessTokenExpiration,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	deps.AuthService = appServices.NewAuthService(repos.Users, deps.JWTService, logger.Component("auth"))
	deps.ReportService = appServices.NewReportService(repos, deps.Policy, deps.Hub, logger.Component("reports"))
	deps.CatalogService = appServices.NewCatalogService(repos, deps.Policy, logger.Component("catalog"))
	deps.SearchService = appServices.NewSearchService(repos, deps.Policy, logger.Component("search"))

	var storage filestorage.FileStorage
	if cfg.Export.Directory != "" {
		local, err := filestorage.NewLocalStorage(cfg.Export.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize export storage: %w", err)
		}
		storage = local
	}
	deps.ExportService = appServices.NewExportService(deps.ReportService, deps.Policy, storage, cfg.Export.Keep, logger.Component("export"))

	if cfg.Export.Schedule != "" {
		scheduler, err := cron.NewScheduler(cfg.Export.Schedule, deps.ExportService, func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), appServices.SnapshotTimeout)
		}, logger.Component("cron"))
		if err != nil {
			return nil, fmt.Errorf("invalid export schedule %q: %w", cfg.Export.Schedule, err)
		}
		deps.Scheduler = scheduler
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		Reports: appControllers.NewReportController(deps.ReportService, logger.Component("reports")),
		Catalog: appControllers.NewCatalogController(deps.CatalogService, logger.Component("catalog")),
		Search:  appControllers.NewSearchController(deps.SearchService, logger.Component("search")),
		Export:  appControllers.NewExportController(deps.ExportService, logger.Component("export")),
		Events: websocket.NewHandler(deps.Hub, deps.Policy, appMiddleware.GetActor, logger.Component("websocket")).
			WithAllowedOrigins(cfg.Server.AllowedOrigins),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestID(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
