package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/printq/internal/app/controllers"
	appMigrations "github.com/yigit/printq/internal/app/migrations"
	"github.com/yigit/printq/internal/app/pricing"
	appRepos "github.com/yigit/printq/internal/app/repositories"
	appRoutes "github.com/yigit/printq/internal/app/routes"
	appServices "github.com/yigit/printq/internal/app/services"
	"github.com/yigit/printq/internal/config"
	"github.com/yigit/printq/internal/db"
	appMiddleware "github.com/yigit/printq/internal/middleware"
	pkgAuth "github.com/yigit/printq/internal/pkg/auth"
	"github.com/yigit/printq/internal/pkg/filestorage"
	"github.com/yigit/printq/internal/pkg/logger"
	"github.com/yigit/printq/internal/pkg/notify"
	"github.com/yigit/printq/internal/pkg/validation"
	"github.com/yigit/printq/internal/pkg/websocket"
	"github.com/yigit/printq/internal/scheduler"
	"github.com/yigit/printq/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store appRepos.Store

	AuthService        appServices.AuthService
	WalletService      appServices.WalletService
	PrinterService     appServices.PrinterService
	JobService         appServices.JobService
	UserService        appServices.UserService
	SettingsService    appServices.SettingsService
	MaintenanceService appServices.MaintenanceService

	AuthController        *appControllers.AuthController
	WalletController      *appControllers.WalletController
	JobController         *appControllers.JobController
	PrinterController     *appControllers.PrinterController
	UserController        *appControllers.UserController
	SettingsController    *appControllers.SettingsController
	MaintenanceController *appControllers.MaintenanceController

	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Pricing        *pricing.Provider
	Dispatcher     *notify.Dispatcher
	Hub            *websocket.Hub
	JobFeed        *websocket.Handler
	Scheduler      *scheduler.Scheduler
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr.With().Str("component", "migrator").Logger())

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return database, nil
}

// BuildDependencies initializes services, controllers and background workers on top of store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	if err := validation.RegisterGinRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	priceTable, err := cfg.PricingTable()
	if err != nil {
		return nil, err
	}
	minTopUp, maxTopUp, err := cfg.TopUpRange()
	if err != nil {
		return nil, err
	}
	lowBalance, err := cfg.LowBalanceThreshold()
	if err != nil {
		return nil, err
	}
	topUp := appServices.TopUpLimits{Min: minTopUp, Max: maxTopUp}
	deps.Pricing = pricing.NewProvider(priceTable)

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.MaxUploadBytes(), lgr.With().Str("component", "storage").Logger())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	sender, err := notify.NewSender(notify.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr.With().Str("component", "mailer").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification sender: %w", err)
	}
	deps.Dispatcher = notify.NewDispatcher(notify.Config{
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		SendTimeout: cfg.NotificationSendTimeout(),
	}, sender, lgr.With().Str("component", "notify").Logger())

	deps.Hub = websocket.NewHub(lgr)
	deps.JobFeed = websocket.NewHandler(deps.Hub, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Initialize services
	deps.AuthService = appServices.NewAuthService(store, deps.JWTService, deps.Dispatcher, cfg.Admin.RegistrationCode, lgr)
	deps.WalletService = appServices.NewWalletService(store, topUp, lgr)
	deps.PrinterService = appServices.NewPrinterService(store, lgr)
	deps.JobService = appServices.NewJobService(store, deps.Pricing, deps.FileStorage, deps.Dispatcher, deps.Hub, lgr)
	deps.UserService = appServices.NewUserService(store, lgr)
	deps.SettingsService = appServices.NewSettingsService(deps.Pricing, topUp, cfg.Server.MaxUploadMB, lgr)
	deps.MaintenanceService = appServices.NewMaintenanceService(store, deps.FileStorage, deps.Dispatcher, appServices.MaintenanceConfig{
		Retention:           time.Duration(cfg.Maintenance.RetentionDays) * 24 * time.Hour,
		SupplyThreshold:     cfg.Maintenance.SupplyThreshold,
		LowBalanceThreshold: lowBalance,
	}, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService, lgr)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.WalletController = appControllers.NewWalletController(deps.WalletService, lgr)
	deps.JobController = appControllers.NewJobController(deps.JobService, cfg.MaxUploadBytes(), lgr)
	deps.PrinterController = appControllers.NewPrinterController(deps.PrinterService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)
	deps.SettingsController = appControllers.NewSettingsController(deps.SettingsService, lgr)
	deps.MaintenanceController = appControllers.NewMaintenanceController(deps.MaintenanceService, lgr)

	deps.Scheduler = scheduler.New(lgr.With().Str("component", "scheduler").Logger())
	if err := registerTasks(cfg, deps); err != nil {
		return nil, err
	}

	return deps, nil
}

func registerTasks(cfg *config.Config, deps *Dependencies) error {
	tasks := []scheduler.Task{
		{
			Name:     "cleanup-completed-jobs",
			Schedule: cfg.Maintenance.CleanupSchedule,
			Timeout:  5 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := deps.MaintenanceService.CleanupStaleJobs(ctx)
				return err
			},
		},
		{
			Name:     "printer-health",
			Schedule: cfg.Maintenance.HealthSchedule,
			Run: func(ctx context.Context) error {
				_, err := deps.MaintenanceService.CheckPrinterHealth(ctx)
				return err
			},
		},
	}
	for _, task := range tasks {
		if err := deps.Scheduler.Add(task); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaults creates the default admin and printers. Failures are logged, not fatal.
func SeedDefaults(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	err := seed.CreateDefaultData(ctx, deps.Store, deps.PrinterService, seed.AdminAccount{
		Email:    cfg.Admin.DefaultEmail,
		Username: cfg.Admin.DefaultUsername,
		Password: cfg.Admin.DefaultPassword,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = 8 << 20

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.WalletController,
		deps.JobController,
		deps.PrinterController,
		deps.UserController,
		deps.SettingsController,
		deps.MaintenanceController,
		deps.JobFeed,
		deps.AuthMiddleware,
		cfg.MaxUploadBytes(),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
