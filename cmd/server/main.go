package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	financeapp "github.com/erp/backoffice/internal/application/finance"
	identityapp "github.com/erp/backoffice/internal/application/identity"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	reportapp "github.com/erp/backoffice/internal/application/report"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/erp/backoffice/migrations"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/erp/backoffice/docs"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//go:generate swag init -g cmd/server/main.go -o docs --parseDependency --parseInternal -d ../../

//	@title			Back Office API
//	@version		1.0
//	@description	Purchasing, FIFO inventory, sales and expenses for a small business

//	@contact.name	API Support
//	@contact.email	support@backoffice.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	var logOpts []logger.Option
	var logProvider *telemetry.LoggerProvider
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		logProvider, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		})
		if err != nil {
			panic("Failed to initialize log exporter: " + err.Error())
		}
		logOpts = append(logOpts, logger.WithOTelExport(logProvider.Provider(), cfg.Telemetry.ServiceName))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logOpts...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	if _, err := telemetry.InstrumentDB(db.DB, meter, telemetry.DBConfig{
		Tracing:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Database instrumentation disabled", zap.Error(err))
	}

	var rdb *redis.Client
	if needsRedis(cfg) {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var redisClient redis.UniversalClient
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if rdb != nil {
		redisClient = rdb
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	locker := lock.New(cfg.Lock, redisClient, log)
	idempotency := cache.NewIdempotencyStore(cfg.Idempotency, redisClient, log)

	bus := event.NewInMemoryEventBus(log)
	if businessMetrics, err := telemetry.NewBusinessMetrics(meter); err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	} else {
		bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	}

	runner := uow.NewRunner(persistence.NewGormTransactionScope(db.DB, db.LockTimeout()), locker, bus, log)
	policy := identity.DefaultPolicy()
	ledger := inventoryapp.NewLedger(cfg.Inventory.DefaultMarkup)

	authService := identityapp.NewAuthService(runner, auth.NewJWTService(cfg.JWT), blacklist, log)
	userService := identityapp.NewUserService(runner, policy, log)
	if cfg.Auth.HasBootstrapBoss() {
		created, err := userService.BootstrapBoss(ctx, cfg.Auth.BootstrapBossName, cfg.Auth.BootstrapBossEmail, cfg.Auth.BootstrapBossPassword)
		if err != nil {
			log.Fatal("Failed to create bootstrap account", zap.Error(err))
		}
		if !created {
			log.Debug("Users exist, bootstrap account skipped")
		}
	}

	checks := map[string]handler.Pinger{"database": handler.PingerFunc(db.Ping)}
	if rdb != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	inventoryService := inventoryapp.NewInventoryService(runner, policy, ledger, cfg.Inventory.ExpiringDaysDefault, log)
	supplierService := partnerapp.NewSupplierService(runner, policy, log)

	sched, stopHousekeeping := startHousekeeping(ctx, cfg.Scheduler, supplierService, inventoryService, log)
	var jobs handler.JobSource
	if sched != nil {
		jobs = sched
	}

	handlers := router.Handlers{
		User:          handler.NewUserHandler(authService, userService),
		Category:      handler.NewCategoryHandler(catalogapp.NewCategoryService(runner, policy, log)),
		Product:       handler.NewProductHandler(catalogapp.NewProductService(runner, policy, log)),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Supplier:      handler.NewSupplierHandler(supplierService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(tradeapp.NewPurchaseOrderService(runner, policy, ledger, log)),
		Sales:         handler.NewSalesOrderHandler(tradeapp.NewSalesService(runner, policy, ledger, log)),
		Expense:       handler.NewExpenseHandler(financeapp.NewExpenseService(runner, policy, log)),
		Report:        handler.NewReportHandler(reportapp.NewReportService(runner, policy, log)),
		System:        handler.NewSystemHandler(cfg.App.Name, version, checks).WithJobs(jobs, policy),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		httpMeter = meter
	}
	engine := router.NewEngine(handlers, router.Deps{
		Config:        cfg,
		Logger:        log,
		Authenticator: authService,
		Idempotency:   idempotency,
		Meter:         httpMeter,
		TraceOption:   []otelgin.Option{otelgin.WithFilter(traced)},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopHousekeeping(shutdownCtx)
	if closer, ok := idempotency.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if logProvider != nil {
		_ = logProvider.Shutdown(shutdownCtx, log)
	}

	log.Info("Server exited gracefully")
}

func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	// Not closed: closing the migrator closes sqlDB with it
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Lock.Backend == "redis" || cfg.Idempotency.Backend == "redis"
}

// traced keeps health probes out of the trace stream
func traced(r *http.Request) bool {
	return r.URL.Path != "/health"
}
