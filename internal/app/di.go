// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pensionworks/pensync/internal/breaker"
	clientRepository "github.com/pensionworks/pensync/internal/client/repository"
	"github.com/pensionworks/pensync/internal/config"
	"github.com/pensionworks/pensync/internal/database"
	"github.com/pensionworks/pensync/internal/http"
	"github.com/pensionworks/pensync/internal/metrics"
	syncHTTP "github.com/pensionworks/pensync/internal/sync/http"
	syncRepository "github.com/pensionworks/pensync/internal/sync/repository"
	syncUsecase "github.com/pensionworks/pensync/internal/sync/usecase"
	warehouseRepository "github.com/pensionworks/pensync/internal/warehouse/repository"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	warehouseDB     *sql.DB
	breakerRegistry *breaker.Registry
	metricsProvider *metrics.Provider

	// Managers
	txManager database.TxManager

	// Repositories
	clientRepo      syncUsecase.ClientRepository
	changeRepo      syncUsecase.ChangeRepository
	lookupRepo      syncUsecase.LookupRepository
	syncJobRepo     syncUsecase.SyncJobRepository
	warehouseReader syncUsecase.WarehouseReader

	// Use Cases
	syncUseCase syncUsecase.UseCase

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	scheduler     *syncUsecase.Scheduler

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	warehouseDBInit     sync.Once
	registryInit        sync.Once
	metricsProviderInit sync.Once
	txManagerInit       sync.Once
	clientRepoInit      sync.Once
	changeRepoInit      sync.Once
	lookupRepoInit      sync.Once
	syncJobRepoInit     sync.Once
	warehouseReaderInit sync.Once
	syncUseCaseInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	schedulerInit       sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the operational database connection.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// WarehouseDB returns the analytical warehouse connection. It is a separate
// pool from the operational store so warehouse slowness cannot starve it.
func (c *Container) WarehouseDB() (*sql.DB, error) {
	var err error
	c.warehouseDBInit.Do(func() {
		c.warehouseDB, err = c.initWarehouseDB()
		if err != nil {
			c.initErrors["warehouseDB"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["warehouseDB"]; exists {
		return nil, storedErr
	}
	return c.warehouseDB, nil
}

// BreakerRegistry returns the circuit breaker registry with the warehouse
// circuit registered from configuration.
func (c *Container) BreakerRegistry() *breaker.Registry {
	c.registryInit.Do(func() {
		registry := breaker.NewRegistry()
		registry.Register(syncUsecase.CircuitWarehouse, breaker.Config{
			FailureThreshold: uint(c.config.CircuitFailureThreshold),
			Cooldown:         c.config.CircuitCooldown,
			SuccessThreshold: uint(c.config.CircuitSuccessThreshold),
		})
		c.breakerRegistry = registry
	})
	return c.breakerRegistry
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// TxManager returns the transaction manager bound to the operational store.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// ClientRepository returns the client repository instance.
func (c *Container) ClientRepository() (syncUsecase.ClientRepository, error) {
	var err error
	c.clientRepoInit.Do(func() {
		c.clientRepo, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepo"]; exists {
		return nil, storedErr
	}
	return c.clientRepo, nil
}

// ChangeRepository returns the sync change repository instance.
func (c *Container) ChangeRepository() (syncUsecase.ChangeRepository, error) {
	var err error
	c.changeRepoInit.Do(func() {
		c.changeRepo, err = c.initChangeRepository()
		if err != nil {
			c.initErrors["changeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["changeRepo"]; exists {
		return nil, storedErr
	}
	return c.changeRepo, nil
}

// LookupRepository returns the reference-table repository instance.
func (c *Container) LookupRepository() (syncUsecase.LookupRepository, error) {
	var err error
	c.lookupRepoInit.Do(func() {
		c.lookupRepo, err = c.initLookupRepository()
		if err != nil {
			c.initErrors["lookupRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lookupRepo"]; exists {
		return nil, storedErr
	}
	return c.lookupRepo, nil
}

// SyncJobRepository returns the sync job repository instance.
func (c *Container) SyncJobRepository() (syncUsecase.SyncJobRepository, error) {
	var err error
	c.syncJobRepoInit.Do(func() {
		c.syncJobRepo, err = c.initSyncJobRepository()
		if err != nil {
			c.initErrors["syncJobRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["syncJobRepo"]; exists {
		return nil, storedErr
	}
	return c.syncJobRepo, nil
}

// WarehouseReader returns the warehouse read repository instance.
func (c *Container) WarehouseReader() (syncUsecase.WarehouseReader, error) {
	var err error
	c.warehouseReaderInit.Do(func() {
		c.warehouseReader, err = c.initWarehouseReader()
		if err != nil {
			c.initErrors["warehouseReader"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["warehouseReader"]; exists {
		return nil, storedErr
	}
	return c.warehouseReader, nil
}

// SyncUseCase returns the sync use case instance.
func (c *Container) SyncUseCase() (syncUsecase.UseCase, error) {
	var err error
	c.syncUseCaseInit.Do(func() {
		c.syncUseCase, err = c.initSyncUseCase()
		if err != nil {
			c.initErrors["syncUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["syncUseCase"]; exists {
		return nil, storedErr
	}
	return c.syncUseCase, nil
}

// HTTPServer returns the API server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Scheduler returns the periodic sync scheduler instance.
func (c *Container) Scheduler() (*syncUsecase.Scheduler, error) {
	var err error
	c.schedulerInit.Do(func() {
		c.scheduler, err = c.initScheduler()
		if err != nil {
			c.initErrors["scheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduler"]; exists {
		return nil, storedErr
	}
	return c.scheduler, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connections if initialized
	if c.warehouseDB != nil {
		if err := c.warehouseDB.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("warehouse database close: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the operational database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initWarehouseDB creates the warehouse connection. Sync runs are sequential
// page reads, so the pool stays small.
func (c *Container) initWarehouseDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.WarehouseDriver,
		ConnectionString:   c.config.WarehouseConnectionString,
		MaxOpenConnections: 5,
		MaxIdleConnections: 2,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	return db, nil
}

// initMetricsProvider creates the metrics provider and registers the circuit
// state gauge over the breaker registry.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}

	registry := c.BreakerRegistry()
	if err := metrics.RegisterCircuitGauge(provider.MeterProvider(), c.config.MetricsNamespace, registry); err != nil {
		return nil, fmt.Errorf("failed to register circuit gauge: %w", err)
	}

	return provider, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initClientRepository creates the client repository instance.
func (c *Container) initClientRepository() (syncUsecase.ClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return clientRepository.NewMySQLClientRepository(db), nil
	case "postgres":
		return clientRepository.NewPostgreSQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initChangeRepository creates the sync change repository instance.
func (c *Container) initChangeRepository() (syncUsecase.ChangeRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for change repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return clientRepository.NewMySQLChangeRepository(db), nil
	case "postgres":
		return clientRepository.NewPostgreSQLChangeRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLookupRepository creates the reference-table repository instance.
func (c *Container) initLookupRepository() (syncUsecase.LookupRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for lookup repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return clientRepository.NewMySQLLookupRepository(db), nil
	case "postgres":
		return clientRepository.NewPostgreSQLLookupRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSyncJobRepository creates the sync job repository instance.
func (c *Container) initSyncJobRepository() (syncUsecase.SyncJobRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for sync job repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return syncRepository.NewMySQLSyncJobRepository(db), nil
	case "postgres":
		return syncRepository.NewPostgreSQLSyncJobRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWarehouseReader creates the warehouse read repository instance.
func (c *Container) initWarehouseReader() (syncUsecase.WarehouseReader, error) {
	db, err := c.WarehouseDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse database for warehouse reader: %w", err)
	}

	switch c.config.WarehouseDriver {
	case "mysql":
		return warehouseRepository.NewMySQLWarehouseRepository(db, c.config.WarehouseQueryTimeout), nil
	case "postgres":
		return warehouseRepository.NewPostgreSQLWarehouseRepository(db, c.config.WarehouseQueryTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", c.config.WarehouseDriver)
	}
}

// initSyncUseCase creates the sync use case with all its dependencies,
// wrapping it with the metrics decorator when metrics are enabled.
func (c *Container) initSyncUseCase() (syncUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for sync use case: %w", err)
	}

	warehouseReader, err := c.WarehouseReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse reader for sync use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for sync use case: %w", err)
	}

	changeRepo, err := c.ChangeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get change repository for sync use case: %w", err)
	}

	syncJobRepo, err := c.SyncJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync job repository for sync use case: %w", err)
	}

	lookupRepo, err := c.LookupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup repository for sync use case: %w", err)
	}

	useCaseConfig := syncUsecase.Config{
		PageSize:       c.config.SyncPageSize,
		JobUpdateEvery: c.config.SyncJobUpdateEvery,
	}

	cacheBuilder := syncUsecase.NewLookupCacheBuilder(lookupRepo)

	useCase, err := syncUsecase.NewSyncUseCase(
		useCaseConfig,
		txManager,
		warehouseReader,
		clientRepo,
		changeRepo,
		syncJobRepo,
		cacheBuilder,
		c.BreakerRegistry(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync use case: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for sync use case: %w", err)
	}
	if provider == nil {
		return useCase, nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return syncUsecase.NewUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	useCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	syncHandler := syncHTTP.NewSyncHandler(useCase, logger)

	return http.NewServer(c.config, db, syncHandler, provider, logger), nil
}

// initMetricsServer creates the metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}

// initScheduler creates the periodic sync scheduler.
func (c *Container) initScheduler() (*syncUsecase.Scheduler, error) {
	useCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for scheduler: %w", err)
	}

	schedulerConfig := syncUsecase.SchedulerConfig{
		Interval:      c.config.SchedulerInterval,
		RecordChanges: true,
	}

	return syncUsecase.NewScheduler(schedulerConfig, useCase, c.Logger()), nil
}
