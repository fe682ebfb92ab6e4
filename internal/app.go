package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/adapters/agencies"
	"github.com/Maureenhddi/sergic-app/internal/adapters/connectivity"
	"github.com/Maureenhddi/sergic-app/internal/adapters/contracts"
	"github.com/Maureenhddi/sergic-app/internal/adapters/device"
	"github.com/Maureenhddi/sergic-app/internal/adapters/geocoding"
	"github.com/Maureenhddi/sergic-app/internal/adapters/kvstore"
	listings_api_client "github.com/Maureenhddi/sergic-app/internal/adapters/listings_api_client"
	logger_adapter "github.com/Maureenhddi/sergic-app/internal/adapters/logger"
	rabbitmq_adapter "github.com/Maureenhddi/sergic-app/internal/adapters/rabbitmq"
	"github.com/Maureenhddi/sergic-app/internal/adapters/rest"
	"github.com/Maureenhddi/sergic-app/internal/configs"
	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/usecase"
	fluentlogger "github.com/Maureenhddi/sergic-app/pkg/fluent_logger"
	"github.com/Maureenhddi/sergic-app/pkg/postgres"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_common"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_producer"
	redisclient "github.com/Maureenhddi/sergic-app/pkg/redis"
	"github.com/Maureenhddi/sergic-app/pkg/sqlite"
	"github.com/Maureenhddi/sergic-app/pkg/workerpool"

	"github.com/fluent/fluent-logger-golang/fluent"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *configs.AppConfig

	// closers run in reverse order on shutdown.
	closers []func()

	monitor         *connectivity.Monitor
	prober          *connectivity.Prober
	networkConsumer *rabbitmq_adapter.NetworkEventsConsumer

	cache    *usecase.OfflineCache
	listings *usecase.ListingService
	registry *usecase.FavoritesRegistry

	apiServer *rest.Server

	fluentClient *fluent.Fluent
	baseLogger   port.LoggerPort
	logger       port.LoggerPort
}

// NewApp wires the whole service from the environment (and an optional .env file).
func NewApp(envPath ...string) (*App, error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	return NewAppWithConfig(appConfig)
}

func NewAppWithConfig(appConfig *configs.AppConfig) (app *App, err error) {
	a := &App{config: appConfig}
	defer func() {
		if err != nil {
			a.shutdown()
		}
	}()

	if err := a.initLoggers(); err != nil {
		return nil, err
	}
	ctx := contextkeys.ContextWithLogger(context.Background(), a.baseLogger)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	registry, err := contracts.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to compile cache contracts: %w", err)
	}
	validatedStore := contracts.NewValidatingStore(store, registry)

	a.initConnectivity(ctx)

	var deviceBridge port.DeviceBridgePort = device.NewLogBridge()
	if appConfig.RabbitMQ.Enabled {
		bridge, err := a.initRabbitMQ()
		if err != nil {
			return nil, err
		}
		deviceBridge = bridge
	}

	apiClient := listings_api_client.NewClient(appConfig.ListingsAPI.BaseURL, appConfig.ListingsAPI.Token, appConfig.ListingsAPI.Timeout)
	geocoder := geocoding.NewClient(appConfig.GeocodingURL, 0)
	agencyDirectory, err := agencies.NewDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to load agency directory: %w", err)
	}
	a.logger.Info("All persistence and service adapters initialized.", port.Fields{"store": appConfig.Store.Driver})

	a.cache = usecase.NewOfflineCache(validatedStore, a.monitor, usecase.WithImageBaseURL(appConfig.ImageBaseURL))
	a.listings = usecase.NewListingService(apiClient, a.cache, a.monitor)
	a.registry = usecase.NewFavoritesRegistry(ctx, validatedStore, apiClient, workerpool.New(appConfig.EnrichmentWorkers, 0))
	a.closers = append(a.closers, a.registry.Close)

	browse := usecase.NewBrowseListingsUseCase(a.listings, geocoder, deviceBridge, a.monitor)
	share := usecase.NewShareListingUseCase(a.listings, deviceBridge)

	handlers := rest.Handlers{
		Listings:     rest.NewListingsHandler(a.listings, browse, share, agencyDirectory),
		Cache:        rest.NewCacheHandler(a.cache),
		Favorites:    rest.NewFavoritesHandler(a.registry),
		Connectivity: rest.NewConnectivityHandler(a.monitor, wsOriginPatterns(appConfig.Rest.AllowedOrigins)),
	}
	a.apiServer = rest.NewServer(appConfig.Rest.Port, handlers, appConfig.Rest.AllowedOrigins, a.baseLogger)
	a.logger.Info("REST API server configured.", nil)

	return a, nil
}

func (a *App) initLoggers() error {
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(a.config.StdoutLogger.Level),
		IsJSON:   a.config.StdoutLogger.IsJSON,
		UseColor: !a.config.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if a.config.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      a.config.FluentBit.Host,
			Port:      a.config.FluentBit.Port,
			TagPrefix: a.config.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(a.config.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return fmt.Errorf("failed to create multi-logger: %w", err)
	}

	a.baseLogger = multiLogger.WithFields(port.Fields{"service_name": a.config.AppName})
	a.logger = a.baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": a.config.FluentBit.Enabled,
	})
	return nil
}

func (a *App) openStore(ctx context.Context) (port.KeyValueStorePort, error) {
	cfg := a.config.Store

	switch cfg.Driver {
	case configs.StoreMemory:
		a.logger.Warn("Using in-memory store, nothing survives a restart.", nil)
		return kvstore.NewMemoryStore(), nil

	case configs.StorePostgres:
		pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.DatabaseURL})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.logger.Info("Successfully connected to PostgreSQL pool!", nil)
		return kvstore.NewPostgresStore(ctx, pool)

	case configs.StoreRedis:
		client, err := redisclient.NewClient(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.logger.Error("Failed to connect to Redis", err, nil)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.logger.Info("Successfully connected to Redis!", port.Fields{"addr": cfg.RedisAddr})
		return kvstore.NewRedisStore(client, cfg.RedisPrefix)

	default:
		db, err := sqlite.NewClient(sqlite.Config{Path: cfg.SQLitePath, Schema: kvstore.Schema})
		if err != nil {
			a.logger.Error("Failed to open SQLite database", err, port.Fields{"path": cfg.SQLitePath})
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.logger.Info("SQLite database ready.", port.Fields{"path": cfg.SQLitePath})
		return kvstore.NewSQLiteStore(db)
	}
}

// initConnectivity seeds the monitor. Outside local hosts the first probe decides the initial state.
func (a *App) initConnectivity(ctx context.Context) {
	cfg := a.config.Connectivity
	monitorLogger := a.baseLogger.WithFields(port.Fields{"component": "ConnectivityMonitor"})
	a.monitor = connectivity.NewMonitor(cfg.Host, false, monitorLogger)

	if cfg.ProbeURL == "" || cfg.ProbeInterval <= 0 {
		a.logger.Info("Connectivity probing disabled.", nil)
		return
	}
	a.prober = connectivity.NewProber(a.monitor, cfg.ProbeURL, cfg.ProbeInterval, monitorLogger)
	if !connectivity.IsLocalHost(cfg.Host) {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		a.prober.Probe(probeCtx)
		cancel()
	}
	a.logger.Info("Connectivity monitor initialized.", port.Fields{"offline": a.monitor.IsOffline(), "host": cfg.Host})
}

func (a *App) initRabbitMQ() (port.DeviceBridgePort, error) {
	cfg := a.config.RabbitMQ
	amqpConfig := rabbitmq_common.Config{URL: cfg.URL}

	connManager, err := rabbitmq_common.NewConnectionManager(amqpConfig,
		rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_connection"})))
	if err != nil {
		a.logger.Error("Failed to connect to RabbitMQ", err, nil)
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	a.closers = append(a.closers, func() { _ = connManager.Close() })

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   amqpConfig,
		ExchangeName:             cfg.DeviceExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create device bridge producer: %w", err)
	}
	a.closers = append(a.closers, func() { _ = producer.Close() })

	bridge, err := rabbitmq_adapter.NewDeviceBridgePublisher(producer)
	if err != nil {
		return nil, err
	}

	consumer, err := rabbitmq_adapter.NewNetworkEventsConsumer(rabbitmq_consumer.ConsumerConfig{
		Config:                 amqpConfig,
		QueueName:              cfg.NetworkEventsQueue,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    cfg.NetworkEventsExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "topic",
		DurableExchangeForBind: true,
		PrefetchCount:          1,
		Ordered:                true,
		ConsumerTag:            a.config.AppName,
	}, a.monitor, a.baseLogger, connManager)
	if err != nil {
		return nil, err
	}
	a.networkConsumer = consumer
	a.closers = append(a.closers, func() { _ = consumer.Close() })

	a.logger.Info("RabbitMQ device bridge and network events wired.", port.Fields{
		"device_exchange":  cfg.DeviceExchange,
		"network_exchange": cfg.NetworkEventsExchange,
	})
	return bridge, nil
}

// Run starts the background components and the HTTP server and blocks until a signal or a failure.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(contextkeys.ContextWithLogger(context.Background(), a.baseLogger))
	defer a.shutdown()
	defer cancelApp()

	a.logger.Info("Application is starting...", nil)

	if a.prober != nil {
		go a.prober.Run(appCtx)
	}

	componentErrors := make(chan error, 1)
	if a.networkConsumer != nil {
		go func() {
			// connectivity then relies on the prober and manual transitions only
			if err := a.networkConsumer.Start(appCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("Network events consumer stopped", err, nil)
			}
		}()
	}
	go func() {
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("Component failed, shutting down", err, nil)
		runErr = err
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStop()
	if err := a.apiServer.Stop(stopCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}
	return runErr
}

// Close releases everything NewApp opened; used by the one-shot CLI commands.
func (a *App) Close() {
	a.shutdown()
}

func (a *App) shutdown() {
	if a.logger != nil {
		a.logger.Info("Shutdown sequence initiated...", nil)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent may already be gone, so stdout only
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}

// Context returns a background context carrying the application logger.
func (a *App) Context() context.Context {
	return contextkeys.ContextWithLogger(context.Background(), a.baseLogger)
}

func (a *App) Config() *configs.AppConfig                    { return a.config }
func (a *App) Monitor() *connectivity.Monitor                { return a.monitor }
func (a *App) Cache() *usecase.OfflineCache                  { return a.cache }
func (a *App) Listings() *usecase.ListingService             { return a.listings }
func (a *App) FavoritesRegistry() *usecase.FavoritesRegistry { return a.registry }

// wsOriginPatterns turns CORS origins into host patterns accepted by the websocket handshake.
func wsOriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
