package configs

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type RESTConfig struct {
	Port           string
	AllowedOrigins []string
}

type ListingsAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type StoreConfig struct {
	Driver        string
	SQLitePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type ConnectivityConfig struct {
	// Host is the name the app is served from; local hosts start online.
	Host          string
	ProbeURL      string
	ProbeInterval time.Duration
}

type RabbitMQConfig struct {
	Enabled               bool
	URL                   string
	DeviceExchange        string
	NetworkEventsExchange string
	NetworkEventsQueue    string
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName           string
	Rest              RESTConfig
	ListingsAPI       ListingsAPIConfig
	ImageBaseURL      string
	GeocodingURL      string
	Store             StoreConfig
	Connectivity      ConnectivityConfig
	RabbitMQ          RabbitMQConfig
	EnrichmentWorkers int
	FluentBit         FluentBitConfig
	StdoutLogger      StdoutLogConfig
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if len(envPath) > 0 && envPath[0] != "" && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Printf("Info: no .env file loaded (%v), using environment only.\n", err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "listings-service")

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8100"})

	cfg.ListingsAPI.BaseURL = getEnvAsString("LISTINGS_API_URL", "http://localhost:8000/api")
	cfg.ListingsAPI.Token = getEnvAsString("LISTINGS_API_TOKEN", "")
	cfg.ListingsAPI.Timeout = getEnvAsDuration("LISTINGS_API_TIMEOUT", 15*time.Second)

	cfg.ImageBaseURL = getEnvAsString("IMAGE_BASE_URL", "https://ad-sergic-middle-prod.itroom.fr/")
	cfg.GeocodingURL = getEnvAsString("GEOCODING_API_URL", "https://api-adresse.data.gouv.fr/search")

	cfg.Store.Driver = strings.ToLower(getEnvAsString("STORE_DRIVER", StoreSQLite))
	switch cfg.Store.Driver {
	case StoreMemory, StoreSQLite, StorePostgres, StoreRedis:
	default:
		log.Printf("Warning: unknown STORE_DRIVER %q. Using %q.\n", cfg.Store.Driver, StoreSQLite)
		cfg.Store.Driver = StoreSQLite
	}
	cfg.Store.SQLitePath = getEnvAsString("SQLITE_PATH", "data/sergic.db")
	cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Store.RedisAddr = getEnvAsString("REDIS_ADDR", "localhost:6379")
	cfg.Store.RedisPassword = getEnvAsString("REDIS_PASSWORD", "")
	cfg.Store.RedisDB = getEnvAsInt("REDIS_DB", 0)
	cfg.Store.RedisPrefix = getEnvAsString("REDIS_PREFIX", "")
	if cfg.Store.Driver == StorePostgres && cfg.Store.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required when STORE_DRIVER=postgres")
	}

	cfg.Connectivity.Host = getEnvAsString("CONNECTIVITY_HOST", "localhost")
	cfg.Connectivity.ProbeURL = getEnvAsString("CONNECTIVITY_PROBE_URL", cfg.ListingsAPI.BaseURL)
	cfg.Connectivity.ProbeInterval = getEnvAsDuration("CONNECTIVITY_PROBE_INTERVAL", 30*time.Second)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling RabbitMQ.")
			cfg.RabbitMQ.Enabled = false
		}
	}
	cfg.RabbitMQ.DeviceExchange = getEnvAsString("DEVICE_EXCHANGE", "device_bridge")
	cfg.RabbitMQ.NetworkEventsExchange = getEnvAsString("NETWORK_EVENTS_EXCHANGE", "network_events")
	cfg.RabbitMQ.NetworkEventsQueue = getEnvAsString("NETWORK_EVENTS_QUEUE", cfg.AppName+".network_events")

	cfg.EnrichmentWorkers = getEnvAsInt("ENRICHMENT_WORKERS", 4)
	if cfg.EnrichmentWorkers < 1 {
		log.Printf("Warning: ENRICHMENT_WORKERS must be positive. Using 1.\n")
		cfg.EnrichmentWorkers = 1
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration accepts Go durations ("30s") and bare integers as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valStr = strings.TrimSpace(valStr)
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
