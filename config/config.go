package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	StorePostgres    bool

	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	GeoCacheTTLHours int

	GoogleMapsAPIKey string
	GeoProvider      string

	SearchURL      string
	StartPage      int
	EndPage        int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	Fetcher        string
	ChromeBin      string
	SelectorsFile  string

	CSVOutputPath string

	RabbitMQURL   string
	RabbitMQQueue string

	ServerPort          int
	ModelEndpoint       string
	ModelTimeoutSeconds int

	LogLevel  string
	LogFormat string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "estimator"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "estimator"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		StorePostgres:    getEnvBool("STORE_POSTGRES", false),

		RedisHost:        getEnv("REDIS_HOST", ""),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		GeoCacheTTLHours: getEnvInt("GEO_CACHE_TTL_HOURS", 24*30),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeoProvider:      strings.ToLower(getEnv("GEO_PROVIDER", "static")),

		SearchURL:      getEnv("SEARCH_URL", "https://www.propertyguru.com.sg/property-for-rent"),
		StartPage:      getEnvInt("START_PAGE", 1),
		EndPage:        getEnvInt("END_PAGE", 9),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		Fetcher:        strings.ToLower(getEnv("FETCHER", "http")),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		SelectorsFile:  getEnv("SELECTORS_FILE", ""),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/rental_prices.csv"),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "listings.scraped"),

		ServerPort:          getEnvInt("SERVER_PORT", 5000),
		ModelEndpoint:       getEnv("MODEL_ENDPOINT", ""),
		ModelTimeoutSeconds: getEnvInt("MODEL_TIMEOUT_SECONDS", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RedisAddr returns the Redis address, or "" when no Redis host is set.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
