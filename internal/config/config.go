package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/game_store/pkg/config"
)

type Config struct {
	AppEnv     string
	ServerPort int
	LogLevel   string

	DatabaseURL string
	JWTSecret   []byte

	AdminEmail    string
	AdminPassword string
	AdminName     string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RabbitMQURL string
	ReceiptsLog string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitPerMinute int

	CloudinaryURL string

	CSRFEnabled bool
	CORSOrigins []string
}

// LoadDotEnv reads the given .env files when they exist. Real environment
// variables always win over file values.
func LoadDotEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Load() Config {
	return Config{
		AppEnv:     strings.ToLower(config.EnvDefault("APP_ENV", "development")),
		ServerPort: config.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   config.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     config.EnvDefault("ADMIN_NAME", "Administrator"),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "games"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		ReceiptsLog: config.EnvDefault("RECEIPTS_LOG", "logs/receipts.log"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       config.EnvIntDefault("REDIS_DB", 0),
		CacheTTL:      config.EnvDuration("CACHE_TTL", 30*time.Second),

		RateLimitPerMinute: config.EnvIntDefault("RATE_LIMIT_PER_MINUTE", 20),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		CSRFEnabled: config.EnvBool("CSRF_ENABLED", false),
		CORSOrigins: config.CSV(os.Getenv("CORS_ORIGINS")),
	}
}

// LoadServer is Load plus the variables the HTTP server cannot start without.
func LoadServer() Config {
	cfg := Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustPositive(cfg.ServerPort, "SERVER_PORT")

	return cfg
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

func (c Config) AdminBootstrap() bool { return c.AdminEmail != "" && c.AdminPassword != "" }
