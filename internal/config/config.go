package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	Auth         `yaml:"auth"`
	Analytics    `yaml:"analytics"`
	Redis        `yaml:"redis"`
	Logging      `yaml:"logging"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkshrink"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// URLShortener holds service-specific configuration.
type URLShortener struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	CodeLength  int    `yaml:"code_length" env:"CODE_LENGTH" env-default:"6"`
	MaxAttempts int    `yaml:"max_attempts" env:"CODE_MAX_ATTEMPTS" env-default:"5"`
}

// Auth holds token and password hashing configuration.
type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"linkshrink-backend"`
	BcryptCost     int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

// Analytics holds click recorder configuration.
type Analytics struct {
	WorkerCount     int           `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"1s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"30s"`
	UARegexesPath   string        `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH" env-default:""`
	AggregationSpec string        `yaml:"aggregation_spec" env:"STATS_AGGREGATION_SPEC" env-default:"5 0 * * *"`
}

// Redis holds the optional Redis-backed click queue configuration. When
// disabled the in-process queue is used.
type Redis struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	QueueKey string `yaml:"queue_key" env:"REDIS_QUEUE_KEY" env-default:"linkshrink:clicks"`
}

// Logging holds optional rotating file log output configuration.
type Logging struct {
	FilePath   string `yaml:"file_path" env:"LOG_FILE_PATH" env-default:""`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"50"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"14"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"true"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
