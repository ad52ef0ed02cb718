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
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Shortener  `yaml:"shortener"`
	Safety     `yaml:"safety"`
	JWT        `yaml:"jwt"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_SERVER_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database holds PostgreSQL connection and lifecycle configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkshield"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
	SeedAdminEmail  string `yaml:"seed_admin_email" env:"DB_SEED_ADMIN_EMAIL" env-default:"admin@linkshield.local"`
	SeedAdminPass   string `yaml:"seed_admin_password" env:"DB_SEED_ADMIN_PASSWORD" env-default:""`
}

// Shortener holds service-specific configuration.
type Shortener struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	CodeLength  int    `yaml:"code_length" env:"CODE_LENGTH" env-default:"8"`
	MaxAttempts int    `yaml:"max_attempts" env:"MAX_ATTEMPTS" env-default:"5"`
}

// Safety holds configuration of the external URL safety classifier.
type Safety struct {
	APIKey         string        `yaml:"api_key" env:"GEMINI_API_KEY" env-default:""`
	Model          string        `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	Endpoint       string        `yaml:"endpoint" env:"GEMINI_ENDPOINT" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout        time.Duration `yaml:"timeout" env:"SAFETY_TIMEOUT" env-default:"10s"`
	BlockThreshold float64       `yaml:"block_threshold" env:"SAFETY_BLOCK_THRESHOLD" env-default:"0.7"`
}

// JWT holds token signing configuration.
type JWT struct {
	Secret          string        `yaml:"secret" env:"JWT_SECRET" env-default:""`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"LinkShield-Backend"`
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
