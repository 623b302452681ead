package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	API       APIConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Cache     CacheConfig
	RabbitMQ  RabbitMQConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Env            string   `env:"APP_ENV" envDefault:"development"`
	DefaultTheme   string   `env:"APP_DEFAULT_THEME" envDefault:"dark"`
	AllowedOrigins []string `env:"APP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// APIConfig points at the ChefHut backend REST API.
type APIConfig struct {
	BaseURL         string        `env:"API_BASE_URL" envDefault:"https://chef-hut-indol.vercel.app/"`
	Timeout         time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	MaxIdleConns    int           `env:"API_MAX_IDLE_CONNS" envDefault:"50"`
	IdleConnTimeout time.Duration `env:"API_IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ReadRetries     uint64        `env:"API_READ_RETRIES" envDefault:"1"`
	RetryWait       time.Duration `env:"API_RETRY_WAIT" envDefault:"200ms"`
}

type FirebaseConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE" envDefault:"serviceAccountKey.json"`
	APIKey          string `env:"FIREBASE_API_KEY"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"chefhut_session"`
	Secret     string        `env:"SESSION_SECRET" envDefault:"super-secret-key"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type CacheConfig struct {
	QueryTTL time.Duration `env:"CACHE_QUERY_TTL" envDefault:"30s"`
	RoleTTL  time.Duration `env:"CACHE_ROLE_TTL" envDefault:"60s"`
}

// RabbitMQConfig is optional; an empty URL keeps session events process-local.
type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_SESSION_EXCHANGE" envDefault:"session.events"`
}

type KafkaConfig struct {
	Brokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	LogTopic string   `env:"KAFKA_LOG_TOPIC" envDefault:"storefront-logs"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"chefhut-storefront"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
