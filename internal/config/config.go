package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-driven setting of the API process.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"hilot"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Redis
	RedisURL string `envconfig:"REDIS_URL" default:"redis://redis:6379"`

	// Payments. An empty secret key switches checkout to the card simulator.
	OmisePublicKey  string  `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey  string  `envconfig:"OMISE_SECRET_KEY"`
	PaymentCurrency string  `envconfig:"PAYMENT_CURRENCY" default:"thb"`
	PlatformFee     float64 `envconfig:"PLATFORM_FEE" default:"75"`

	// Messaging
	AMQPURL      string   `envconfig:"AMQP_URL"`
	AMQPExchange string   `envconfig:"AMQP_EXCHANGE" default:"bookings"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"hilot.bookings"`

	// Notifications
	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	EmailFrom                  string `envconfig:"EMAIL_FROM"`
	EmailPassword              string `envconfig:"EMAIL_PASSWORD"`
	SMTPHost                   string `envconfig:"SMTP_HOST"`
	SMTPPort                   string `envconfig:"SMTP_PORT" default:"587"`
	ATUsername                 string `envconfig:"AT_USERNAME"`
	ATAPIKey                   string `envconfig:"AT_API_KEY"`

	// Storage
	AWSRegion          string `envconfig:"AWS_REGION"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket           string `envconfig:"AWS_S3_BUCKET"`
	UploadDir          string `envconfig:"UPLOAD_DIR" default:"/app/uploads"`
	BaseURL            string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Observability
	AppEnv       string   `envconfig:"APP_ENV" default:"dev"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"LOG_FORMAT" default:"json"`
	OTELEndpoint string   `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads the process environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// GatewayConfigured reports whether real card capture is available.
func (c Config) GatewayConfigured() bool {
	return strings.TrimSpace(c.OmiseSecretKey) != ""
}

func (c Config) S3Configured() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}
