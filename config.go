package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "github.com/CharlesX20/chimestradingstore/pkg/aws"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/joho/godotenv"
)

const (
	ImageStoreCloudinary = "cloudinary"
	ImageStoreS3         = "s3"

	EventsSNS   = "sns"
	EventsKafka = "kafka"
	EventsNone  = "none"
)

// Config holds all environment variables for the storefront.
type Config struct {
	Port string
	Env  string

	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret    string
	CookieSecure bool
	CORSOrigins  []string

	ImageStore       string
	CloudinaryURL    string
	AWS              awspkg.Options
	S3Bucket         string
	S3Prefix         string
	CloudFrontDomain string

	EventsBackend    string
	OrderSNSTopicArn string
	KafkaBrokers     string
	KafkaOrderTopic  string

	OrderEventsQueueURL string
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWhatsAppFrom  string
	ManagerPhone        string

	LegacyConflictIndex string
	PickupGrace         time.Duration
	StoreTimezone       string

	FrontendDist      string
	CloudWatchEnabled bool
}

// secretGetter is satisfied by *awspkg.SecretsClient.
type secretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig reads .env (optional) and the environment. If AWS_USE_SECRETS=true
// secrets are read from Secrets Manager, falling back to env vars on failure.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := configFromEnv()

	if getEnv("AWS_USE_SECRETS", "false") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS); err == nil {
			applySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFromEnv() *Config {
	return &Config{
		Port: getEnv("PORT", "5000"),
		Env:  getEnv("ENV", "development"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "chimes_trading"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieSecure: getEnvBool("COOKIE_SECURE", getEnv("ENV", "development") == "production"),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),

		ImageStore:       strings.ToLower(getEnv("IMAGE_STORE", ImageStoreCloudinary)),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		AWS:              awspkg.OptionsFromEnv(),
		S3Bucket:         getEnv("AWS_S3_BUCKET", "chimes-trading"),
		S3Prefix:         os.Getenv("AWS_S3_PREFIX"),
		CloudFrontDomain: os.Getenv("AWS_CLOUDFRONT_DOMAIN"),

		EventsBackend:    strings.ToLower(getEnv("EVENTS_BACKEND", EventsNone)),
		OrderSNSTopicArn: os.Getenv("ORDER_SNS_TOPIC_ARN"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaOrderTopic:  getEnv("KAFKA_ORDER_TOPIC", "orders"),

		OrderEventsQueueURL: os.Getenv("ORDER_EVENTS_QUEUE_URL"),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:  os.Getenv("TWILIO_WHATSAPP_FROM"),
		ManagerPhone:        os.Getenv("MANAGER_PHONE"),

		LegacyConflictIndex: getEnv("LEGACY_CONFLICT_INDEX", services.DefaultLegacyConflictIndex),
		PickupGrace:         getEnvDuration("PICKUP_GRACE", services.DefaultPickupGrace),
		StoreTimezone:       getEnv("STORE_TIMEZONE", "Africa/Lagos"),

		FrontendDist:      os.Getenv("FRONTEND_DIST"),
		CloudWatchEnabled: getEnvBool("CLOUDWATCH_ENABLED", false),
	}
}

func applySecrets(ctx context.Context, cfg *Config, sm secretGetter) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"chimes/JWT_SECRET", &cfg.JWTSecret},
		{"chimes/MONGO_URI", &cfg.MongoURI},
		{"chimes/CLOUDINARY_URL", &cfg.CloudinaryURL},
		{"chimes/TWILIO_AUTH_TOKEN", &cfg.TwilioAuthToken},
	}
	for _, o := range overrides {
		if v, err := sm.GetSecret(ctx, o.name); err == nil && v != "" {
			*o.target = v
		}
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	switch c.ImageStore {
	case ImageStoreCloudinary:
		if c.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required when IMAGE_STORE=cloudinary")
		}
	case ImageStoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}
	switch c.EventsBackend {
	case EventsNone, EventsKafka:
	case EventsSNS:
		if c.OrderSNSTopicArn == "" {
			return fmt.Errorf("ORDER_SNS_TOPIC_ARN is required when EVENTS_BACKEND=sns")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}
	if _, err := time.LoadLocation(c.StoreTimezone); err != nil {
		return fmt.Errorf("invalid STORE_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the store's time zone; validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
