package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when GOOGLE_API_KEY is not set.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is required")

// ProviderConfig configures the mapping provider client.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ExportConfig configures where direction files are written.
type ExportConfig struct {
	Dir       string
	KeepFiles bool
}

// KafkaConfig configures export event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string
	ExportTopic string
}

// ServiceConfig holds all configuration for the directions service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	AllowedOrigins []string
	Provider       ProviderConfig
	Export         ExportConfig
	Kafka          KafkaConfig
}

// Load reads configuration from an optional .env file and the environment.
// Every key may also be given with the DIRECTIONS_ prefix.
func Load() (*ServiceConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DIRECTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("EXPORT_DIR", os.TempDir())
	v.SetDefault("EXPORT_KEEP_FILES", false)
	v.SetDefault("KAFKA_EXPORT_TOPIC", "directions.events")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	apiKey := strings.TrimSpace(lookup(v, "GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout, err := time.ParseDuration(lookup(v, "PROVIDER_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: must be positive, got %s", timeout)
	}

	port := lookup(v, "SERVICE_PORT")
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	keep, err := strconv.ParseBool(lookup(v, "EXPORT_KEEP_FILES"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_KEEP_FILES: %w", err)
	}

	return &ServiceConfig{
		Port:           port,
		AppEnv:         lookup(v, "APP_ENV"),
		AllowedOrigins: splitList(lookup(v, "CORS_ALLOWED_ORIGINS")),
		Provider: ProviderConfig{
			APIKey:  apiKey,
			BaseURL: strings.TrimRight(lookup(v, "PROVIDER_BASE_URL"), "/"),
			Timeout: timeout,
		},
		Export: ExportConfig{
			Dir:       lookup(v, "EXPORT_DIR"),
			KeepFiles: keep,
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(lookup(v, "KAFKA_BROKERS")),
			ExportTopic: lookup(v, "KAFKA_EXPORT_TOPIC"),
		},
	}, nil
}

// lookup prefers the unprefixed environment variable, then viper
// (DIRECTIONS_<KEY> or the default).
func lookup(v *viper.Viper, key string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return v.GetString(key)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
