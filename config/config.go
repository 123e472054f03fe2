package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Media   MediaConfig
	AI      AIConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type BackendConfig struct {
	// DatabaseURL empty means mock mode: in-memory fixtures, no backend.
	DatabaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicOrders   string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type AuthConfig struct {
	JWTSecret      string
	SessionTimeout time.Duration
}

type CatalogConfig struct {
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

type MediaConfig struct {
	Dir     string
	BaseURL string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	sessionTimeout, _ := strconv.Atoi(getEnv("SESSION_TIMEOUT_SECONDS", "15"))
	fetchTimeout, _ := strconv.Atoi(getEnv("CATALOG_FETCH_TIMEOUT_SECONDS", "5"))
	cacheTTL, _ := strconv.Atoi(getEnv("CATALOG_CACHE_TTL_SECONDS", "300"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicOrders:   getEnv("KAFKA_TOPIC_ORDER_CHANGES", "order-changes"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "resto-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-only-secret"),
			SessionTimeout: time.Duration(sessionTimeout) * time.Second,
		},
		Catalog: CatalogConfig{
			FetchTimeout: time.Duration(fetchTimeout) * time.Second,
			CacheTTL:     time.Duration(cacheTTL) * time.Second,
		},
		Media: MediaConfig{
			Dir:     getEnv("MEDIA_DIR", "./media"),
			BaseURL: getEnv("MEDIA_BASE_URL", "/media"),
		},
		AI: AIConfig{
			APIKey:  getEnv("AI_API_KEY", ""),
			BaseURL: getEnv("AI_BASE_URL", ""),
			Model:   getEnv("AI_MODEL", ""),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, live=%v", cfg.Server.Env, cfg.Server.Port, cfg.LiveMode())
	return cfg
}

// LiveMode reports whether a live backend is configured. A pure function of
// configuration, decided once at startup; every dual-mode component is
// constructed from this answer rather than re-checking per call.
func (c *Config) LiveMode() bool {
	return c.Backend.DatabaseURL != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
