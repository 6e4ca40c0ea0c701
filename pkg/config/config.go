package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Mailjet   MailjetConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig
	Qdrant    QdrantConfig
	Recommend RecommendConfig
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type AppConfig struct {
	Name                    string
	Version                 string
	Environment             string
	AppDeploymentUrl        string
	AppEmailVerificationKey string
	AllowedOrigins          []string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// EmbeddingConfig points at an OpenAI-compatible /v1/embeddings endpoint.
// An empty APIKey disables the semantic ranking path.
type EmbeddingConfig struct {
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32
}

func (c EmbeddingConfig) Enabled() bool {
	return c.APIKey != ""
}

// QdrantConfig is optional. Without a URL the Postgres cosine index is used.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorDim  int
}

func (c QdrantConfig) Enabled() bool {
	return c.URL != ""
}

type RecommendConfig struct {
	DefaultLimit       int
	MaxLimit           int
	RateLimitPerMinute int
	HistoryExpiry      time.Duration
	ExpirySweep        time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:                    getEnv("APP_NAME", "Campus Events API"),
			Version:                 getEnv("APP_VERSION", "1.0.0"),
			Environment:             getEnv("APP_ENV", "development"),
			AppDeploymentUrl:        getEnv("APP_DEPLOYMENT_URL", "http://localhost:8080"),
			AppEmailVerificationKey: getEnv("APP_EMAIL_VERIFICATION_KEY", ""),
			AllowedOrigins:          []string{getEnv("APP_ALLOWED_ORIGIN", "http://localhost:3000")},
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "campus_events"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TTL:       getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Embedding: EmbeddingConfig{
			BaseURL:          getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
			APIKey:           getEnv("EMBEDDING_API_KEY", ""),
			Model:            getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout:          getEnvDuration("EMBEDDING_TIMEOUT", 3*time.Second),
			RatePerSecond:    getEnvFloat("EMBEDDING_RATE_PER_SECOND", 5),
			Burst:            getEnvInt("EMBEDDING_BURST", 10),
			FailureThreshold: uint32(getEnvInt("EMBEDDING_BREAKER_FAILURES", 5)),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "events"),
			VectorDim:  getEnvInt("QDRANT_VECTOR_DIM", 1536),
		},
		Recommend: RecommendConfig{
			DefaultLimit:       getEnvInt("RECOMMEND_DEFAULT_LIMIT", 10),
			MaxLimit:           getEnvInt("RECOMMEND_MAX_LIMIT", 50),
			RateLimitPerMinute: getEnvInt("RECOMMEND_RATE_LIMIT_PER_MINUTE", 60),
			HistoryExpiry:      getEnvDuration("HISTORY_EXPIRY", 6*30*24*time.Hour),
			ExpirySweep:        getEnvDuration("HISTORY_EXPIRY_SWEEP", time.Hour),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.App.AppEmailVerificationKey == "" {
		return nil, errors.New("missing app email verification key")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Qdrant.Enabled() && cfg.Qdrant.VectorDim <= 0 {
		return nil, errors.New("qdrant vector dimension must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}
