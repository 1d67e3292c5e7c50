package config

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	MongoURI      string
	MongoDatabase string

	FirebaseServiceAccount string
	FirebaseProjectID      string
	JWTSecret              string

	StripeSecret   string
	StripeAPIBase  string
	StripeCurrency string

	CORSOrigins []string

	RedisAddr       string
	DoctorsCacheTTL time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	TextbeltAPIKey string

	OTLPEndpoint string
}

// Load reads a .env file when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	return Config{
		Env:      getEnv("APP_ENV", "dev"),
		Port:     getEnvInt("PORT", 5000),
		LogLevel: getEnv("LOG_LEVEL", ""),

		MongoURI:      buildMongoURI(),
		MongoDatabase: getEnv("MONGO_DATABASE", "doctors_portal"),

		FirebaseServiceAccount: os.Getenv("FIREBASE_SERVICE_ACCOUNT"),
		FirebaseProjectID:      os.Getenv("FIREBASE_PROJECT_ID"),
		JWTSecret:              os.Getenv("JWT_SECRET"),

		StripeSecret:   os.Getenv("STRIPE_SECRET"),
		StripeAPIBase:  getEnv("STRIPE_API_BASE", "https://api.stripe.com"),
		StripeCurrency: getEnv("STRIPE_CURRENCY", "usd"),

		CORSOrigins: getEnvList("CORS_ORIGINS"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		DoctorsCacheTTL: getEnvDuration("DOCTORS_CACHE_TTL", 5*time.Minute),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "doctor-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		TextbeltAPIKey: os.Getenv("TEXTBELT_API_KEY"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// buildMongoURI prefers MONGO_URI and otherwise assembles an Atlas SRV URI
// from the DB_USER/DB_PASS/DB_HOST triple.
func buildMongoURI() string {
	if v := os.Getenv("MONGO_URI"); v != "" {
		return v
	}

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := getEnv("DB_HOST", "")
	if user == "" || host == "" {
		return "mongodb://127.0.0.1:27017"
	}

	return "mongodb+srv://" + url.QueryEscape(user) + ":" + url.QueryEscape(pass) + "@" + host +
		"/?retryWrites=true&w=majority"
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
			return fallback
		}
		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
