package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	AppName   string
	LogLevel  string
	LogFormat string

	DBDSN     string
	DBMigrate bool

	// Identidad. Sin JWKSURL el servicio arranca en modo dev (X-Debug-User-ID).
	JWKSURL           string
	JWTIssuer         string
	JWTAudience       string
	JWKSTTL           time.Duration
	MasterAdminEmails []string
	AutoApproveVets   bool

	RedisAddr          string
	RateLimitPerMinute int

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	CORSAllowedOrigins []string
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		AppName:   getEnv("APP_NAME", "vet-practice-api"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DBDSN:     getEnv("DB_DSN", ""),
		DBMigrate: getEnvAsBool("DB_MIGRATE", true),

		JWKSURL:           getEnv("JWKS_URL", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", ""),
		JWTAudience:       getEnv("JWT_AUDIENCE", ""),
		JWKSTTL:           getEnvAsDuration("JWKS_TTL", time.Hour),
		MasterAdminEmails: getEnvAsList("MASTER_ADMIN_EMAILS"),
		AutoApproveVets:   getEnvAsBool("AUTO_APPROVE_VETS", false),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "vet-practice.audit"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "audit.entry"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	v := getEnv(key, "")
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	v := getEnv(key, "")
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	v := getEnv(key, "")
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

// getEnvAsList separa por coma y descarta vacíos.
func getEnvAsList(key string) []string {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
