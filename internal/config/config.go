package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	FrontendURL string

	LogLevel  string
	LogFormat string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Moderation
	MinMuteDays       int
	MaxMuteDays       int
	MuteRetryAttempts int
	MuteRetryDelay    time.Duration
	ClaimTTL          time.Duration

	AdminRateLimit  int
	ReportRateLimit int
	RateLimitWindow time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "partsflip"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		MinMuteDays:       getEnvInt("MODERATION_MIN_MUTE_DAYS", 1),
		MaxMuteDays:       getEnvInt("MODERATION_MAX_MUTE_DAYS", 30),
		MuteRetryAttempts: getEnvInt("MODERATION_MUTE_RETRY_ATTEMPTS", 3),
		MuteRetryDelay:    getEnvDuration("MODERATION_MUTE_RETRY_DELAY", 200*time.Millisecond),
		ClaimTTL:          getEnvDuration("MODERATION_CLAIM_TTL", 2*time.Minute),

		AdminRateLimit:  getEnvInt("ADMIN_RATE_LIMIT", 120),
		ReportRateLimit: getEnvInt("REPORT_RATE_LIMIT", 20),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
