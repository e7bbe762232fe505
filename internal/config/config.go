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
	// Server
	Port string
	Env  string

	// Marketplace API
	APIBaseURL        string
	APITimeoutSeconds int
	APIUserAgent      string

	// CORS
	AllowedOrigins []string

	// Redis (gallery sessions, optional)
	RedisURL   string
	GalleryTTL time.Duration

	// Catalog images
	ImageBasePath    string
	PlaceholderImage string

	// Dashboard sessions
	DashboardIdleTTL time.Duration

	// Pest analysis uploads
	AnalyzeMaxSide int

	// Storage (R2) for imagesync
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2Endpoint        string
	ImagesPrefix      string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Marketplace API
		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		APITimeoutSeconds: parsePositiveInt(getEnv("API_TIMEOUT_SECONDS", "10"), 10),
		APIUserAgent:      getEnv("API_USER_AGENT", "PestGuard-Web/1.0"),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		// Redis
		RedisURL:   getEnv("REDIS_URL", ""),
		GalleryTTL: parseDuration(getEnv("GALLERY_TTL", "30m"), 30*time.Minute),

		// Catalog images
		ImageBasePath:    strings.TrimRight(getEnv("IMAGE_BASE_PATH", "/images/pests"), "/"),
		PlaceholderImage: getEnv("PLACEHOLDER_IMAGE", "/images/placeholder-pest.svg"),

		// Dashboard
		DashboardIdleTTL: parseDuration(getEnv("DASHBOARD_IDLE_TTL", "20m"), 20*time.Minute),

		// Analysis
		AnalyzeMaxSide: parsePositiveInt(getEnv("ANALYZE_MAX_SIDE", "1024"), 1024),

		// Storage
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", "pestguard-assets"),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		ImagesPrefix:      getEnv("IMAGES_PREFIX", "pests/"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

// APITimeout returns the upstream request timeout
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parseDuration falls back to defaultValue for non-positive durations.
func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func parsePositiveInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
