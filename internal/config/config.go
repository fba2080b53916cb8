package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// APIBaseURL selects the backend. Empty in development routes every
	// call through the in-process mock backend.
	APIBaseURL string

	// Mock backend knobs.
	MockLatency   time.Duration
	MockJWTSecret string

	// Session cache. Empty RedisAddr keeps sessions in process memory.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Location provider.
	GeoTimeout time.Duration

	// Simulated real-time delays driven through the shared clock.
	IncomingRequestDelay time.Duration
	RatingRevealDelay    time.Duration
	DocumentUploadDelay  time.Duration
	PaymentUploadDelay   time.Duration
	FaceVerifyDelay      time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		APIBaseURL:           getEnv("API_BASE_URL", ""),
		MockLatency:          getEnvAsDuration("MOCK_LATENCY", 500*time.Millisecond),
		MockJWTSecret:        getEnv("MOCK_JWT_SECRET", "nurse24-dev-secret"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		GeoTimeout:           getEnvAsDuration("GEO_TIMEOUT", 3*time.Second),
		IncomingRequestDelay: getEnvAsDuration("INCOMING_REQUEST_DELAY", 5*time.Second),
		RatingRevealDelay:    getEnvAsDuration("RATING_REVEAL_DELAY", 3*time.Second),
		DocumentUploadDelay:  getEnvAsDuration("DOCUMENT_UPLOAD_DELAY", 2*time.Second),
		PaymentUploadDelay:   getEnvAsDuration("PAYMENT_UPLOAD_DELAY", 1500*time.Millisecond),
		FaceVerifyDelay:      getEnvAsDuration("FACE_VERIFY_DELAY", 1500*time.Millisecond),
	}
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UseMockBackend reports whether calls should be served by the in-process
// mock backend instead of a real server.
func (c *Config) UseMockBackend() bool {
	return c.APIBaseURL == "" && c.IsDevelopment()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
