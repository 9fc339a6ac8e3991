package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port        string
		GinMode     string
		Environment string
		LogLevel    string
	}

	Storage struct {
		Type string
	}

	Blob struct {
		Provider      string
		Endpoint      string
		Region        string
		Bucket        string
		AccessKey     string
		SecretKey     string
		UseSSL        bool
		PublicBaseURL string
	}

	Upload struct {
		MaxFileSize  int64
		AllowedTypes []string
	}

	Payment struct {
		KeyID        string
		KeySecret    string
		Currency     string
		CheckoutName string
		ThemeColor   string
	}

	Auth struct {
		JWTSecret     string
		TokenTTL      time.Duration
		AllowDevLogin bool
	}

	Events struct {
		AMQPURL  string
		Exchange string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "giftlist")
	config.DB.Password = getEnv("DB_PASSWORD", "giftlist_password")
	config.DB.Name = getEnv("DB_NAME", "giftlist_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Environment = getEnv("APP_ENV", "development")
	config.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	config.Storage.Type = getEnv("STORAGE_TYPE", "postgres")

	config.Blob.Provider = getEnv("BLOB_PROVIDER", "minio")
	config.Blob.Endpoint = getEnv("BLOB_ENDPOINT", "localhost:9000")
	config.Blob.Region = getEnv("BLOB_REGION", "ap-south-1")
	config.Blob.Bucket = getEnv("BLOB_BUCKET", "giftlist")
	config.Blob.AccessKey = getEnv("BLOB_ACCESS_KEY", "minioadmin")
	config.Blob.SecretKey = getEnv("BLOB_SECRET_KEY", "minioadmin")
	config.Blob.UseSSL = getEnvAsBool("BLOB_USE_SSL", false)
	config.Blob.PublicBaseURL = getEnv("BLOB_PUBLIC_BASE_URL", "")

	config.Upload.MaxFileSize = getEnvAsInt64("MAX_FILE_SIZE", 5242880)
	config.Upload.AllowedTypes = getEnvAsList("UPLOAD_ALLOWED_TYPES", "image/jpeg,image/png,image/gif,image/webp")

	config.Payment.KeyID = getEnv("RAZORPAY_KEY_ID", "")
	config.Payment.KeySecret = getEnv("RAZORPAY_KEY_SECRET", "")
	config.Payment.Currency = getEnv("PAYMENT_CURRENCY", "INR")
	config.Payment.CheckoutName = getEnv("PAYMENT_CHECKOUT_NAME", "Gift Qr")
	config.Payment.ThemeColor = getEnv("PAYMENT_THEME_COLOR", "#3399cc")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	config.Auth.TokenTTL = time.Duration(getEnvAsInt64("JWT_TTL_MINUTES", 60*24)) * time.Minute
	config.Auth.AllowDevLogin = getEnvAsBool("AUTH_ALLOW_DEV_LOGIN", false)

	config.Events.AMQPURL = getEnv("AMQP_URL", "")
	config.Events.Exchange = getEnv("AMQP_EXCHANGE", "giftlist.payments")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// SplitCSV splits a comma separated config value, dropping empty entries
func SplitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	return SplitCSV(getEnv(key, defaultValue))
}
