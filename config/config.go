package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	AppURL    string
	LogLevel  string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres, mysql or sqlite
	DBDSN      string // full DSN, overrides the DB_* parts when set
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	BunnyLibraryID   string
	BunnyAPIKey      string
	BunnySigningKey  string
	BunnyAPIURL      string
	BunnyEmbedURL    string
	PlaybackTokenTTL int // seconds
	UploadMaxBytes   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockBackend   string // redis or database

	LeaderboardCron string

	SendgridAPIKey string
	EmailSender    string

	// Balances credited to a freshly registered account.
	SignupWalletBalance string
	SignupPointsBalance int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		AppURL:    getEnv("APP_URL", "http://localhost:3000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "coursehub"),
		DBPort:     getEnv("DB_PORT", "5432"),

		BunnyLibraryID:   getEnv("BUNNY_STREAM_LIBRARY_ID", ""),
		BunnyAPIKey:      getEnv("BUNNY_STREAM_API_KEY", ""),
		BunnySigningKey:  getEnv("BUNNY_SIGNING_KEY", ""),
		BunnyAPIURL:      getEnv("BUNNY_API_URL", "https://video.bunnycdn.com"),
		BunnyEmbedURL:    getEnv("BUNNY_EMBED_URL", "https://iframe.mediadelivery.net/embed"),
		PlaybackTokenTTL: getEnvInt("PLAYBACK_TOKEN_TTL", 3600),
		UploadMaxBytes:   getEnvInt("UPLOAD_MAX_BYTES", 3*1024*1024*1024),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LockBackend:   getEnv("LOCK_BACKEND", "redis"),

		LeaderboardCron: getEnv("LEADERBOARD_CRON", "0 */6 * * *"),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@coursehub.local"),

		SignupWalletBalance: getEnv("SIGNUP_WALLET_BALANCE", "10"),
		SignupPointsBalance: getEnvInt("SIGNUP_POINTS_BALANCE", 10),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.BunnyLibraryID == "" || AppConfig.BunnyAPIKey == "" {
		log.Println("Warning: BUNNY_STREAM_LIBRARY_ID / BUNNY_STREAM_API_KEY not set. Video uploads will fail unless courses carry their own credentials.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
