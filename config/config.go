package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// Database configuration
	DBType         string // sqlite, mysql, postgres
	DBDSN          string
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	DBMaxOpenConns int
	LockTimeout    time.Duration

	JWTSecret string

	// Redis configuration; empty address disables the advisory lock and the redis bus
	RedisAddress string
	EventBus     string // local, redis
	EventChannel string

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigin  string

	// Zero disables the pending auto-sync sweeper
	SweepInterval time.Duration
}

// Load reads configuration from the environment, after loading .env if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBType:         getEnv("DB_TYPE", "sqlite"),
		DBDSN:          getEnv("DB_DSN", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBName:         getEnv("DB_NAME", "menu_sync"),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		LockTimeout:    time.Duration(getEnvAsInt("LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
		JWTSecret:      getEnv("JWT_SECRET", ""),
		RedisAddress:   getEnv("REDIS_ADDRESS", ""),
		EventBus:       getEnv("EVENT_BUS", "local"),
		EventChannel:   getEnv("EVENT_CHANNEL", "menu-sync:version-created"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),
		AllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
		SweepInterval:  time.Duration(getEnvAsInt("AUTO_SYNC_SWEEP_SECONDS", 0)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
