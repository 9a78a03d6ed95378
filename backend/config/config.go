package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	JWTSecret     string
	TokenTTLHours int
	ServerPort    string

	LogFormat string
	LogLevel  string

	ProgressBackend string
	ProgressPath    string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	RoadmapsDir    string
	UploadDir      string
	MaxUploadBytes int
	Timezone       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "roadmap_tracker"),
		DBPath:     getEnv("DB_PATH", "data/roadmaps.db"),

		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 72),
		ServerPort:    getEnv("SERVER_PORT", "8080"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		ProgressBackend: getEnv("PROGRESS_BACKEND", "badger"),
		ProgressPath:    getEnv("PROGRESS_PATH", "data/progress"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		RoadmapsDir:    getEnv("ROADMAPS_DIR", "data/roadmaps"),
		UploadDir:      getEnv("UPLOAD_DIR", "static/profile_images"),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 2*1024*1024),
		Timezone:       getEnv("TIMEZONE", "UTC"),
	}, nil
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return n
}
