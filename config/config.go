package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ListenAddr   string
	FFmpegPath   string
	YtdlpPath    string
	AudioBitrate string // e.g. "192k", applied to downloaded tracks and exported mixes

	TrackDir string // Directory for downloaded source tracks
	MixDir   string // Scratch directory for mixes before upload

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Mix pipeline tuning
	MixWorkers       int           // Bound on concurrent track download+analysis
	TrackTimeout     time.Duration // Per-track retrieval/analysis deadline
	MaxSearchResults int           // Candidate tracks fetched per mix request
	SearchCacheTTL   time.Duration // Redis TTL for genre search results
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	workBase := getEnv("AUTODJ_WORK_DIR", filepath.Join(os.TempDir(), "autodj"))

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		YtdlpPath:    getEnv("YTDLP_PATH", "yt-dlp"),
		AudioBitrate: getEnv("AUDIO_BITRATE", "192k"),

		TrackDir: filepath.Join(workBase, "tracks"),
		MixDir:   filepath.Join(workBase, "mixes"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // No hardcoded default for credentials
		DBName:     getEnv("DB_NAME", "autodj"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "autodj"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		MixWorkers:       getEnvInt("MIX_WORKERS", 4),
		TrackTimeout:     time.Duration(getEnvInt("TRACK_TIMEOUT_SECONDS", 180)) * time.Second,
		MaxSearchResults: getEnvInt("MAX_SEARCH_RESULTS", 10),
		SearchCacheTTL:   time.Duration(getEnvInt("SEARCH_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}
