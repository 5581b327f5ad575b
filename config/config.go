package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	Port     string
	LogLevel string

	// Remote document store and blobs
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	BlobDriver    string
	AWSRegion     string
	AWSBucketName string

	// Local cache
	CacheDriver   string
	CachePath     string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Authentication
	AuthStrategy      string
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration

	// Import pipeline
	RenderEngine       string
	MicrolinkURL       string
	MicrolinkAPIKey    string
	ChromeDriverPath   string
	ProxyChain         string
	RenderTimeout      time.Duration
	ProxyTimeout       time.Duration
	ImportMirrorImages bool
)

const (
	DefaultMicrolinkURL = "https://api.microlink.io"
	DefaultProxyChain   = "raw:https://corsproxy.io/?,allorigins:https://api.allorigins.win/get"
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	Port = getEnv("PORT", "8080")
	LogLevel = getEnv("LOG_LEVEL", "info")

	StoreDriver = getEnv("STORE_DRIVER", "mongo")
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	MongoDatabase = getEnv("MONGO_DATABASE", "marketchoice")
	BlobDriver = getEnv("BLOB_DRIVER", "s3")
	AWSRegion = getEnv("AWS_REGION", "ap-south-1")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	CacheDriver = getEnv("CACHE_DRIVER", "sqlite")
	CachePath = getEnv("CACHE_PATH", defaultCachePath())
	RedisAddress = getEnv("REDIS_ADDRESS", "localhost:6379")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	RedisDB = getInt("REDIS_DB", 0)

	AuthStrategy = getEnv("AUTH_STRATEGY", "local")
	AdminUsername = getEnv("ADMIN_USERNAME", "admin")
	AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	JWTSecret = os.Getenv("JWT_SECRET")
	TokenTTL = getDuration("TOKEN_TTL", 24*time.Hour)

	RenderEngine = getEnv("RENDER_ENGINE", "microlink")
	MicrolinkURL = getEnv("MICROLINK_URL", DefaultMicrolinkURL)
	MicrolinkAPIKey = os.Getenv("MICROLINK_API_KEY")
	ChromeDriverPath = getEnv("CHROMEDRIVER_PATH", "/usr/local/bin/chromedriver")
	ProxyChain = getEnv("PROXY_CHAIN", DefaultProxyChain)
	RenderTimeout = getDuration("RENDER_TIMEOUT", 20*time.Second)
	ProxyTimeout = getDuration("PROXY_TIMEOUT", 12*time.Second)
	ImportMirrorImages = getBool("IMPORT_MIRROR_IMAGES", false)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data", "cache.db")
	}
	return filepath.Join(home, ".marketchoice", "cache.db")
}
