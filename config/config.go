package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 支持的存储驱动
const (
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	ObjectsMinio  = "minio"
	ObjectsGCS    = "gcs"
	ObjectsMemory = "memory"
)

// Config stores the application configuration.
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
	JWTSecret       string // 为空时写操作不做鉴权

	// 日志配置
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// 键值存储
	StoreDriver    string
	TracksTable    string
	PlaylistsTable string

	// Redis配置
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	// 对象存储
	ObjectsDriver      string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool
	MinioRegion        string
	ObjectPublicURL    string // 覆盖公共 URL 前缀，例如 CDN 地址
	GCSBucket          string
	GCSCredentialsFile string
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

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
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

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWTSecret:       os.Getenv("JWT_SECRET"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 30),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),

		StoreDriver:    getEnv("STORE_DRIVER", StoreRedis),
		TracksTable:    getEnv("TRACKS_TABLE", "tracks"),
		PlaylistsTable: getEnv("PLAYLISTS_TABLE", "playlists"),

		RedisHost:      getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:        getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "catalog"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "catalog"),
		SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),

		ObjectsDriver:      getEnv("OBJECTS_DRIVER", ObjectsMinio),
		MinioEndpoint:      getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getEnv("MINIO_BUCKET", "tracks"),
		MinioUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:        getEnv("MINIO_REGION", "us-east-1"),
		ObjectPublicURL:    getEnv("OBJECT_PUBLIC_URL", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}
}

// Validate checks driver names and the settings each driver depends on.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreRedis, StoreMySQL, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TracksTable == "" || c.PlaylistsTable == "" {
		return fmt.Errorf("table names must not be empty")
	}
	if c.TracksTable == c.PlaylistsTable {
		return fmt.Errorf("tracks and playlists must use different tables")
	}

	switch c.ObjectsDriver {
	case ObjectsMinio:
		if c.MinioBucket == "" {
			return fmt.Errorf("MINIO_BUCKET is required for the minio driver")
		}
	case ObjectsGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs driver")
		}
	case ObjectsMemory:
	default:
		return fmt.Errorf("unknown OBJECTS_DRIVER %q", c.ObjectsDriver)
	}
	return nil
}
