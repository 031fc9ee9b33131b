package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Uploads  UploadsConfig
	Sweeper  SweeperConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthConfig gates the admin surface. When disabled, writes are attributed to DefaultAuthor.
type AuthConfig struct {
	Enabled           bool
	DefaultAuthor     string
	BootstrapPassword string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig controls caching of public listings.
type CacheConfig struct {
	Enabled bool
	Driver  string
	TTL     time.Duration
}

// UploadsConfig controls media storage & validation.
type UploadsConfig struct {
	Dir              string
	PublicPath       string
	MaxImageBytes    int64
	MaxPDFBytes      int64
	ThumbnailWidth   int
	ThumbnailHeight  int
	ThumbnailWorkers int
	RateLimit        float64
	RateBurst        int
}

// SweeperConfig schedules removal of uploads no content references.
type SweeperConfig struct {
	Enabled     bool
	Schedule    string
	GracePeriod time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Auth = AuthConfig{
		Enabled:           v.GetBool("AUTH_ENABLED"),
		DefaultAuthor:     v.GetString("DEFAULT_AUTHOR"),
		BootstrapPassword: v.GetString("ADMIN_BOOTSTRAP_PASSWORD"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		Driver:  strings.ToLower(v.GetString("CACHE_DRIVER")),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	maxImage := v.GetInt64("UPLOAD_MAX_IMAGE_SIZE")
	if maxImage <= 0 {
		maxImage = 2 * 1024 * 1024
	}
	maxPDF := v.GetInt64("UPLOAD_MAX_PDF_SIZE")
	if maxPDF <= 0 {
		maxPDF = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:              v.GetString("UPLOAD_DIR"),
		PublicPath:       v.GetString("UPLOAD_PUBLIC_PATH"),
		MaxImageBytes:    maxImage,
		MaxPDFBytes:      maxPDF,
		ThumbnailWidth:   v.GetInt("UPLOAD_THUMBNAIL_WIDTH"),
		ThumbnailHeight:  v.GetInt("UPLOAD_THUMBNAIL_HEIGHT"),
		ThumbnailWorkers: v.GetInt("UPLOAD_THUMBNAIL_WORKERS"),
		RateLimit:        v.GetFloat64("UPLOAD_RATE_LIMIT"),
		RateBurst:        v.GetInt("UPLOAD_RATE_BURST"),
	}

	cfg.Sweeper = SweeperConfig{
		Enabled:     v.GetBool("ENABLE_UPLOAD_SWEEPER"),
		Schedule:    v.GetString("UPLOAD_SWEEPER_SCHEDULE"),
		GracePeriod: parseDuration(v.GetString("UPLOAD_SWEEPER_GRACE"), 24*time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "website_ukim")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "website-ukim")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("DEFAULT_AUTHOR", "admin")
	v.SetDefault("ADMIN_BOOTSTRAP_PASSWORD", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_DRIVER", CacheDriverMemory)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/uploads")
	v.SetDefault("UPLOAD_MAX_IMAGE_SIZE", 2*1024*1024)
	v.SetDefault("UPLOAD_MAX_PDF_SIZE", 10*1024*1024)
	v.SetDefault("UPLOAD_THUMBNAIL_WIDTH", 480)
	v.SetDefault("UPLOAD_THUMBNAIL_HEIGHT", 480)
	v.SetDefault("UPLOAD_THUMBNAIL_WORKERS", 2)
	v.SetDefault("UPLOAD_RATE_LIMIT", 2)
	v.SetDefault("UPLOAD_RATE_BURST", 10)

	v.SetDefault("ENABLE_UPLOAD_SWEEPER", false)
	v.SetDefault("UPLOAD_SWEEPER_SCHEDULE", "@daily")
	v.SetDefault("UPLOAD_SWEEPER_GRACE", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
