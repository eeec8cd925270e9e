package config

import (
	"errors"
	"fmt"
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

// Collection store drivers.
const (
	StoreDriverRPC      = "rpc"
	StoreDriverWorkbook = "workbook"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Insights InsightsConfig
}

// StoreConfig selects where the seven collections are read from.
type StoreConfig struct {
	Driver       string
	RPCURL       string
	RPCToken     string
	RPCTimeout   time.Duration
	WorkbookPath string
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
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// InsightsConfig tunes the derived dashboard views.
type InsightsConfig struct {
	Timezone                 string
	LeaderboardSize          int
	FeedSize                 int
	FeedComponentLimit       int
	FeedAttendanceWindowDays int
	ActiveStudentWindowDays  int
	ScopeByTeacher           bool
}

// Location resolves the school timezone, falling back to UTC when unknown.
func (c InsightsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:       strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		RPCURL:       v.GetString("STORE_RPC_URL"),
		RPCToken:     v.GetString("STORE_RPC_TOKEN"),
		RPCTimeout:   parseDuration(v.GetString("STORE_RPC_TIMEOUT"), 30*time.Second),
		WorkbookPath: v.GetString("STORE_WORKBOOK_PATH"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Insights = InsightsConfig{
		Timezone:                 v.GetString("SCHOOL_TIMEZONE"),
		LeaderboardSize:          v.GetInt("LEADERBOARD_SIZE"),
		FeedSize:                 v.GetInt("FEED_SIZE"),
		FeedComponentLimit:       v.GetInt("FEED_COMPONENT_LIMIT"),
		FeedAttendanceWindowDays: v.GetInt("FEED_ATTENDANCE_WINDOW_DAYS"),
		ActiveStudentWindowDays:  v.GetInt("ACTIVE_STUDENT_WINDOW_DAYS"),
		ScopeByTeacher:           v.GetBool("DASHBOARD_SCOPE_BY_TEACHER"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverRPC:
		if c.Store.RPCURL == "" {
			return fmt.Errorf("STORE_RPC_URL is required for the %s driver", StoreDriverRPC)
		}
	case StoreDriverWorkbook:
		if c.Store.WorkbookPath == "" {
			return fmt.Errorf("STORE_WORKBOOK_PATH is required for the %s driver", StoreDriverWorkbook)
		}
	case StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverRPC)
	v.SetDefault("STORE_RPC_URL", "")
	v.SetDefault("STORE_RPC_TOKEN", "")
	v.SetDefault("STORE_RPC_TIMEOUT", "30s")
	v.SetDefault("STORE_WORKBOOK_PATH", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "classroom_insight")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "sheet")

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHOOL_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("LEADERBOARD_SIZE", 10)
	v.SetDefault("FEED_SIZE", 8)
	v.SetDefault("FEED_COMPONENT_LIMIT", 5)
	v.SetDefault("FEED_ATTENDANCE_WINDOW_DAYS", 2)
	v.SetDefault("ACTIVE_STUDENT_WINDOW_DAYS", 7)
	v.SetDefault("DASHBOARD_SCOPE_BY_TEACHER", true)
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
