package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Retention RetentionConfig `mapstructure:"retention"`
	Store     StoreConfig     `mapstructure:"store"`
	Export    ExportConfig    `mapstructure:"export"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

// AnalyticsConfig holds the derived-metric thresholds. They are deployment
// policy rather than code, and are hot-reloadable through the config watcher.
type AnalyticsConfig struct {
	StressThreshold int           `mapstructure:"stress_threshold"`
	StressWindow    int           `mapstructure:"stress_window"`
	LowSleepHours   float64       `mapstructure:"low_sleep_hours"`
	AttendanceFloor float64       `mapstructure:"attendance_floor"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl_seconds"`
}

type RetentionConfig struct {
	// BatchLimit caps how many students a single purge run processes.
	// Zero means no cap.
	BatchLimit int `mapstructure:"batch_limit"`
}

type StoreConfig struct {
	LockTimeout time.Duration `mapstructure:"lock_timeout_seconds"`
}

type ExportConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("WELLBEING")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Export / object storage
	viper.BindEnv("export.type", "EXPORT_TYPE")
	viper.BindEnv("export.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("export.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("export.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("export.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	viper.SetDefault("analytics.stress_threshold", 4)
	viper.SetDefault("analytics.stress_window", 2)
	viper.SetDefault("analytics.low_sleep_hours", 6.0)
	viper.SetDefault("analytics.attendance_floor", 0.5)
	viper.SetDefault("analytics.cache_ttl_seconds", 60)
	viper.SetDefault("store.lock_timeout_seconds", 3)
	viper.SetDefault("retention.batch_limit", 0)
	viper.SetDefault("export.type", "local")
	viper.SetDefault("export.local_path", "exports")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Analytics.CacheTTL = cfg.Analytics.CacheTTL * time.Second
	cfg.Store.LockTimeout = cfg.Store.LockTimeout * time.Second

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := validateAnalytics(&cfg.Analytics); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateAnalytics(a *AnalyticsConfig) error {
	if a.StressThreshold < 1 || a.StressThreshold > 5 {
		return fmt.Errorf("analytics.stress_threshold must be within [1,5], got %d", a.StressThreshold)
	}
	if a.StressWindow < 1 {
		return fmt.Errorf("analytics.stress_window must be >= 1, got %d", a.StressWindow)
	}
	if a.AttendanceFloor < 0 || a.AttendanceFloor > 1 {
		return fmt.Errorf("analytics.attendance_floor must be within [0,1], got %g", a.AttendanceFloor)
	}
	if a.LowSleepHours < 0 {
		return fmt.Errorf("analytics.low_sleep_hours must be >= 0, got %g", a.LowSleepHours)
	}
	return nil
}
