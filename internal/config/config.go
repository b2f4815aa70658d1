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
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Engine    EngineConfig    `mapstructure:"engine"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
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
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"` // local | minio
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

// GeneratorConfig 动态出题协作方（OpenAI 兼容接口）
type GeneratorConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EngineConfig 会话评估引擎的可调阈值
type EngineConfig struct {
	TriggerMinTurns       int `mapstructure:"trigger_min_turns"`       // 触发前的最少轮数
	TriggerEveryTurns     int `mapstructure:"trigger_every_turns"`     // 每 N 轮最多触发一次
	TriggerMinElapsedSecs int `mapstructure:"trigger_min_elapsed"`     // 会话开始后的最短等待秒数
	MaxAssessments        int `mapstructure:"max_assessments"`         // 单个会话最多答题数
	TrendWindowDays       int `mapstructure:"trend_window_days"`       // 能力趋势滚动窗口天数
	SummaryCacheSeconds   int `mapstructure:"summary_cache_seconds"`   // 能力概览缓存 TTL
	RecommendThreshold    int `mapstructure:"recommend_threshold"`     // 低于该分数的能力进入补救建议
	RecommendOverallFloor int `mapstructure:"recommend_overall_floor"` // 整体分低于该值时给通用建议
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

	viper.SetEnvPrefix("SKILLSIM")
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

	// Generator
	viper.BindEnv("generator.base_url", "GENERATOR_BASE_URL")
	viper.BindEnv("generator.api_key", "GENERATOR_API_KEY")
	viper.BindEnv("generator.model", "GENERATOR_MODEL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Engine.ApplyDefaults()

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}

// ApplyDefaults 把未配置的引擎阈值补成默认值
func (e *EngineConfig) ApplyDefaults() {
	if e.TriggerMinTurns <= 0 {
		e.TriggerMinTurns = 4
	}
	if e.TriggerEveryTurns <= 0 {
		e.TriggerEveryTurns = 5
	}
	if e.TriggerMinElapsedSecs <= 0 {
		e.TriggerMinElapsedSecs = 90
	}
	if e.MaxAssessments <= 0 {
		e.MaxAssessments = 3
	}
	if e.TrendWindowDays <= 0 {
		e.TrendWindowDays = 30
	}
	if e.SummaryCacheSeconds <= 0 {
		e.SummaryCacheSeconds = 300
	}
	if e.RecommendThreshold <= 0 {
		e.RecommendThreshold = 70
	}
	if e.RecommendOverallFloor <= 0 {
		e.RecommendOverallFloor = 75
	}
}

// TriggerMinElapsed 返回触发前的最短会话时长
func (e EngineConfig) TriggerMinElapsed() time.Duration {
	return time.Duration(e.TriggerMinElapsedSecs) * time.Second
}

// Timeout 返回动态出题调用的超时时间，默认 6 秒
func (g GeneratorConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 6 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}
