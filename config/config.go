package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger          `mapstructure:"logger"`
	DB         Database        `mapstructure:"database"`
	API        API             `mapstructure:"api"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
	Fetcher    Fetcher         `mapstructure:"fetcher"`
	Cache      Cache           `mapstructure:"cache"`
	Telegram   TelegramConfig  `mapstructure:"telegram"`
	Claims     ClaimsConfig    `mapstructure:"claims"`
	Scoring    ScoringConfig   `mapstructure:"scoring"`
	Regime     RegimeConfig    `mapstructure:"regime"`
	Collectors CollectorConfig `mapstructure:"collectors"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"required"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name" validate:"required"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	MaxConcurrency     int           `mapstructure:"max_concurrency"`
	TimeoutDuration    time.Duration `mapstructure:"timeout_duration"`
	UnhealthyThreshold int           `mapstructure:"unhealthy_threshold"`
	RunHistoryRetained int           `mapstructure:"run_history_retained_days"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Fetcher struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	BaseBackoff       time.Duration `mapstructure:"base_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	DomainMinInterval time.Duration `mapstructure:"domain_min_interval"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	BotToken            string        `mapstructure:"bot_token"`
	ChatID              string        `mapstructure:"chat_id"`
	Enabled             bool          `mapstructure:"enabled"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
	TimeoutDuration     time.Duration `mapstructure:"timeout_duration"`
}

type ClaimsConfig struct {
	TriageThreshold        int           `mapstructure:"triage_threshold"`
	CorroborationThreshold int           `mapstructure:"corroboration_threshold"`
	CorroborationWindow    time.Duration `mapstructure:"corroboration_window"`
	StaleTimeout           time.Duration `mapstructure:"stale_timeout"`
}

type ScoringConfig struct {
	FundingWeight        float64 `mapstructure:"funding_weight"`
	EnforcementWeight    float64 `mapstructure:"enforcement_weight"`
	DeliverabilityWeight float64 `mapstructure:"deliverability_weight"`
}

type RegimeConfig struct {
	// Lookback is the rolling-window size in observations, IngestWindow is
	// how far back the first ingest sweep reads events on startup.
	Lookback     int           `mapstructure:"lookback"`
	MinHistory   int           `mapstructure:"min_history"`
	IngestWindow time.Duration `mapstructure:"ingest_window"`
}

type CollectorConfig struct {
	RegulatorFeedURL  string `mapstructure:"regulator_feed_url"`
	FedSeriesURL      string `mapstructure:"fed_series_url"`
	ComexReportURL    string `mapstructure:"comex_report_url"`
	NewswireURL       string `mapstructure:"newswire_url"`
	SocialFirehoseURL string `mapstructure:"social_firehose_url"`
}

func Load() (*Config, error) {
	// A local .env is optional, real deployments inject env vars directly.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("scheduler.max_concurrency", 5)
	viper.SetDefault("scheduler.timeout_duration", "120s")
	viper.SetDefault("scheduler.unhealthy_threshold", 3)
	viper.SetDefault("scheduler.run_history_retained_days", 30)

	viper.SetDefault("fetcher.timeout", "30s")
	viper.SetDefault("fetcher.max_retries", 3)
	viper.SetDefault("fetcher.base_backoff", "1s")
	viper.SetDefault("fetcher.max_backoff", "30s")
	viper.SetDefault("fetcher.domain_min_interval", "2s")
	viper.SetDefault("fetcher.cache_ttl", "5m")

	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("claims.triage_threshold", 40)
	viper.SetDefault("claims.corroboration_threshold", 60)
	viper.SetDefault("claims.corroboration_window", "168h")
	viper.SetDefault("claims.stale_timeout", "168h")

	viper.SetDefault("scoring.funding_weight", 0.35)
	viper.SetDefault("scoring.enforcement_weight", 0.30)
	viper.SetDefault("scoring.deliverability_weight", 0.35)

	viper.SetDefault("regime.lookback", 90)
	viper.SetDefault("regime.min_history", 20)
	viper.SetDefault("regime.ingest_window", "2160h")

	viper.SetDefault("telegram.max_request_per_second", 1)
	viper.SetDefault("telegram.timeout_duration", "10s")
}
