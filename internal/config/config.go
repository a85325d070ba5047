package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Dataset     DatasetConfig   `mapstructure:"dataset"`
	Analytics   AnalyticsConfig `mapstructure:"analytics"`
	Insight     InsightConfig   `mapstructure:"insight"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

type DatasetConfig struct {
	SampleDays int   `mapstructure:"sample_days"`
	SampleSeed int64 `mapstructure:"sample_seed"`
	LoadSample bool  `mapstructure:"load_sample"`
}

// AnalyticsConfig carries the statistical knobs shared by the engines.
// Trailing windows are relative to the maximum observed sale date.
type AnalyticsConfig struct {
	TrailingWindowDays   int     `mapstructure:"trailing_window_days"`
	LongWindowDays       int     `mapstructure:"long_window_days"`
	TopProducts          int     `mapstructure:"top_products"`
	ForecastMaxHorizon   int     `mapstructure:"forecast_max_horizon"`
	ModelTrees           int     `mapstructure:"model_trees"`
	ModelMaxDepth        int     `mapstructure:"model_max_depth"`
	ModelSeed            int64   `mapstructure:"model_seed"`
	ModelMinRows         int     `mapstructure:"model_min_rows"`
	ModelTestFraction    float64 `mapstructure:"model_test_fraction"`
	AnomalyMinDays       int     `mapstructure:"anomaly_min_days"`
	AnomalyContamination float64 `mapstructure:"anomaly_contamination"`
	AnomalySigma         float64 `mapstructure:"anomaly_sigma"`
	SegmentMinCustomers  int     `mapstructure:"segment_min_customers"`
}

type InsightConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" json:"-" yaml:"-"`
	Model        string `mapstructure:"model"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("insight.gemini_api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}

	// Read config file; fall back to defaults and environment variables
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Analytics.ModelTestFraction <= 0 || config.Analytics.ModelTestFraction >= 1 {
		return nil, fmt.Errorf("model test fraction must be in (0,1), got %v", config.Analytics.ModelTestFraction)
	}
	if config.Analytics.AnomalyContamination <= 0 || config.Analytics.AnomalyContamination >= 0.5 {
		return nil, fmt.Errorf("anomaly contamination must be in (0,0.5), got %v", config.Analytics.AnomalyContamination)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Redis (optional result cache backend)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Cache
	viper.SetDefault("cache.ttl_minutes", 30)

	// Dataset
	viper.SetDefault("dataset.sample_days", 90)
	viper.SetDefault("dataset.sample_seed", 42)
	viper.SetDefault("dataset.load_sample", true)

	// Analytics
	viper.SetDefault("analytics.trailing_window_days", 30)
	viper.SetDefault("analytics.long_window_days", 90)
	viper.SetDefault("analytics.top_products", 5)
	viper.SetDefault("analytics.forecast_max_horizon", 365)
	viper.SetDefault("analytics.model_trees", 100)
	viper.SetDefault("analytics.model_max_depth", 10)
	viper.SetDefault("analytics.model_seed", 42)
	viper.SetDefault("analytics.model_min_rows", 10)
	viper.SetDefault("analytics.model_test_fraction", 0.2)
	viper.SetDefault("analytics.anomaly_min_days", 10)
	viper.SetDefault("analytics.anomaly_contamination", 0.1)
	viper.SetDefault("analytics.anomaly_sigma", 3.0)
	viper.SetDefault("analytics.segment_min_customers", 4)

	// Insight
	viper.SetDefault("insight.gemini_api_key", "")
	viper.SetDefault("insight.model", "gemini-1.5-flash")
}

// DefaultAnalytics returns the analytics defaults without touching viper
// state; used by tests and library consumers.
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		TrailingWindowDays:   30,
		LongWindowDays:       90,
		TopProducts:          5,
		ForecastMaxHorizon:   365,
		ModelTrees:           100,
		ModelMaxDepth:        10,
		ModelSeed:            42,
		ModelMinRows:         10,
		ModelTestFraction:    0.2,
		AnomalyMinDays:       10,
		AnomalyContamination: 0.1,
		AnomalySigma:         3.0,
		SegmentMinCustomers:  4,
	}
}
