package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"AraDetector/pkg/logger"
)

// EnvPrefix is the prefix for environment overrides, e.g. ARA_STORAGE_DSN.
const EnvPrefix = "ARA"

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig     `yaml:"server"`
	Log         logger.Config    `yaml:"log"`
	Market      MarketConfig     `yaml:"market"`
	MarketData  MarketDataConfig `yaml:"marketdata"`
	Evaluator   EvaluatorConfig  `yaml:"evaluator"`
	Storage     StorageConfig    `yaml:"storage"`
	Alerts      AlertsConfig     `yaml:"alerts"`
	Cache       CacheConfig      `yaml:"cache"`
	Metrics     MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
	CORS            bool          `yaml:"cors" default:"true"`
	RateLimit       struct {
		RPS   float64 `yaml:"rps" default:"2"`
		Burst int     `yaml:"burst" default:"5"`
	} `yaml:"rate_limit"`
}

// MarketConfig describes the exchange calendar the scanner runs against.
type MarketConfig struct {
	UTCOffsetHours int `yaml:"utc_offset_hours" default:"7" validate:"gte=-12,lte=14"`
}

type MarketDataConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
	RPS     float64       `yaml:"rps" default:"10"`
	Burst   int           `yaml:"burst" default:"10"`
	Retries int           `yaml:"retries" default:"1" validate:"gte=0,lte=5"`
	Backoff time.Duration `yaml:"backoff" default:"200ms"`
	Paths   struct {
		OrderBook     string `yaml:"orderbook" default:"/company-price-feed/v2/orderbook/companies/{code}"`
		BrokerSummary string `yaml:"broker_summary" default:"/marketdetectors/{code}"`
		History       string `yaml:"history" default:"/company-price-feed/historical/summary/{code}"`
		Profile       string `yaml:"profile" default:"/emitten/{code}/info"`
		Watchlist     string `yaml:"watchlist" default:"/watchlist"`
	} `yaml:"paths"`
	Breaker struct {
		MaxRequests         uint32        `yaml:"max_requests" default:"1"`
		Interval            time.Duration `yaml:"interval" default:"60s"`
		Timeout             time.Duration `yaml:"timeout" default:"30s"`
		ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"5"`
	} `yaml:"breaker"`
}

type EvaluatorConfig struct {
	Workers         int `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
	HistorySessions int `yaml:"history_sessions" default:"10" validate:"gte=2"`
	LookbackDays    int `yaml:"lookback_days" default:"15" validate:"gte=1"`
}

type StorageConfig struct {
	Driver          string        `yaml:"driver" default:"sqlite" validate:"oneof=clickhouse postgres sqlite none"`
	DSN             string        `yaml:"dsn" default:"file:ara.db?_pragma=busy_timeout(5000)"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"5m"`
	ClickHouse      struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

type AlertsConfig struct {
	Enabled      bool     `yaml:"enabled"`
	MinLevel     string   `yaml:"min_level" default:"HIGH" validate:"oneof=LOW MEDIUM HIGH CRITICAL"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"ara.alerts"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
}

type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl" default:"60s"`
	Redis struct {
		Enabled   bool   `yaml:"enabled"`
		Addr      string `yaml:"addr" default:"localhost:6379"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix" default:"ara:"`
	} `yaml:"redis"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// envOverrides lists the settings that may be overridden from the environment.
// Unset variables leave the loaded value untouched.
type envOverrides struct {
	Environment       string   `envconfig:"ENVIRONMENT"`
	ServerPort        int      `envconfig:"SERVER_PORT"`
	LogLevel          string   `envconfig:"LOG_LEVEL"`
	MarketDataBaseURL string   `envconfig:"MARKETDATA_BASE_URL"`
	MarketDataToken   string   `envconfig:"MARKETDATA_TOKEN"`
	Workers           int      `envconfig:"EVALUATOR_WORKERS"`
	StorageDriver     string   `envconfig:"STORAGE_DRIVER"`
	StorageDSN        string   `envconfig:"STORAGE_DSN"`
	ClickHouseHost    string   `envconfig:"CLICKHOUSE_HOST"`
	ClickHousePass    string   `envconfig:"CLICKHOUSE_PASSWORD"`
	AlertsEnabled     *bool    `envconfig:"ALERTS_ENABLED"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic        string   `envconfig:"KAFKA_TOPIC"`
	RedisEnabled      *bool    `envconfig:"REDIS_ENABLED"`
	RedisAddr         string   `envconfig:"REDIS_ADDR"`
	RedisPassword     string   `envconfig:"REDIS_PASSWORD"`
}

// Load builds the configuration from defaults, the optional YAML file at path and the environment.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	setString(&c.Environment, env.Environment)
	setString(&c.Log.Level, env.LogLevel)
	setString(&c.MarketData.BaseURL, env.MarketDataBaseURL)
	setString(&c.MarketData.Token, env.MarketDataToken)
	setString(&c.Storage.Driver, env.StorageDriver)
	setString(&c.Storage.DSN, env.StorageDSN)
	setString(&c.Storage.ClickHouse.Host, env.ClickHouseHost)
	setString(&c.Storage.ClickHouse.Password, env.ClickHousePass)
	setString(&c.Alerts.Topic, env.KafkaTopic)
	setString(&c.Cache.Redis.Addr, env.RedisAddr)
	setString(&c.Cache.Redis.Password, env.RedisPassword)
	if env.ServerPort > 0 {
		c.Server.Port = env.ServerPort
	}
	if env.Workers > 0 {
		c.Evaluator.Workers = env.Workers
	}
	if env.AlertsEnabled != nil {
		c.Alerts.Enabled = *env.AlertsEnabled
	}
	if len(env.KafkaBrokers) > 0 {
		c.Alerts.Brokers = env.KafkaBrokers
	}
	if env.RedisEnabled != nil {
		c.Cache.Redis.Enabled = *env.RedisEnabled
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	c.Alerts.MinLevel = strings.ToUpper(c.Alerts.MinLevel)

	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Storage.Driver != "none" && c.Storage.Driver != "clickhouse" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
	}
	if c.Alerts.Enabled && len(c.Alerts.Brokers) == 0 {
		return fmt.Errorf("alerts.brokers cannot be empty when alerts are enabled")
	}
	return nil
}
