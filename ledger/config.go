package ledger

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	DB      DBConfig      `toml:"db"`
	Market  MarketConfig  `toml:"market"`
	Catalog CatalogConfig `toml:"catalog"`
	Web     WebConfig     `toml:"web"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
	// Path is the SQLite file used when Driver is "sqlite".
	Path string `toml:"path"`
}

type MarketConfig struct {
	// OfferDuration is in seconds.
	OfferDuration                 int64 `toml:"offer_duration"`
	CheckExpiredOffersEachMinutes int   `toml:"check_expired_offers_each_minutes"`
	StatisticsRefreshMinutes      int   `toml:"statistics_refresh_minutes"`
	MaxOffersPerPlayer            int   `toml:"max_offers_per_player"`
}

type CatalogConfig struct {
	Path string `toml:"path"`
}

// WebConfig enables the HTTP API when Port is set.
type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

func (c WebConfig) Enabled() bool {
	return c.Port > 0
}

func (c WebConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// OfferDurationTime returns the offer lifetime as a time.Duration.
func (c MarketConfig) OfferDurationTime() time.Duration {
	return time.Duration(c.OfferDuration) * time.Second
}

// ExpiryCheckInterval may be zero or negative, which disables periodic checks.
func (c MarketConfig) ExpiryCheckInterval() time.Duration {
	return time.Duration(c.CheckExpiredOffersEachMinutes) * time.Minute
}

func (c MarketConfig) StatisticsRefreshInterval() time.Duration {
	return time.Duration(c.StatisticsRefreshMinutes) * time.Minute
}

func (c *Config) applyDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = config.DriverPostgres
	}
	if c.DB.Driver == config.DriverSQLite && c.DB.Path == "" {
		c.DB.Path = config.DefaultSQLitePath
	}
	if c.Market.OfferDuration == 0 {
		c.Market.OfferDuration = config.DefaultOfferDuration
	}
	// check_expired_offers_each_minutes is left alone: 0 or less is the
	// documented way to run a single sweep at startup.
	if c.Market.StatisticsRefreshMinutes == 0 {
		c.Market.StatisticsRefreshMinutes = config.DefaultStatisticsRefreshMinutes
	}
}
