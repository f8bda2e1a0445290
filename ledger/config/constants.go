package config

import "time"

// Application-wide constants organized by domain

// Database and Performance Constants
const (
	// Drivers
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLitePath = "data/market.db"

	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	DefaultTxTimeout    = 30 * time.Second
	SweepTimeout        = 5 * time.Minute
	StatsQueryTimeout   = 2 * time.Minute
	NetworkDialTimeout  = 5 * time.Second
	ShutdownTimeout     = 15 * time.Second

	// Async task queue
	TaskQueueSize = 4096
	MaxRetries    = 3

	// Cache settings
	PlayerNameCacheSize       = 10000
	PlayerNameCacheExpiration = 15 * time.Minute
)

// Market Constants
const (
	// DefaultOfferDuration is thirty days, in seconds.
	DefaultOfferDuration            = 30 * 24 * 60 * 60
	DefaultStatisticsRefreshMinutes = 60

	// MaxStackChunk is the largest stack handed to the inventory in one deposit.
	MaxStackChunk = 100

	// CounterMask keeps the low 16 bits of an offer id.
	CounterMask = 0xFFFF

	AnonymousName = "Anonymous"

	// DefaultInboxCapacity bounds the stored item rows per player inbox.
	DefaultInboxCapacity = 2000
)

// Logging and Monitoring Constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
