package config

import (
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL" default:"sqlite://ledger.db"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	// Retry bounds transient-fault retries when connecting and when opening a transaction.
	Retry *Retry `envconfig:"RETRY"`
}

type Retry struct {
	MaxAttempts     int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	InitialInterval time.Duration `envconfig:"INITIAL_INTERVAL" default:"200ms"`
	MaxInterval     time.Duration `envconfig:"MAX_INTERVAL" default:"30s"`
}

type Redis struct {
	// URL selects the Redis idempotency store when set; memory is used otherwise.
	URL       string `envconfig:"URL" default:""`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"ledger:"`
}

type EventBus struct {
	// Driver is "memory" or "redis". The redis driver reuses Redis.URL.
	Driver string `envconfig:"DRIVER" default:"memory"`
	Group  string `envconfig:"GROUP" default:"ledger"`

	// Consumer names this process in the group; defaults to "<group>-<hostname>".
	Consumer  string        `envconfig:"CONSUMER"`
	ClaimIdle time.Duration `envconfig:"CLAIM_IDLE" default:"1m"`
}

type Idempotency struct {
	TTL time.Duration `envconfig:"TTL" default:"24h"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[ledger]"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Redis       *Redis       `envconfig:"REDIS"`
	EventBus    *EventBus    `envconfig:"EVENT_BUS"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	Idempotency *Idempotency `envconfig:"IDEMPOTENCY"`
}
