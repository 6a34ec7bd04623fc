package config

import (
	"fmt"
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL" default:"sqlite://banksim.db"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"banksim:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// Store selects the persistence gateway: "database" or "redis".
type Store struct {
	Backend string `envconfig:"BACKEND" default:"database"`
}

// EventBus selects the event bus driver: "memory" or "redis".
type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
}

type Breaker struct {
	Enabled          bool          `envconfig:"ENABLED" default:"true"`
	MaxFailures      uint32        `envconfig:"MAX_FAILURES" default:"5"`
	OpenTimeout      time.Duration `envconfig:"OPEN_TIMEOUT" default:"10s"`
	HalfOpenRequests uint32        `envconfig:"HALF_OPEN_REQUESTS" default:"1"`
}

type LoadRetry struct {
	InitialInterval time.Duration `envconfig:"INITIAL_INTERVAL" default:"50ms"`
	MaxInterval     time.Duration `envconfig:"MAX_INTERVAL" default:"1s"`
	MaxElapsed      time.Duration `envconfig:"MAX_ELAPSED" default:"5s"`
}

type Dispatcher struct {
	Workers int `envconfig:"WORKERS" default:"0"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[banksim]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
	// RateLimitMax is the number of requests per client per window; 0 disables limiting.
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1s"`
}

type App struct {
	Env             string        `envconfig:"APP_ENV" default:"development"`
	ProcessingDelay time.Duration `envconfig:"PROCESSING_DELAY" default:"0s"`
	Server          *Server       `envconfig:"SERVER"`
	Log             *Log          `envconfig:"LOG"`
	DB              *DB           `envconfig:"DATABASE"`
	Store           *Store        `envconfig:"STORE"`
	Redis           *Redis        `envconfig:"REDIS"`
	EventBus        *EventBus     `envconfig:"EVENT_BUS"`
	Breaker         *Breaker      `envconfig:"BREAKER"`
	LoadRetry       *LoadRetry    `envconfig:"LOAD_RETRY"`
	Dispatcher      *Dispatcher   `envconfig:"DISPATCHER"`
}

// Validate rejects option values no component can run with.
func (a *App) Validate() error {
	switch a.Store.Backend {
	case "database", "redis":
	default:
		return fmt.Errorf("STORE_BACKEND must be database or redis, got %q", a.Store.Backend)
	}
	switch a.EventBus.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("EVENT_BUS_DRIVER must be memory or redis, got %q", a.EventBus.Driver)
	}
	if a.ProcessingDelay < 0 {
		return fmt.Errorf("PROCESSING_DELAY must not be negative, got %s", a.ProcessingDelay)
	}
	if a.Dispatcher.Workers < 0 {
		return fmt.Errorf("DISPATCHER_WORKERS must not be negative, got %d", a.Dispatcher.Workers)
	}
	return nil
}
