package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all simulator configuration.
type Config struct {
	Sim     SimConfig
	HTTP    HTTPConfig
	Logging LogConfig
}

// SimConfig holds run parameters and loop timings.
type SimConfig struct {
	Procs   int    `envconfig:"IPCSIM_PROCS" default:"3"`
	Channel string `envconfig:"IPCSIM_CHANNEL" default:"queue"`

	Tick          time.Duration `envconfig:"IPCSIM_TICK" default:"10ms"`
	WorkMin       time.Duration `envconfig:"IPCSIM_WORK_MIN" default:"50ms"`
	WorkMax       time.Duration `envconfig:"IPCSIM_WORK_MAX" default:"200ms"`
	SendMin       time.Duration `envconfig:"IPCSIM_SEND_MIN" default:"500ms"`
	SendMax       time.Duration `envconfig:"IPCSIM_SEND_MAX" default:"2s"`
	DeadlockPause time.Duration `envconfig:"IPCSIM_DEADLOCK_PAUSE" default:"1s"`

	ShmRecvWait    time.Duration `envconfig:"IPCSIM_SHM_RECV_WAIT" default:"100ms"`
	ContentionHold time.Duration `envconfig:"IPCSIM_CONTENTION_HOLD" default:"150ms"`
	IdleThreshold  time.Duration `envconfig:"IPCSIM_IDLE_THRESHOLD" default:"2s"`

	JoinTimeout   time.Duration `envconfig:"IPCSIM_JOIN_TIMEOUT" default:"1s"`
	DrainInterval time.Duration `envconfig:"IPCSIM_DRAIN_INTERVAL" default:"100ms"`
	StatsInterval time.Duration `envconfig:"IPCSIM_STATS_INTERVAL" default:"500ms"`

	ExportDir string `envconfig:"IPCSIM_EXPORT_DIR" default:"."`
}

// HTTPConfig holds the status server configuration.
type HTTPConfig struct {
	Addr string `envconfig:"IPCSIM_HTTP_ADDR" default:":8090"`
}

// LogConfig holds operational logging configuration.
type LogConfig struct {
	Level       string `envconfig:"IPCSIM_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"IPCSIM_LOG_DEV" default:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or falls back to
// the defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			Procs:          3,
			Channel:        "queue",
			Tick:           10 * time.Millisecond,
			WorkMin:        50 * time.Millisecond,
			WorkMax:        200 * time.Millisecond,
			SendMin:        500 * time.Millisecond,
			SendMax:        2 * time.Second,
			DeadlockPause:  time.Second,
			ShmRecvWait:    100 * time.Millisecond,
			ContentionHold: 150 * time.Millisecond,
			IdleThreshold:  2 * time.Second,
			JoinTimeout:    time.Second,
			DrainInterval:  100 * time.Millisecond,
			StatsInterval:  500 * time.Millisecond,
			ExportDir:      ".",
		},
		HTTP: HTTPConfig{
			Addr: ":8090",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
