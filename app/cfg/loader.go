package cfg

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"feedstash" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"feedstash" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"feedstash" description:"Database name"`

	// Application configuration
	Port         string  `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	PollInterval int     `long:"poll-interval" env:"POLL_INTERVAL" default:"30" description:"Source polling interval in seconds"`
	FetchTimeout int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-source fetch timeout in seconds"`
	FetchRPS     float64 `long:"fetch-rps" env:"FETCH_RPS" default:"2" description:"Global outbound fetch rate limit in requests per second"`
	FetchBurst   int     `long:"fetch-burst" env:"FETCH_BURST" default:"4" description:"Outbound fetch burst size"`
	SourcesFile  string  `long:"sources-file" env:"SOURCES_FILE" description:"Optional YAML file with sources to register at startup"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"feedstash/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:       raw.DBHost,
		DBPort:       raw.DBPort,
		DBUser:       raw.DBUser,
		DBPassword:   raw.DBPassword,
		DBName:       raw.DBName,
		Port:         raw.Port,
		PollInterval: raw.PollInterval,
		FetchTimeout: raw.FetchTimeout,
		FetchRPS:     raw.FetchRPS,
		FetchBurst:   raw.FetchBurst,
		SourcesFile:  raw.SourcesFile,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
