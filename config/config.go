package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the delivery layer.
type Config struct {
	// Home is the data directory holding the database and state blobs.
	Home string

	// BoardURL is the base URL of the board server.
	BoardURL string

	// DatabaseDSN overrides the default sqlite path under Home.
	DatabaseDSN string

	Log      Log
	Protocol Protocol
}

// Log controls zerolog output.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// Protocol carries the timing and backpressure constants of the session and
// delivery protocol.
type Protocol struct {
	// BrokenThreshold is how long announcement retries may keep failing
	// before escalating to session renewal.
	BrokenThreshold time.Duration

	// DedupWindow is the +-window for incoming-message deduplication.
	DedupWindow time.Duration

	// HTTPTimeout bounds individual board requests.
	HTTPTimeout time.Duration

	// Engine construction parameters, passed through to the session engine.
	MaxAnnouncementAge  time.Duration
	MaxAnnouncementSkew time.Duration
	MaxMessageAge       time.Duration
	MaxMessageSkew      time.Duration
	MaxInactivity       time.Duration
	KeepAliveInterval   time.Duration
	MaxSessionLag       int
}

// Load reads configuration from an optional file plus BOARDLINE_* environment
// variables, with defaults for every protocol constant.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("protocol.brokenthreshold", 24*time.Hour)
	v.SetDefault("protocol.dedupwindow", 30*time.Second)
	v.SetDefault("protocol.httptimeout", 10*time.Second)
	v.SetDefault("protocol.maxannouncementage", 7*24*time.Hour)
	v.SetDefault("protocol.maxannouncementskew", 5*time.Minute)
	v.SetDefault("protocol.maxmessageage", 7*24*time.Hour)
	v.SetDefault("protocol.maxmessageskew", 5*time.Minute)
	v.SetDefault("protocol.maxinactivity", 30*24*time.Hour)
	v.SetDefault("protocol.keepaliveinterval", 24*time.Hour)
	v.SetDefault("protocol.maxsessionlag", 20)

	v.SetEnvPrefix("boardline")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
