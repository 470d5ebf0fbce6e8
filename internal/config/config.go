// Package config holds the client configuration.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// DefaultHeartbeatSeconds is the keepalive interval used when none is set.
const DefaultHeartbeatSeconds = 30

// Config stores all parameters gathered from the config file and flags.
type Config struct {
	URL              string `toml:"url"`               // websocket endpoint, ws:// or wss://
	AuthBody         string `toml:"auth_body"`         // body of the auth packet
	AccessKey        string `toml:"access_key"`        // optional, enables signed headers
	AccessSecret     string `toml:"access_secret"`     // optional, enables signed headers
	HeartbeatSeconds int    `toml:"heartbeat_seconds"` // keepalive interval
	MetricsAddr      string `toml:"metrics_addr"`      // empty disables the metrics endpoint
	Debug            bool   `toml:"debug"`
}

// Default returns a Config with defaults applied.
func Default() Config {
	return Config{HeartbeatSeconds: DefaultHeartbeatSeconds}
}

// Load reads a TOML file. Unset fields take their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.HeartbeatSeconds == 0 {
		cfg.HeartbeatSeconds = DefaultHeartbeatSeconds
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to connect.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("missing url")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return errors.Errorf("invalid url: %s", c.URL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
	}
	if c.HeartbeatSeconds <= 0 {
		return errors.Errorf("heartbeat_seconds must be positive, got %d", c.HeartbeatSeconds)
	}
	if (c.AccessKey == "") != (c.AccessSecret == "") {
		return errors.New("access_key and access_secret must be set together")
	}
	return nil
}

// HeartbeatInterval returns the keepalive interval.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// Signed reports whether request signing is configured.
func (c Config) Signed() bool {
	return c.AccessKey != "" && c.AccessSecret != ""
}
