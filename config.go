package goRelay

import (
	"errors"
	"net/url"
	"strings"

	"github.com/MrEthical07/goRelay/probe"
	"github.com/MrEthical07/goRelay/session"
)

// Config holds every Engine setting. Zero values are not meaningful; start from
// [DefaultConfig].
type Config struct {
	Session SessionConfig
	Probe   ProbeConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// SessionConfig controls the relayed session slot.
type SessionConfig struct {
	// StorageKey names the single slot holding the session record.
	StorageKey string
	// MaxSessionSize bounds a stored record in bytes. Zero disables the check.
	MaxSessionSize int
}

// ProbeConfig controls the auth probe.
type ProbeConfig struct {
	URL          string
	LoginMarkers []string
	// Coalesce lets concurrent AuthCheck messages share one in-flight probe.
	// Each message still gets its own Response.
	Coalesce bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// defaultMaxSessionSize matches the local storage quota browsers give extensions.
const defaultMaxSessionSize = 10 << 20

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			StorageKey:     session.DefaultKey,
			MaxSessionSize: defaultMaxSessionSize,
		},
		Probe: ProbeConfig{
			URL:          probe.DefaultURL,
			LoginMarkers: append([]string(nil), probe.DefaultLoginMarkers...),
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Probe.LoginMarkers = append([]string(nil), cfg.Probe.LoginMarkers...)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Session.StorageKey) == "" {
		return errors.New("Session StorageKey must be set")
	}
	if c.Session.MaxSessionSize < 0 {
		return errors.New("Session MaxSessionSize must be >= 0")
	}

	u, err := url.Parse(c.Probe.URL)
	if err != nil {
		return errors.New("Probe URL is not a valid URL")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return errors.New("Probe URL must be http or https")
	}
	if u.Host == "" {
		return errors.New("Probe URL must be absolute")
	}
	for _, m := range c.Probe.LoginMarkers {
		if strings.TrimSpace(m) == "" {
			return errors.New("Probe LoginMarkers must not contain blank entries")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	return nil
}
