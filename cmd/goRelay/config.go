package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	goRelay "github.com/MrEthical07/goRelay"
	"github.com/MrEthical07/goRelay/probe"
	"github.com/MrEthical07/goRelay/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	storeMemory = "memory"
	storeRedis  = "redis"
	storeSQLite = "sqlite"
)

// hostConfig is the process-level configuration. Engine settings keep their
// library defaults.
type hostConfig struct {
	Store       string `env:"GORELAY_STORE" envDefault:"sqlite"`
	RedisAddr   string `env:"GORELAY_REDIS_ADDR"`
	RedisPrefix string `env:"GORELAY_REDIS_PREFIX" envDefault:"gorelay"`
	SQLitePath  string `env:"GORELAY_SQLITE_PATH"`
	HTTPAddr    string `env:"GORELAY_HTTP_ADDR" envDefault:"127.0.0.1:8787"`
	LogLevel    string `env:"GORELAY_LOG_LEVEL" envDefault:"info"`
	Audit       bool   `env:"GORELAY_AUDIT"`
	// CookieFile seeds the auth check's cookie jar. Empty sends no cookies.
	CookieFile string `env:"GORELAY_COOKIE_FILE"`
	// AuthURL overrides the page fetched by the auth check.
	AuthURL string `env:"GORELAY_AUTH_URL"`
}

func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// loadConfig reads the environment, then applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (hostConfig, error) {
	var cfg hostConfig
	if err := parseEnv(&cfg); err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		"store":       &cfg.Store,
		"redis-addr":  &cfg.RedisAddr,
		"sqlite-path": &cfg.SQLitePath,
		"log-level":   &cfg.LogLevel,
		"addr":        &cfg.HTTPAddr,
		"cookie-file": &cfg.CookieFile,
		"auth-url":    &cfg.AuthURL,
	}
	for name, dst := range overrides {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		*dst = flag.Value.String()
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case storeMemory, storeRedis, storeSQLite:
	default:
		return cfg, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.Store == storeSQLite && cfg.SQLitePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.SQLitePath = filepath.Join(dir, "goRelay", "relay.db")
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes text records to w. Native mode owns stdout, so hosts
// always pass stderr.
func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// openStore opens the configured backend. The returned func releases it.
func openStore(cfg hostConfig, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.Store {
	case storeMemory:
		logger.Warn("using in-memory session store; sessions are lost on exit")
		return session.NewMemoryStore(), func() {}, nil

	case storeRedis:
		addr := cfg.RedisAddr
		var mr *miniredis.Miniredis
		if addr == "" {
			m, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			mr = m
			addr = m.Addr()
			logger.Warn("no redis address set, using embedded miniredis", "addr", addr)
		}

		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
			return nil, nil, fmt.Errorf("ping redis at %s: %w", addr, err)
		}
		logger.Info("using redis session store", "addr", addr, "prefix", cfg.RedisPrefix)

		cleanup := func() {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
		}
		return session.NewRedisStore(client, cfg.RedisPrefix), cleanup, nil

	case storeSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := session.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite session store", "path", cfg.SQLitePath)
		return store, func() { _ = store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// buildEngine opens the store and wires an Engine. The returned func closes
// both.
func buildEngine(cfg hostConfig, logger *slog.Logger) (*goRelay.Engine, func(), error) {
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	rc := goRelay.DefaultConfig()
	rc.Metrics.EnableLatencyHistograms = true
	if cfg.AuthURL != "" {
		rc.Probe.URL = cfg.AuthURL
	}
	b := goRelay.New().WithStore(store).WithLogger(logger)
	if cfg.Audit {
		rc.Audit.Enabled = true
		b = b.WithAuditSink(goRelay.NewJSONWriterSink(os.Stderr))
	}
	if cfg.CookieFile != "" {
		prober, err := newCookieProber(rc.Probe, cfg.CookieFile, logger)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		b = b.WithProber(prober)
	}

	engine, err := b.WithConfig(rc).Build()
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, func() {
		engine.Close()
		closeStore()
	}, nil
}

// newCookieProber builds the auth checker with its jar seeded from path. The
// host has no browser profile, so this is its only source of site cookies.
func newCookieProber(pc goRelay.ProbeConfig, path string, logger *slog.Logger) (*probe.Prober, error) {
	prober, err := probe.New(pc.URL, probe.WithLoginMarkers(pc.LoginMarkers...))
	if err != nil {
		return nil, fmt.Errorf("build auth checker: %w", err)
	}
	n, err := probe.LoadCookieFile(prober.Jar(), path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded auth cookies", "path", path, "cookies", n)
	return prober, nil
}
