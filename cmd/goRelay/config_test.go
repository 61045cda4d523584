package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	for _, name := range []string{"store", "redis-addr", "sqlite-path", "log-level", "addr", "cookie-file", "auth-url"} {
		cmd.Flags().String(name, "", "")
	}
	return cmd
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "GORELAY_STORE", "GORELAY_HTTP_ADDR", "GORELAY_REDIS_PREFIX", "GORELAY_LOG_LEVEL")
	t.Setenv("GORELAY_SQLITE_PATH", filepath.Join(t.TempDir(), "relay.db"))

	cfg, err := loadConfig(newTestCommand())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store != storeSQLite {
		t.Fatalf("expected sqlite default, got %q", cfg.Store)
	}
	if cfg.HTTPAddr != "127.0.0.1:8787" || cfg.RedisPrefix != "gorelay" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("GORELAY_STORE", "sqlite")
	t.Setenv("GORELAY_HTTP_ADDR", "127.0.0.1:1")
	t.Setenv("GORELAY_COOKIE_FILE", "/env/cookies.txt")

	cmd := newTestCommand()
	if err := cmd.Flags().Parse([]string{"--store", "MEMORY", "--addr", "127.0.0.1:2", "--cookie-file", "/flag/cookies.txt"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store != storeMemory || cfg.HTTPAddr != "127.0.0.1:2" || cfg.CookieFile != "/flag/cookies.txt" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("GORELAY_STORE", "etcd")
	if _, err := loadConfig(newTestCommand()); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenStoreBackends(t *testing.T) {
	cases := []hostConfig{
		{Store: storeMemory},
		{Store: storeRedis, RedisPrefix: "test"},
		{Store: storeSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "relay.db")},
	}

	for _, cfg := range cases {
		t.Run(cfg.Store, func(t *testing.T) {
			store, cleanup, err := openStore(cfg, discardLogger())
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer cleanup()

			ctx := context.Background()
			if err := store.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := store.Get(ctx, "k")
			if err != nil || string(got) != `{"a":1}` {
				t.Fatalf("get: %s %v", got, err)
			}
		})
	}
}

func TestOpenStoreUnreachableRedis(t *testing.T) {
	cfg := hostConfig{Store: storeRedis, RedisAddr: "127.0.0.1:1"}
	if _, _, err := openStore(cfg, discardLogger()); err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestServeMuxRoutes(t *testing.T) {
	engine, cleanup, err := buildEngine(hostConfig{Store: storeMemory}, discardLogger())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	defer cleanup()

	srv := httptest.NewServer(newServeMux(engine, discardLogger()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/message", "application/json", strings.NewReader(`{"type":"LOGOUT_SUPABASE"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != `{"success":true}` {
		t.Fatalf("message: %d %s", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "gorelay_logout_total 1") {
		t.Fatalf("metrics missing logout counter:\n%s", body)
	}
}

func TestBuildEngineSendsCookieFile(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if c, err := r.Cookie("sb-access"); err != nil || c.Value != "at-1" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer site.Close()

	cookies := filepath.Join(t.TempDir(), "cookies.txt")
	line := "# Netscape HTTP Cookie File\n127.0.0.1\tFALSE\t/\tFALSE\t0\tsb-access\tat-1\n"
	if err := os.WriteFile(cookies, []byte(line), 0o600); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}

	check := func(cfg hostConfig) bool {
		t.Helper()
		engine, cleanup, err := buildEngine(cfg, discardLogger())
		if err != nil {
			t.Fatalf("buildEngine: %v", err)
		}
		defer cleanup()
		loggedIn, err := engine.CheckAuth(context.Background())
		if err != nil {
			t.Fatalf("CheckAuth: %v", err)
		}
		return loggedIn
	}

	base := hostConfig{Store: storeMemory, AuthURL: site.URL + "/create-reference"}
	if check(base) {
		t.Fatal("expected signed out without a cookie file")
	}

	withCookies := base
	withCookies.CookieFile = cookies
	if !check(withCookies) {
		t.Fatal("expected signed in with the cookie file")
	}

	missing := base
	missing.CookieFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, _, err := buildEngine(missing, discardLogger()); err == nil {
		t.Fatal("expected error for a missing cookie file")
	}
}
