// Command goRelay hosts the session relay and auth probe for a browser
// extension, either as an HTTP endpoint or as a native-messaging host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "goRelay",
	Short:         "Session relay and auth probe host for the extension",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("store", "", "session backend: memory, redis or sqlite (env GORELAY_STORE)")
	f.String("redis-addr", "", "redis address; empty runs an embedded miniredis (env GORELAY_REDIS_ADDR)")
	f.String("sqlite-path", "", "sqlite database file (env GORELAY_SQLITE_PATH)")
	f.String("log-level", "", "debug, info, warn or error (env GORELAY_LOG_LEVEL)")
	f.String("cookie-file", "", "cookies.txt or JSON cookie export sent with the auth check (env GORELAY_COOKIE_FILE)")
	f.String("auth-url", "", "page fetched by the auth check (env GORELAY_AUTH_URL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "goRelay: %v\n", err)
		os.Exit(1)
	}
}
