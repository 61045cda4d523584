package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goRelay/transport"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(nativeCmd)
}

var nativeCmd = &cobra.Command{
	Use:   "native [origin]",
	Short: "Run as a browser native-messaging host on stdin/stdout",
	Long: `Run as a browser native-messaging host. The browser starts this command
and passes the calling extension origin as the first argument. Stdout carries
protocol frames only; all logging goes to stderr.`,
	Args: cobra.ArbitraryArgs,
	// Chrome on Windows appends --parent-window=<handle>.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runNative,
}

func runNative(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	if len(args) > 0 {
		logger = logger.With("origin", args[0])
	}

	engine, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Installed(ctx)
	host := transport.NewNativeHost(engine, os.Stdin, os.Stdout, logger)
	return host.Serve(ctx)
}
