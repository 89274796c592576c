package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dark-Alex-17/meshexec/internal/gateway"
	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
	"github.com/Dark-Alex-17/meshexec/internal/obslog"
	"github.com/Dark-Alex-17/meshexec/internal/transport"
)

// ErrConfigLoad and ErrTransportOpen distinguish the two documented
// non-zero exit codes (§6) from a generic runtime failure.
var (
	ErrConfigLoad    = errors.New("config load failed")
	ErrTransportOpen = errors.New("transport open failed")
)

var transportKind string

func init() {
	serveCmd.Flags().StringVar(&transportKind, "transport", "serial", "transport to use: mock or serial")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway event loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := meshconfig.Load(configFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}

		logPath, err := obslog.LogPath()
		if err != nil {
			logPath = ""
		}
		logger, err := obslog.New(logLevel, logPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}
		defer logger.Sync()

		var t transport.Transport
		switch transportKind {
		case "mock":
			t = transport.NewMock()
		case "serial":
			return fmt.Errorf("%w: serial transport not available in this build", ErrTransportOpen)
		default:
			return fmt.Errorf("%w: unknown transport kind %q", ErrTransportOpen, transportKind)
		}

		gw := gateway.New(cfg, t, logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		return gw.Run(ctx)
	},
}
