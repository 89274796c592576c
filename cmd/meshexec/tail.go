package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dark-Alex-17/meshexec/internal/obslog"
)

var noColor bool

func init() {
	tailLogsCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized level highlighting")
}

var tailLogsCmd = &cobra.Command{
	Use:   "tail-logs",
	Short: "Follow the gateway's log file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := obslog.LogPath()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		colorize := obslog.ColorizeLevel(!noColor)
		return obslog.TailLogs(ctx, path, cmd.OutOrStdout(), colorize)
	},
}
