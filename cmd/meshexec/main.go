// Command meshexec runs the MeshExec gateway: a cobra-based CLI wrapping
// the config loader, logger, and event loop.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "meshexec",
	Short: "Bridge a Meshtastic mesh to local shell commands",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", envOr("MESHEXEC_CONFIG_FILE", "config.yaml"), "path to the command-tree config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("MESHEXEC_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(tailLogsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a failure to the exit codes documented for the
// surrounding binary: 1 for config-load failure, 2 for transport-open
// failure, 1 for anything else unrecognized.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, ErrTransportOpen):
		return 2
	case errors.Is(err, ErrConfigLoad):
		return 1
	default:
		return 1
	}
}
