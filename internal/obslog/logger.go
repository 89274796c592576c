// Package obslog configures structured logging for the gateway and
// provides an fsnotify-driven follower for the log-tailing CLI subcommand.
package obslog

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogPath returns the default log file location under the platform cache
// directory, mirroring the original prototype's "<cache>/meshexec/meshexec.log"
// convention.
func LogPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "meshexec", "meshexec.log"), nil
}

// New builds a zap.Logger writing structured JSON to stderr and, when
// logFile is non-empty, additionally to that file. level is parsed with
// zapcore's level-unmarshaling ("debug", "info", "warn", "error").
func New(levelName string, logFile string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	outputs := []string{"stderr"}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		outputs = append(outputs, logFile)
	}
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = outputs

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
