package obslog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
)

// TailLogs follows path, writing each new line to out as it is appended.
// It seeks to the current end of the file, then watches for fsnotify Write
// events, reading and emitting whatever was appended since the last read —
// the event-driven replacement for the original prototype's polling
// BufReader-over-seek-to-end loop.
func TailLogs(ctx context.Context, path string, out io.Writer, colorize func(line string) string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seeking %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	drain := func() {
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				if colorize != nil {
					line = colorize(line)
				}
				fmt.Fprint(out, line)
			}
			if err != nil {
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				drain()
			}
		}
	}
}

// ColorizeLevel returns a coloring function for TailLogs that wraps known
// zap level tokens ("INFO", "WARN", "ERROR", "DEBUG") in ANSI color codes,
// or a no-op identity function when disabled.
func ColorizeLevel(enabled bool) func(string) string {
	if !enabled {
		return func(line string) string { return line }
	}
	colors := map[string]string{
		"DEBUG": "\033[36m",
		"INFO":  "\033[32m",
		"WARN":  "\033[33m",
		"ERROR": "\033[31m",
	}
	const reset = "\033[0m"
	return func(line string) string {
		for level, color := range colors {
			if containsToken(line, level) {
				return color + line + reset
			}
		}
		return line
	}
}

func containsToken(line, token string) bool {
	for i := 0; i+len(token) <= len(line); i++ {
		if line[i:i+len(token)] == token {
			return true
		}
	}
	return false
}
