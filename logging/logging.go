// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Setup sets the log level and, when filename is not empty, mirrors log
// output to that file. The returned function closes the file.
func Setup(level, filename string) (func() error, error) {
	return setup(log.StandardLogger(), os.Stderr, level, filename)
}

func setup(logger *log.Logger, console io.Writer, level, filename string) (func() error, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if filename == "" {
		logger.SetOutput(console)
		return func() error { return nil }, nil
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(console, file))
	return file.Close, nil
}
