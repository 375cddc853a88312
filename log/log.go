// Package log writes diagnostics to a daily file under the logs directory.
//
// Logging is off unless logs.write is set; every call is then a no-op, so packages log freely.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/filesystem"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/where"
)

// Fields is a set of structured values attached to one entry.
type Fields = logrus.Fields

var (
	enabled atomic.Bool
	logger  = logrus.New()
)

// Setup opens today's log file and applies the configured format and level.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		enabled.Store(false)
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
	return nil
}

func configure(out io.Writer, json bool, level string) {
	logger.SetOutput(out)

	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	enabled.Store(true)
}

// Enabled reports whether entries are being written.
func Enabled() bool {
	return enabled.Load()
}

// With returns an entry carrying fields. The entry discards output while logging is off.
func With(fields Fields) *logrus.Entry {
	if !enabled.Load() {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		return discard.WithFields(fields)
	}
	return logger.WithFields(fields)
}

func Error(args ...any) {
	if enabled.Load() {
		logger.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled.Load() {
		logger.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled.Load() {
		logger.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled.Load() {
		logger.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled.Load() {
		logger.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled.Load() {
		logger.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled.Load() {
		logger.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled.Load() {
		logger.Debugf(format, args...)
	}
}
