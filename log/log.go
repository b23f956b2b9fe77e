// Package log provides leveled logging backed by logrus.
//
// Output goes to stderr unless logs.write is set, in which case a daily file under where.Logs() is used.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/syncwatch/syncwatch/filesystem"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/where"
)

var std = logrus.New()

// Setup configures output, format and level from the global configuration.
func Setup() error {
	out, err := output()
	if err != nil {
		return err
	}
	std.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		std.SetFormatter(&logrus.JSONFormatter{})
	} else {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)

	return nil
}

func output() (io.Writer, error) {
	if !viper.GetBool(key.LogsWrite) {
		return os.Stderr, nil
	}

	path := filepath.Join(where.Logs(), fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// WithField starts a structured entry.
func WithField(k string, v any) *logrus.Entry {
	return std.WithField(k, v)
}

// WithFields starts a structured entry with several fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Error(args ...any)                 { std.Error(args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }
func Warn(args ...any)                  { std.Warn(args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Info(args ...any)                  { std.Info(args...) }
func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Tracef(format string, args ...any) { std.Tracef(format, args...) }
