// Package log provides structured logging to daily files under the logs directory.
//
// Until Setup enables it with logs.write, every call is discarded.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/key"
	"github.com/vibe-audio/vibe/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var logger = discard()

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Setup opens today's log file and applies logs.level and logs.json.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		logger = discard()
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		l.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	logger = l
	return nil
}

// Fields attaches structured context to a log line.
type Fields = logrus.Fields

// With emits an info line carrying fields, e.g. the book and chapter a playback event belongs to.
func With(fields Fields, msg string) {
	logger.WithFields(fields).Info(msg)
}

// WarnWith is With at warning level.
func WarnWith(fields Fields, msg string) {
	logger.WithFields(fields).Warn(msg)
}

func Error(args ...interface{})                 { logger.Error(args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
func Warn(args ...interface{})                  { logger.Warn(args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
