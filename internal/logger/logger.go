package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dinehub/admin-console/internal/config"
)

// New builds the console logger. Output is stdout, a rotated file, or both.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var writers []io.Writer
	switch strings.ToLower(cfg.Output) {
	case "file":
		w, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	case "both":
		w, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		writers = append(writers, os.Stdout, w)
	default:
		writers = append(writers, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return log, nil
}

func fileWriter(cfg config.LogConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}, nil
}

// Module returns an entry tagged with the component name.
func Module(log logrus.FieldLogger, name string) *logrus.Entry {
	if log == nil {
		return Discard().WithField("module", name)
	}
	return log.WithField("module", name)
}

// Discard returns a logger that drops everything, for tests and optional wiring.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
