// internal/logging/logging.go
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"github.com/larderline/larder-backend/internal/config"
)

// Setup configures the standard logrus logger used throughout the service.
func Setup(cfg config.LogConfig) {
	Configure(logrus.StandardLogger(), cfg, os.Stdout)
}

// Configure applies level and format to any logrus logger. Unknown levels fall back to info.
func Configure(log *logrus.Logger, cfg config.LogConfig, out io.Writer) {
	log.SetOutput(out)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

// GormLogLevel maps DB_LOG_LEVEL onto the gorm logger.
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
