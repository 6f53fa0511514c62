package app

import (
	"strings"

	"github.com/sirupsen/logrus"

	"rar-studio/internal/config"
)

// SetupLogging applies the configured level and formatter to the standard logger
func SetupLogging(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
