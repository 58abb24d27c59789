package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the logger every component receives. Lambdas log JSON to
// stdout, the CLI logs text to stderr so it never mixes with command output.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	var out io.Writer = os.Stderr
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		out = os.Stdout
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	logger.SetOutput(out)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

func LogError(logger logrus.FieldLogger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
