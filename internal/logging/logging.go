// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus logger shared by all commands.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Levels lists the accepted values for the log level setting.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

// Formats lists the accepted values for the log format setting.
var Formats = []string{"text", "json"}

// New returns a logger writing to w at the given level and format.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)

	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return log, nil
}

// ParseLevel maps a level name to a logrus level. Empty means info.
func ParseLevel(level string) (logrus.Level, error) {
	switch level {
	case "":
		return logrus.InfoLevel, nil
	case "trace":
		return logrus.TraceLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
