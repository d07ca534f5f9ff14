// internal/logging/logging.go
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/scholarship-escrow/internal/config"
)

// Setup configures the global logrus logger from config.
func Setup(cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// EventFields flattens a chain event into logrus fields.
func EventFields(name, emitter string, seq uint64, fields map[string]interface{}) logrus.Fields {
	out := logrus.Fields{
		"event":   name,
		"emitter": emitter,
		"seq":     seq,
	}
	for k, v := range fields {
		out["event."+k] = v
	}
	return out
}
