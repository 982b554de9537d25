// Package logger configures the process wide logrus logger and hands out
// per module entries.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// Config controls verbosity, output format and error reporting.
type Config struct {
	Verbosity int    // 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Format    string // text|json
	Color     bool
	SentryDSN string
}

// DefaultConfig logs at info level as uncolored text.
func DefaultConfig() Config {
	return Config{
		Verbosity: 3,
		Format:    "text",
	}
}

var levels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// Level maps a numeric verbosity onto a logrus level, clamping out of range
// values.
func Level(verbosity int) logrus.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity >= len(levels) {
		verbosity = len(levels) - 1
	}
	return levels[verbosity]
}

// Setup applies cfg to the standard logrus logger.
func Setup(cfg Config) error {
	return setup(logrus.StandardLogger(), cfg, os.Stderr)
}

func setup(l *logrus.Logger, cfg Config, out io.Writer) error {
	l.SetOutput(out)
	l.SetLevel(Level(cfg.Verbosity))

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return fmt.Errorf("sentry hook: %w", err)
		}
		hook.StacktraceConfiguration.Enable = true
		l.AddHook(hook)
	}
	return nil
}

// New returns an entry of the standard logger tagged with module.
func New(module string) *logrus.Entry {
	return logrus.WithField("module", module)
}
