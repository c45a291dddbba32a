package launcher

import (
	"fmt"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

var verbosityLevels = map[int]logrus.Level{
	0: logrus.FatalLevel,
	1: logrus.ErrorLevel,
	2: logrus.WarnLevel,
	3: logrus.InfoLevel,
	4: logrus.DebugLevel,
	5: logrus.TraceLevel,
}

// setupLogging builds the process logger from config. The Sentry hook is
// attached only when a DSN is configured.
func setupLogging(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level, ok := verbosityLevels[cfg.Logging.Verbosity]
	if !ok {
		return nil, fmt.Errorf("invalid log verbosity %d", cfg.Logging.Verbosity)
	}
	log.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Logging.Color,
			FullTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Logging.Format)
	}

	if cfg.Sentry.DSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.Sentry.DSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("setup sentry hook: %w", err)
		}
		log.AddHook(hook)
	}

	return log, nil
}
