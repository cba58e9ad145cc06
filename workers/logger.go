package workers

import (
	"rowlly_listings/logging"
	"rowlly_listings/models"
)

// LogFunc receives a worker's run summary.
type LogFunc func(level models.LogLevel, source, message string)

// DefaultLogger writes summaries to the process log.
var DefaultLogger LogFunc = func(level models.LogLevel, source, message string) {
	switch level {
	case models.LogLevelError:
		logging.Errorf("%s: %s", source, message)
	case models.LogLevelWarn:
		logging.Warnf("%s: %s", source, message)
	case models.LogLevelDebug:
		logging.Debugf("%s: %s", source, message)
	default:
		logging.Infof("%s: %s", source, message)
	}
}

// NoOpLogger drops summaries.
var NoOpLogger LogFunc = func(level models.LogLevel, source, message string) {}
