package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Init creates and sets the package-level default logger. All pipeline
// diagnostics go to stderr so they never mix with artifact or checkpoint
// output.
func Init(level log.Level) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	log.SetDefault(logger)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a
// log.Level. Unknown strings default to InfoLevel.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
