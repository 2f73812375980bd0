package shared

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a timestamped logger on stderr at the named level
func SetupLogger(level string) *log.Logger {
	return NewLogger(os.Stderr, level)
}

// NewLogger configures a timestamped logger at the named level, falling back
// to info for unknown names
func NewLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
