package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger used by the command and writers.
var Logger = zerolog.Nop()

// ParseLevel maps a configured level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup points Logger at out with console formatting and the given level.
func Setup(level string, out io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	Logger = zerolog.New(console).Level(ParseLevel(level)).With().Timestamp().Logger()
	return Logger
}

// SetupJSON points Logger at out with line-delimited JSON output.
func SetupJSON(level string, out io.Writer) zerolog.Logger {
	Logger = zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
	return Logger
}
