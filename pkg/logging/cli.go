package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
)

// CLIFormatter is a logrus formatter for terminal output. Messages are
// printed as a single line with fields appended as key=value pairs.
type CLIFormatter struct {
	Prefix string
}

func (f *CLIFormatter) Format(e *log.Entry) ([]byte, error) {
	msg := e.Message
	if f.Prefix != "" {
		msg = "[" + f.Prefix + "] " + msg
	}

	if len(e.Data) > 0 {
		attrs := make([]string, 0, len(e.Data))
		for k, v := range e.Data {
			attrs = append(attrs, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(attrs)
		msg = msg + ": " + strings.Join(attrs, " ")
	}

	if e.Level <= log.ErrorLevel {
		msg = colorRed + msg + colorReset
	} else {
		msg = colorGreen + msg + colorReset
	}

	return []byte(msg + "\n"), nil
}

// SetDefaultCLILogger configures the standard logger for CLI use.
func SetDefaultCLILogger(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&CLIFormatter{})
	log.SetLevel(ParseLogLevel(level))
}

// ParseLogLevel converts a string log level to a logrus level.
// Defaults to info for unrecognized strings.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
