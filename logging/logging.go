// Package logging contains shared logging helpers for all GateSync components.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// MakeDefaultLoggers returns a Loggers instance with the standard output configuration:
// Debug through Warn go to stdout, Error goes to stderr, and Debug is disabled.
func MakeDefaultLoggers() ldlog.Loggers {
	return MakeLoggers(os.Stdout, os.Stderr)
}

// MakeLoggers returns a Loggers instance that writes non-error output to infoHandle and
// error output to errorHandle. Debug level is disabled by default; callers can enable it
// with SetMinLevel.
func MakeLoggers(infoHandle io.Writer, errorHandle io.Writer) ldlog.Loggers {
	loggers := ldlog.NewDefaultLoggers()
	for _, level := range []ldlog.LogLevel{ldlog.Debug, ldlog.Info, ldlog.Warn} {
		loggers.SetBaseLoggerForLevel(level, log.New(infoHandle, "", log.LstdFlags))
	}
	loggers.SetBaseLoggerForLevel(ldlog.Error, log.New(errorHandle, "", log.LstdFlags))
	loggers.SetMinLevel(ldlog.Info)
	return loggers
}
