package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
	// structured is the same logger for direct calls, which sit one frame
	// closer to the caller than the LogX wrappers.
	structured *log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "Multiview 🧊 ",
					CallerOffset:    1,
				})
				l.SetLevel(log.InfoLevel)
				s := l.With()
				s.SetCallerOffset(0)
				singleton = &logger{Logger: l, structured: s}
			})
	}
	return singleton
}

// SetLogLevel parses one of debug, info, warn, error, fatal and applies it.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	l := getLogger()
	l.SetLevel(lvl)
	l.structured.SetLevel(lvl)
	return nil
}

// Logger exposes the shared logger for structured, key/value logging.
func Logger() *log.Logger {
	return getLogger().structured
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
