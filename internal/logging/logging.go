// Package logging installs the process-wide logger used by the bakery
// packages and the CLI.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

var (
	// Names of the loggers this module creates.
	names = []string{"bakery", "stress", "cli", "sim"}

	// dragonboat refuses a second factory, so it is installed once per process.
	installFactory sync.Once
)

// bakeryLogger implements logger.ILogger with a fixed "LEVEL | name | msg" layout.
type bakeryLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *bakeryLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *bakeryLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *bakeryLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *bakeryLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *bakeryLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *bakeryLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

func (l *bakeryLogger) log(levelStr string, format string, args ...interface{}) {
	l.logger.Printf("%-5s | %-8s | %s", levelStr, l.name, fmt.Sprintf(format, args...))
}

// CreateLogger is a logger.Factory writing to stderr.
func CreateLogger(pkgName string) logger.ILogger {
	return &bakeryLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
}

// ParseLevel converts a level name to a logger.LogLevel.
func ParseLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}

// Init installs CreateLogger as the logger factory and applies level to every
// logger of this module. The factory must be installed before anything logs;
// later calls only change the level.
func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	installFactory.Do(func() { logger.SetLoggerFactory(CreateLogger) })
	for _, name := range names {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
