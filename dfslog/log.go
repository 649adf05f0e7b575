// Package dfslog exports logging primitives shared by the naming
// server, storage servers, and the RPC transport. It mimics Go's
// standard log package closely enough to be a drop-in replacement,
// but every message carries a level so verbosity can be tuned without
// recompiling.
package dfslog

import (
	"os"
	"sync"

	"github.com/op/go-logging"
)

// Logger is the interface for logging messages at a fixed level.
type Logger interface {
	// Printf writes a formatted message to the log.
	Printf(format string, v ...interface{})

	// Print writes a message to the log.
	Print(v ...interface{})

	// Println writes a line to the log.
	Println(v ...interface{})
}

// Level is the level of logging.
type Level int

// The levels of logging, ordered from most to least verbose.
const (
	Ldebug    = Level(logging.DEBUG)
	Linfo     = Level(logging.INFO)
	Lerror    = Level(logging.ERROR)
	Ldisabled = Level(1000) // Some big value we'll never use.
	Linvalid  = Level(-2)
)

func (l Level) String() string {
	switch l {
	case Ldebug:
		return "debug"
	case Linfo:
		return "info"
	case Lerror:
		return "error"
	case Ldisabled:
		return "disabled"
	}
	return "unknown error level"
}

func levelFromString(s string) Level {
	switch s {
	case "debug":
		return Ldebug
	case "info":
		return Linfo
	case "error":
		return Lerror
	case "disabled":
		return Ldisabled
	}
	return Linvalid
}

// Pre-allocated loggers at each level. Use these directly, or via the
// package-level Printf/Print/Println, which log at Linfo.
var (
	Debug = newLogger(Ldebug)
	Info  = newLogger(Linfo)
	Error = newLogger(Lerror)

	mu           sync.Mutex
	currentLevel = Linfo
	backend      = logging.NewLogBackend(os.Stderr, "", 0)
	module       = logging.MustGetLogger("dfs")
)

func init() {
	formatter := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05.000} %{level:.4s} %{shortfile}: %{message}`,
	)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))
}

type logger struct {
	level logging.Level
}

var _ Logger = (*logger)(nil)

func newLogger(level Level) Logger {
	return &logger{level: logging.Level(level)}
}

func (l *logger) logEnabled() bool {
	return At(Level(l.level))
}

// Printf writes a formatted message to the log at this logger's level.
func (l *logger) Printf(format string, v ...interface{}) {
	if !l.logEnabled() {
		return
	}
	switch l.level {
	case logging.DEBUG:
		module.Debugf(format, v...)
	case logging.ERROR:
		module.Errorf(format, v...)
	default:
		module.Infof(format, v...)
	}
}

// Print writes a message to the log at this logger's level.
func (l *logger) Print(v ...interface{}) {
	if !l.logEnabled() {
		return
	}
	switch l.level {
	case logging.DEBUG:
		module.Debug(v...)
	case logging.ERROR:
		module.Error(v...)
	default:
		module.Info(v...)
	}
}

// Println writes a line to the log at this logger's level.
func (l *logger) Println(v ...interface{}) {
	l.Print(v...)
}

// SetLevel sets the current logging level by name. Lower levels than
// current are not logged.
func SetLevel(level string) error {
	l := levelFromString(level)
	if l == Linvalid {
		return &invalidLevelError{level}
	}
	mu.Lock()
	currentLevel = l
	mu.Unlock()
	return nil
}

type invalidLevelError struct{ level string }

func (e *invalidLevelError) Error() string {
	return "dfslog: invalid log level " + e.level
}

// CurrentLevel returns the current logging level.
func CurrentLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

// At returns whether the given level will currently be logged.
func At(level Level) bool {
	// go-logging numbers its levels from least to most verbose
	// (ERROR < INFO < DEBUG), so a level is logged when it is no more
	// verbose than the current one.
	cur := CurrentLevel()
	return cur != Ldisabled && level <= cur
}

// Printf writes a formatted message to the log at Linfo.
func Printf(format string, v ...interface{}) { Info.Printf(format, v...) }

// Print writes a message to the log at Linfo.
func Print(v ...interface{}) { Info.Print(v...) }

// Println writes a line to the log at Linfo.
func Println(v ...interface{}) { Info.Println(v...) }
