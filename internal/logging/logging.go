// Package logging is a small leveled logger shared by the extractors and the
// config loader. Output goes to stderr by default; the level is global and
// safe to change from any goroutine.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
)

// Level is a logging verbosity. Higher levels include all lower ones.
type Level int32

// Log levels, from quietest to most verbose.
const (
	None Level = iota
	Error
	Warning
	Info
	Debug
)

var levelPrefixes = map[Level]string{
	Error:   "[ERROR] ",
	Warning: "[WARN] ",
	Info:    "[INFO] ",
	Debug:   "[DEBUG] ",
}

var levelNames = map[Level]string{
	None:    "none",
	Error:   "error",
	Warning: "warn",
	Info:    "info",
	Debug:   "debug",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

var currentLevel atomic.Int32
var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

func init() {
	currentLevel.Store(int32(Info))
}

// SetLevel sets the global level, clamped to [None, Debug].
func SetLevel(level Level) {
	if level < None {
		level = None
	} else if level > Debug {
		level = Debug
	}
	currentLevel.Store(int32(level))
	if level == Debug {
		logf(Debug, "Log level set to %s", level)
	}
}

// GetLevel returns the global level.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

// Enabled reports whether messages at level would be written.
func Enabled(level Level) bool {
	return level != None && int32(level) <= currentLevel.Load()
}

// ParseLevel converts a case-insensitive level name to a Level.
// Unknown names yield Info and an error.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return None, nil
	case "error":
		return Error, nil
	case "warn", "warning":
		return Warning, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Info, fmt.Errorf("invalid log level string: '%s'", name)
	}
}

// SetupLogging parses name and applies it, falling back to Info with a
// warning when the name is invalid. It returns the level actually set.
func SetupLogging(name string) Level {
	level, err := ParseLevel(name)
	if err != nil {
		logf(Warning, "Invalid log level '%s', defaulting to 'info': %v", name, err)
	}
	SetLevel(level)
	return level
}

// SetOutput redirects the logger, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logf writes a formatted message if level is enabled. Debug messages are
// prefixed with the caller's file, line and function.
func Logf(level Level, format string, v ...interface{}) {
	logf(level, format, v...)
}

func logf(level Level, format string, v ...interface{}) {
	if !Enabled(level) {
		return
	}
	prefix, ok := levelPrefixes[level]
	if !ok {
		prefix = "[UNKN] "
	}
	if level == Debug {
		prefix += callerInfo(3)
	}
	logger.Println(prefix + fmt.Sprintf(format, v...))
}

// callerInfo describes the frame skip levels above itself as "file:line:func ".
func callerInfo(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???:0:??? "
	}
	funcName := "???"
	if f := runtime.FuncForPC(pc); f != nil {
		funcName = filepath.Base(f.Name())
	}
	return fmt.Sprintf("%s:%d:%s ", filepath.Base(file), line, funcName)
}
