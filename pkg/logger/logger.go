// Package logger writes leveled log entries, filtered by area, to a
// rotating file. Program output never goes through it.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
)

// LogLevel definiert die verschiedenen Log-Level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// LogArea names the part of the system an entry comes from. Each area is
// switched on or off with Debug.log_<area>.
type LogArea string

const (
	AreaProgram  LogArea = "program"
	AreaRun      LogArea = "run"
	AreaTerminal LogArea = "terminal"
	AreaSession  LogArea = "session"
	AreaAuth     LogArea = "auth"
	AreaConfig   LogArea = "config"
	AreaGeneral  LogArea = "general"
)

// ListAreas gibt alle verfügbaren Bereiche zurück
func ListAreas() []LogArea {
	return []LogArea{
		AreaProgram, AreaRun, AreaTerminal, AreaSession,
		AreaAuth, AreaConfig, AreaGeneral,
	}
}

// Logger holds the filter settings, read once at startup, and the open
// log file.
type Logger struct {
	enabled bool
	level   LogLevel
	areas   map[LogArea]bool

	mu            sync.Mutex
	file          *os.File
	logPath       string
	maxSize       int64
	rotationCount int
	currentSize   int64
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

// Initialize initialisiert das globale Logging-System
func Initialize() error {
	var err error
	initOnce.Do(func() {
		l := newLoggerFromConfig()
		if err = l.open(); err == nil {
			globalLogger = l
		}
	})
	return err
}

func newLoggerFromConfig() *Logger {
	l := &Logger{
		enabled:       configuration.GetBool("Debug", "enable_debug_logging", true),
		level:         parseLogLevel(configuration.GetString("Debug", "log_level", "INFO")),
		areas:         make(map[LogArea]bool),
		logPath:       configuration.GetString("Debug", "log_file", "debug.log"),
		maxSize:       int64(configuration.GetInt("Debug", "max_log_size_mb", 10)) * 1024 * 1024,
		rotationCount: configuration.GetInt("Debug", "log_rotation_count", 3),
	}
	for _, area := range ListAreas() {
		l.areas[area] = configuration.GetBool("Debug", "log_"+string(area), false)
	}
	return l
}

// open appends to the log file, creating its directory if needed.
func (l *Logger) open() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.currentSize = 0
	if stat, err := file.Stat(); err == nil {
		l.currentSize = stat.Size()
	}
	return nil
}

// rotate shifts debug.log to debug.log.1, .1 to .2 and so on, dropping
// the oldest. l.mu must be held.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.rotationCount < 1 {
		os.Remove(l.logPath)
	} else {
		os.Remove(fmt.Sprintf("%s.%d", l.logPath, l.rotationCount))
		for i := l.rotationCount - 1; i >= 1; i-- {
			os.Rename(fmt.Sprintf("%s.%d", l.logPath, i), fmt.Sprintf("%s.%d", l.logPath, i+1))
		}
		os.Rename(l.logPath, l.logPath+".1")
	}

	file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.currentSize = 0
	return nil
}

func (l *Logger) shouldLog(level LogLevel, area LogArea) bool {
	return l.enabled && level >= l.level && l.areas[area]
}

func formatEntry(now time.Time, level LogLevel, area LogArea, caller string, message string) string {
	return fmt.Sprintf("[%s] %s [%s] [%s] %s\n",
		now.Format("2006-01-02 15:04:05.000"),
		level,
		caller,
		strings.ToUpper(string(area)),
		message)
}

// writeLog schreibt den Log-Eintrag. callerDepth skips the public wrapper
// frames so the entry names the calling file.
func (l *Logger) writeLog(callerDepth int, level LogLevel, area LogArea, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	caller := "?"
	if _, file, line, ok := runtime.Caller(callerDepth); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	entry := formatEntry(time.Now(), level, area, caller, message)

	l.mu.Lock()
	if l.file != nil {
		if n, err := l.file.WriteString(entry); err == nil {
			l.currentSize += int64(n)
			if l.currentSize > l.maxSize {
				l.rotate()
			}
		}
	}
	l.mu.Unlock()

	if level >= WARN {
		log.Printf("[%s] [%s] %s", level, strings.ToUpper(string(area)), message)
	}
}

// logf is the common path of the package functions below; depth 3 is the
// caller of Debug, Info or an area helper.
func logf(level LogLevel, area LogArea, format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.shouldLog(level, area) {
		globalLogger.writeLog(3, level, area, format, args...)
	}
}

func Debug(area LogArea, format string, args ...interface{}) { logf(DEBUG, area, format, args...) }
func Info(area LogArea, format string, args ...interface{})  { logf(INFO, area, format, args...) }
func Warn(area LogArea, format string, args ...interface{})  { logf(WARN, area, format, args...) }
func Error(area LogArea, format string, args ...interface{}) { logf(ERROR, area, format, args...) }

// Auth Logging
func AuthInfo(format string, args ...interface{})  { logf(INFO, AreaAuth, format, args...) }
func AuthWarn(format string, args ...interface{})  { logf(WARN, AreaAuth, format, args...) }
func AuthError(format string, args ...interface{}) { logf(ERROR, AreaAuth, format, args...) }

// Terminal Logging
func TerminalDebug(format string, args ...interface{}) { logf(DEBUG, AreaTerminal, format, args...) }
func TerminalWarn(format string, args ...interface{})  { logf(WARN, AreaTerminal, format, args...) }
func TerminalError(format string, args ...interface{}) { logf(ERROR, AreaTerminal, format, args...) }

func ConfigInfo(format string, args ...interface{}) { logf(INFO, AreaConfig, format, args...) }

func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	}
	return INFO
}

// Close schließt das Logging-System
func Close() {
	if globalLogger == nil {
		return
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	if globalLogger.file != nil {
		globalLogger.file.Close()
		globalLogger.file = nil
	}
}
