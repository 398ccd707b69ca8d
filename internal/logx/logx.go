// Package logx is a small leveled, sectioned logger. Output goes to a
// file (normally stderr); level tags are colored when that file is a
// terminal.
package logx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	NOTICE
	WARN
	ERROR
	CRITICAL
	LevelCount
)

var levelNames = [LevelCount]string{
	DEBUG:    "debug",
	INFO:     "info",
	NOTICE:   "notice",
	WARN:     "warn",
	ERROR:    "error",
	CRITICAL: "critical",
}

func (l Level) String() string {
	if l < 0 || l >= LevelCount {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name as printed by Level.String.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WARN, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// LoggerX logs on behalf of named sections.
type LoggerX interface {
	LogPrintfX(section string, lvl Level, format string, v ...interface{})
	LogPrintlnX(section string, lvl Level, v ...interface{})
}

// Logger is a LoggerX bound to one section.
type Logger interface {
	LogPrintf(lvl Level, format string, v ...interface{})
	LogPrintln(lvl Level, v ...interface{})
}

type LogToX struct {
	section string
	logx    LoggerX
}

func (l LogToX) LogPrintf(lvl Level, format string, v ...interface{}) {
	l.logx.LogPrintfX(l.section, lvl, format, v...)
}
func (l LogToX) LogPrintln(lvl Level, v ...interface{}) { l.logx.LogPrintlnX(l.section, lvl, v...) }

func NewLogToX(logx LoggerX, section string) LogToX { return LogToX{section: section, logx: logx} }

var _ Logger = LogToX{}

type nopLogger struct{}

func (nopLogger) LogPrintf(Level, string, ...interface{}) {}
func (nopLogger) LogPrintln(Level, ...interface{})         {}

// Discard drops everything.
var Discard Logger = nopLogger{}

type UseColor int

const (
	ColorAuto UseColor = iota
	ColorOn
	ColorOff
)

var levelTags = [2][LevelCount]string{
	// uncolored
	{
		DEBUG:    "   DEBUG",
		INFO:     "    INFO",
		NOTICE:   "  NOTICE",
		WARN:     " WARNING",
		ERROR:    "   ERROR",
		CRITICAL: "CRITICAL",
	},
	// colored
	{
		DEBUG:    "\033[37m   DEBUG\033[0m",
		INFO:     "\033[34m    INFO\033[0m",
		NOTICE:   "\033[32m  NOTICE\033[0m",
		WARN:     "\033[33m WARNING\033[0m",
		ERROR:    "\033[31m   ERROR\033[0m",
		CRITICAL: "\033[35mCRITICAL\033[0m",
	},
}

var sectionFormats = [2]string{
	" %s [%s] ",
	" %s [\033[36m%s\033[0m] ",
}

var _ LoggerX = (*FileLogger)(nil)

// FileLogger writes one line per message with a timestamp, level tag and
// section name. It is safe for concurrent use.
type FileLogger struct {
	l   sync.Mutex
	w   *bufio.Writer
	m   Level
	c   int
	now func() time.Time
}

// NewFileLogger logs messages at logLevel or above to f. With ColorAuto,
// colors are used only when f is a terminal.
func NewFileLogger(f *os.File, logLevel Level, c UseColor) *FileLogger {
	fd := f.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if c == ColorOn || (c == ColorAuto && tty) {
		l := NewWriterLogger(colorable.NewColorable(f), logLevel)
		l.c = 1
		return l
	}
	return NewWriterLogger(f, logLevel)
}

// NewWriterLogger logs uncolored lines to w.
func NewWriterLogger(w io.Writer, logLevel Level) *FileLogger {
	return &FileLogger{w: bufio.NewWriter(w), m: logLevel, now: time.Now}
}

func (l *FileLogger) Level() Level {
	return l.m
}

func (l *FileLogger) LogPrintfX(section string, lvl Level, format string, v ...interface{}) {
	if l.m > lvl {
		return
	}
	l.write(section, lvl, fmt.Sprintf(format, v...))
}

func (l *FileLogger) LogPrintlnX(section string, lvl Level, v ...interface{}) {
	if l.m > lvl {
		return
	}
	l.write(section, lvl, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *FileLogger) write(section string, lvl Level, msg string) {
	if lvl < 0 || lvl >= LevelCount {
		lvl = CRITICAL
	}
	t := l.now()

	l.l.Lock()
	defer l.l.Unlock()

	l.w.WriteString(t.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(l.w, sectionFormats[l.c], levelTags[l.c][lvl], section)
	l.w.WriteString(msg)
	l.w.WriteByte('\n')
	l.w.Flush()
}
