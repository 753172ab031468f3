package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging for every pipeline stage.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
	run   string
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Stderr)
}

// NewLoggerTo sends every level to w. Tests use it to inspect warnings.
func NewLoggerTo(w io.Writer) *Logger {
	return newLogger(w, w)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// WithRun returns a Logger that tags each line with the given run id.
func (l *Logger) WithRun(id string) *Logger {
	cp := *l
	cp.run = id
	return &cp
}

func (l *Logger) prefix(level string) string {
	ts := time.Now().Format("2006-01-02 15:04:05")
	if l.run == "" {
		return fmt.Sprintf("[%s] %s", ts, level)
	}
	return fmt.Sprintf("[%s] %s (%s)", ts, level, l.run)
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(l.prefix("\033[32mINFO\033[0m ")+" "+format+"\n", args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(l.prefix("\033[33mWARN\033[0m ")+" "+format+"\n", args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(l.prefix("\033[31mERROR\033[0m")+" "+format+"\n", args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.debug.Printf(l.prefix("\033[36mDEBUG\033[0m")+" "+format+"\n", args...)
}
