// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const RFC3339UsecTz0 = "2006-01-02T15:04:05.000000Z07:00"

// Ensure nopLogger implements interface.
var _ Logger = &nopLogger{}

// Logger represents an interface for a shared logger.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Panicf(format string, v ...interface{})
	// WithPrefix returns a new Logger with the same configuration as
	// this one, but all logs will have the given prefix.
	WithPrefix(prefix string) Logger
}

const (
	LevelPanic = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

func LevelPrefix(level int) string {
	return [...]string{"PANIC: ", "ERROR: ", "WARN:  ", "INFO:  ", "DEBUG: "}[level]
}

var StderrLogger = NewStandardLogger(os.Stderr)

// NopLogger represents a Logger that doesn't do anything.
var NopLogger Logger = &nopLogger{}

type nopLogger struct{}

func (n *nopLogger) Printf(format string, v ...interface{}) {}
func (n *nopLogger) Debugf(format string, v ...interface{}) {}
func (n *nopLogger) Infof(format string, v ...interface{})  {}
func (n *nopLogger) Warnf(format string, v ...interface{})  {}
func (n *nopLogger) Errorf(format string, v ...interface{}) {}
func (n *nopLogger) Panicf(format string, v ...interface{}) {}

func (n *nopLogger) WithPrefix(prefix string) Logger {
	return n
}

// standardLogger is a basic implementation of Logger based on log.Logger.
type standardLogger struct {
	logger    *log.Logger
	verbosity int
	prefix    string
	w         io.Writer
}

// write in UTC with constant width and microsecond resolution.
type formatLog struct {
	w io.Writer
}

func (fl formatLog) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(fl.w, "%v %v", time.Now().UTC().Format(RFC3339UsecTz0), string(bytes))
}

func newStandardLogger(w io.Writer, verbosity int, prefix string) *standardLogger {
	logger := log.New(w, prefix, 0)
	logger.SetOutput(formatLog{w: w})
	return &standardLogger{
		logger:    logger,
		verbosity: verbosity,
		prefix:    prefix,
		w:         w,
	}
}

// NewStandardLogger returns a logger writing info and above to w.
func NewStandardLogger(w io.Writer) *standardLogger {
	return newStandardLogger(w, LevelInfo, "")
}

// NewVerboseLogger returns a logger writing everything, debug included, to w.
func NewVerboseLogger(w io.Writer) *standardLogger {
	return newStandardLogger(w, LevelDebug, "")
}

func (s *standardLogger) printf(level int, format string, v ...interface{}) {
	if level > s.verbosity {
		return
	}
	s.logger.Printf(LevelPrefix(level)+format, v...)
}

func (s *standardLogger) Printf(format string, v ...interface{}) {
	s.printf(LevelInfo, format, v...)
}

func (s *standardLogger) Debugf(format string, v ...interface{}) {
	s.printf(LevelDebug, format, v...)
}

func (s *standardLogger) Infof(format string, v ...interface{}) {
	s.printf(LevelInfo, format, v...)
}

func (s *standardLogger) Warnf(format string, v ...interface{}) {
	s.printf(LevelWarn, format, v...)
}

func (s *standardLogger) Errorf(format string, v ...interface{}) {
	s.printf(LevelError, format, v...)
}

func (s *standardLogger) Panicf(format string, v ...interface{}) {
	s.printf(LevelPanic, format, v...)
}

func (s *standardLogger) WithPrefix(prefix string) Logger {
	return newStandardLogger(s.w, s.verbosity, s.prefix+prefix)
}

// Logfer is a thing that has only a Logf() method, like testing.T.
type Logfer interface {
	Logf(format string, v ...interface{})
}

// LogfLogger wraps something with a Logf method and makes it act like our
// logger.
type LogfLogger struct {
	wrapped Logfer
	prefix  string
}

func NewLogfLogger(l Logfer) *LogfLogger {
	return &LogfLogger{wrapped: l}
}

func (ll *LogfLogger) logf(level int, format string, v ...interface{}) {
	ll.wrapped.Logf(LevelPrefix(level)+ll.prefix+format, v...)
}

func (ll *LogfLogger) Printf(format string, v ...interface{}) { ll.logf(LevelInfo, format, v...) }
func (ll *LogfLogger) Debugf(format string, v ...interface{}) { ll.logf(LevelDebug, format, v...) }
func (ll *LogfLogger) Infof(format string, v ...interface{})  { ll.logf(LevelInfo, format, v...) }
func (ll *LogfLogger) Warnf(format string, v ...interface{})  { ll.logf(LevelWarn, format, v...) }
func (ll *LogfLogger) Errorf(format string, v ...interface{}) { ll.logf(LevelError, format, v...) }
func (ll *LogfLogger) Panicf(format string, v ...interface{}) { ll.logf(LevelPanic, format, v...) }

func (ll *LogfLogger) WithPrefix(prefix string) Logger {
	return &LogfLogger{wrapped: ll.wrapped, prefix: ll.prefix + prefix}
}

// bufferLogger represents a test Logger that holds log messages
// in a buffer for review.
type bufferLogger struct {
	buf    *bytes.Buffer
	mu     *sync.Mutex
	prefix string
}

// NewBufferLogger returns a new instance of bufferLogger.
func NewBufferLogger() *bufferLogger {
	return &bufferLogger{
		buf: &bytes.Buffer{},
		mu:  &sync.Mutex{},
	}
}

func (b *bufferLogger) write(level int, format string, v ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := fmt.Sprintf(LevelPrefix(level)+b.prefix+format+"\n", v...)
	if _, err := b.buf.WriteString(s); err != nil {
		panic(err)
	}
}

func (b *bufferLogger) Printf(format string, v ...interface{}) { b.write(LevelInfo, format, v...) }
func (b *bufferLogger) Debugf(format string, v ...interface{}) { b.write(LevelDebug, format, v...) }
func (b *bufferLogger) Infof(format string, v ...interface{})  { b.write(LevelInfo, format, v...) }
func (b *bufferLogger) Warnf(format string, v ...interface{})  { b.write(LevelWarn, format, v...) }
func (b *bufferLogger) Errorf(format string, v ...interface{}) { b.write(LevelError, format, v...) }
func (b *bufferLogger) Panicf(format string, v ...interface{}) { b.write(LevelPanic, format, v...) }

// WithPrefix shares the buffer with the returned logger.
func (b *bufferLogger) WithPrefix(prefix string) Logger {
	return &bufferLogger{buf: b.buf, mu: b.mu, prefix: b.prefix + prefix}
}

func (b *bufferLogger) ReadAll() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return io.ReadAll(b.buf)
}
