// Package zlog wraps zap with a console core for development and rotated
// file cores for production, plus a swappable package-level facade.
package zlog

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	log   *zap.Logger
	level zap.AtomicLevel
}

func NewLogger(c *Config) *Logger {
	if c == nil {
		c = DefaultConfig()
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		panic(fmt.Errorf("invalid log level: %s", c.Level))
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.PanicLevel),
	}

	l := &Logger{
		log:   zap.New(zapcore.NewTee(newZapCores(c, level)...), opts...),
		level: level,
	}
	SetLogger(l)
	return l
}

func (l *Logger) Close() error {
	return l.log.Sync()
}

func (l *Logger) GetZap() *zap.Logger {
	return l.log
}

func (l *Logger) GetLevel() string {
	return l.level.String()
}

func (l *Logger) SetLevel(level string) {
	if err := l.level.UnmarshalText([]byte(level)); err != nil {
		l.log.Info("invalid log level",
			zap.String("level", level),
			zap.Error(err))
		return
	}
	l.log.Info("log level updated", zap.String("level", level))
}

/*
	package-level facade
*/

var global atomic.Pointer[Logger]

func init() {
	level := zap.NewAtomicLevel()
	level.SetLevel(zap.DebugLevel)
	global.Store(&Logger{
		log:   zap.New(newConsoleCore(level), zap.AddCaller(), zap.AddCallerSkip(1)),
		level: level,
	})
}

// SetLogger replaces the process-wide logger used by the Xf helpers.
func SetLogger(l *Logger) {
	if l != nil {
		global.Store(l)
	}
}

func sugar() *zap.SugaredLogger {
	return global.Load().log.Sugar()
}

func Debugf(format string, args ...any) { sugar().Debugf(format, args...) }
func Infof(format string, args ...any)  { sugar().Infof(format, args...) }
func Warnf(format string, args ...any)  { sugar().Warnf(format, args...) }
func Errorf(format string, args ...any) { sugar().Errorf(format, args...) }
func Fatalf(format string, args ...any) { sugar().Fatalf(format, args...) }

func Debug(args ...any) { sugar().Debug(args...) }
func Info(args ...any)  { sugar().Info(args...) }
func Warn(args ...any)  { sugar().Warn(args...) }
func Error(args ...any) { sugar().Error(args...) }
