// Package logging adapts zap to the runtime.Logger interface used throughout the engine,
// so the standalone server logs the same way the Nakama runtime does.
package logging

import (
	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements runtime.Logger on top of a zap SugaredLogger.
type ZapLogger struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
}

var _ runtime.Logger = (*ZapLogger)(nil)

// New builds a JSON production logger at the given level ("debug", "info", "warn", "error").
func New(level string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(base), nil
}

// Wrap adapts an existing zap logger.
func Wrap(base *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: base.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *ZapLogger) Debug(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *ZapLogger) Info(format string, v ...interface{})  { l.sugar.Infof(format, v...) }
func (l *ZapLogger) Warn(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *ZapLogger) Error(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }

func (l *ZapLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *ZapLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	args := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &ZapLogger{sugar: l.sugar.With(args...), fields: merged}
}

// Fields returns the fields attached through WithField and WithFields.
func (l *ZapLogger) Fields() map[string]interface{} {
	return l.fields
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
