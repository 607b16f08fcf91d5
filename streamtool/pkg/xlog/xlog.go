package xlog

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

////////////////////////////////////////////////////////////////////////////////

type Logger interface {
	With(fields ...zap.Field) Logger
	WithName(name string) Logger

	Zap() *zap.Logger

	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

////////////////////////////////////////////////////////////////////////////////

type ctxFieldsKey struct{}

// WrapContext returns a context carrying fields which are added to every
// record logged with it.
func WrapContext(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := contextFields(ctx)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	return fields
}

////////////////////////////////////////////////////////////////////////////////

type logger struct {
	log *zap.Logger
}

var _ Logger = (*logger)(nil)

func New(log *zap.Logger) Logger {
	return &logger{log.WithOptions(zap.AddCallerSkip(1))}
}

func NewNop() Logger {
	return &logger{zap.NewNop()}
}

// NewFromLevel builds a production logger writing JSON to stderr.
func NewFromLevel(level string) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := conf.Build()
	if err != nil {
		return nil, err
	}
	return New(log), nil
}

func ForTest(t testing.TB) Logger {
	return New(zaptest.NewLogger(t))
}

func (l *logger) Zap() *zap.Logger {
	return l.log.WithOptions(zap.AddCallerSkip(-1))
}

func (l *logger) With(fields ...zap.Field) Logger {
	return &logger{l.log.With(fields...)}
}

func (l *logger) WithName(name string) Logger {
	return &logger{l.log.Named(name)}
}

////////////////////////////////////////////////////////////////////////////////

func (l *logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Debug(msg, withContextFields(ctx, fields)...)
}

func (l *logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Info(msg, withContextFields(ctx, fields)...)
}

func (l *logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Warn(msg, withContextFields(ctx, fields)...)
}

func (l *logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log.Error(msg, withContextFields(ctx, fields)...)
}

func withContextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	ctxFields := contextFields(ctx)
	if len(ctxFields) == 0 {
		return fields
	}
	return append(ctxFields[:len(ctxFields):len(ctxFields)], fields...)
}
