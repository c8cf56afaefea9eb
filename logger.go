package esclient

import (
	"context"

	"go.uber.org/zap"
)

// Logger interface for debug/trace logging.
// Compatible with github.com/billz-2/packages/pkg/logger interface.
// If logger is not provided (nil), all logging is disabled (no-op).
// Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...any)
	DebugWithCtx(ctx context.Context, msg string, fields ...any)
}

// noopLogger is a no-op implementation used when logger is not provided.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...any)                             {}
func (noopLogger) DebugWithCtx(ctx context.Context, msg string, fields ...any) {}

// safeLogger returns the provided logger or no-op logger if nil.
func safeLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// zapLogger adapts a zap logger to Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l as a Logger. A nil l yields a no-op logger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return &zapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (z *zapLogger) Debug(msg string, fields ...any) {
	z.sugar.Debugw(msg, fields...)
}

func (z *zapLogger) DebugWithCtx(ctx context.Context, msg string, fields ...any) {
	if err := ctx.Err(); err != nil {
		fields = append(fields, "ctx_err", err.Error())
	}
	z.sugar.Debugw(msg, fields...)
}
