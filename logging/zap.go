package logging

import (
	"context"
	"maps"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap.Logger to the Logger interface so the daemon
// can route library logs through its structured logger.
type ZapLogger struct {
	zl     *zap.Logger
	level  Level
	fields Fields
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{
		zl:     zl,
		level:  DebugLevel, // zap applies its own level filtering
		fields: make(Fields),
	}
}

func (z *ZapLogger) zapFields(err error, fields []Fields) []zap.Field {
	merged := make(Fields)
	maps.Copy(merged, z.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}

	out := make([]zap.Field, 0, len(merged)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for k, v := range merged {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	if z.level > DebugLevel {
		return
	}
	z.zl.Debug(msg, z.zapFields(nil, fields)...)
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	if z.level > InfoLevel {
		return
	}
	z.zl.Info(msg, z.zapFields(nil, fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	if z.level > WarnLevel {
		return
	}
	z.zl.Warn(msg, z.zapFields(nil, fields)...)
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	if z.level > ErrorLevel {
		return
	}
	z.zl.Error(msg, z.zapFields(err, fields)...)
}

func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.zl.Fatal(msg, z.zapFields(err, fields)...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields)
	maps.Copy(newFields, z.fields)
	maps.Copy(newFields, fields)

	return &ZapLogger{
		zl:     z.zl,
		level:  z.level,
		fields: newFields,
	}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(fieldsContextKey{}).(Fields); ok {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZapLogger) SetLevel(level Level) {
	z.level = level
}
