package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log defaults to a nop core so packages stay safe to use in tests
// that never call Init.
var log = zap.NewNop()

func Init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = built
}

func fieldsOf(m map[string]any) []zap.Field {
	if len(m) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(m))
	for k, v := range m {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(msg string, fields map[string]any) {
	log.Info(msg, fieldsOf(fields)...)
}

func Warn(msg string, fields map[string]any) {
	log.Warn(msg, fieldsOf(fields)...)
}

func Error(msg string, fields map[string]any) {
	log.Error(msg, fieldsOf(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	log.Fatal(msg, fieldsOf(fields)...)
}
