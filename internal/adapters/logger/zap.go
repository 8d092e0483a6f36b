package logger

import (
	"fmt"

	dLog "zmq_listener/internal/domain/log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap writes human-readable records to stderr.
type Zap struct {
	log *zap.Logger
}

// NewZap builds a console logger at the given level ("debug", "info", ...).
// An empty level means info.
func NewZap(level string) (*Zap, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		lvl, err = zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Sampling = nil

	l, err := cc.Build()
	if err != nil {
		return nil, err
	}
	return &Zap{log: l}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *Zap {
	return &Zap{log: l}
}

func (z *Zap) Debug(message string, fields ...dLog.Field) {
	z.log.Debug(message, zapFields(fields)...)
}

func (z *Zap) Info(message string, fields ...dLog.Field) {
	z.log.Info(message, zapFields(fields)...)
}

func (z *Zap) Warn(message string, fields ...dLog.Field) {
	z.log.Warn(message, zapFields(fields)...)
}

func (z *Zap) Error(message string, fields ...dLog.Field) {
	z.log.Error(message, zapFields(fields)...)
}

// Sync flushes buffered records.
func (z *Zap) Sync() error {
	return z.log.Sync()
}

func zapFields(dFields []dLog.Field) []zap.Field {
	fields := make([]zap.Field, len(dFields))
	for i, d := range dFields {
		if err, ok := d.Value.(error); ok {
			fields[i] = zap.NamedError(d.Key, err)
			continue
		}
		fields[i] = zap.Any(d.Key, d.Value)
	}
	return fields
}

type nop struct{}

func (nop) Debug(string, ...dLog.Field) {}
func (nop) Info(string, ...dLog.Field)  {}
func (nop) Warn(string, ...dLog.Field)  {}
func (nop) Error(string, ...dLog.Field) {}

// Nop discards everything.
func Nop() dLog.Logger {
	return nop{}
}
