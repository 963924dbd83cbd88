package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level   string
	Format  string // "json" (default) or "console"
	Service string
	Version string
}

// NewLogger returns a structured logger writing to stdout.
// Unknown levels fall back to info.
func NewLogger(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	return zap.New(core).With(WithCommon(nil, cfg.Service, cfg.Version)...)
}

// WithCommon appends service/version fields when provided.
func WithCommon(fields []zap.Field, service, version string) []zap.Field {
	if service != "" {
		fields = append(fields, zap.String(FieldService, service))
	}
	if version != "" {
		fields = append(fields, zap.String(FieldVersion, version))
	}
	return fields
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
