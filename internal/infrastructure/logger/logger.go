// Package logger builds the zap loggers used across the server and adapts
// them to gin, gorm and request contexts.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes one log sink.
type Config struct {
	Level      string // debug, info, warn, error, fatal
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

var levels = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
	"fatal":   zapcore.FatalLevel,
}

// parseLevel is lenient: unknown names log at info.
func parseLevel(name string) zapcore.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return zapcore.InfoLevel
}

type Option func(*options)

type options struct {
	provider    log.LoggerProvider
	serviceName string
}

// WithOTelExport copies every entry at or above the configured level into
// the OpenTelemetry logs pipeline.
func WithOTelExport(provider log.LoggerProvider, serviceName string) Option {
	return func(o *options) {
		o.provider = provider
		o.serviceName = serviceName
	}
}

func New(cfg *Config, opts ...Option) (*zap.Logger, error) {
	o := options{serviceName: "backoffice"}
	for _, opt := range opts {
		opt(&o)
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	level := parseLevel(cfg.Level)
	core := zapcore.NewCore(encoderFor(cfg), sink, level)
	if o.provider != nil {
		exported := otelzap.NewCore(o.serviceName, otelzap.WithLoggerProvider(o.provider))
		core = zapcore.NewTee(core, minLevel{Core: exported, level: level})
	}
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// minLevel drops entries below level before they reach the wrapped core.
type minLevel struct {
	zapcore.Core
	level zapcore.Level
}

func (c minLevel) Enabled(l zapcore.Level) bool {
	return l >= c.level && c.Core.Enabled(l)
}

func (c minLevel) With(fields []zapcore.Field) zapcore.Core {
	return minLevel{Core: c.Core.With(fields), level: c.level}
}

func (c minLevel) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.Level < c.level {
		return ce
	}
	return c.Core.Check(e, ce)
}

func encoderFor(cfg *Config) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeFormat
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if cfg.Format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return zapcore.AddSync(f), nil
}
