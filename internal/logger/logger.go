package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Stdout     bool   `mapstructure:"stdout"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type requestIDKey struct{}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init replaces the process logger. Until it is called every log call is a no-op.
func Init(cfg Config) error {
	built, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	previous := global
	global = built
	mu.Unlock()

	_ = previous.Sync()
	return nil
}

func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		if strings.TrimSpace(cfg.Level) != "" {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writers := make([]zapcore.WriteSyncer, 0, 2)
	if cfg.Stdout || strings.TrimSpace(cfg.FilePath) == "" {
		writers = append(writers, zapcore.Lock(os.Stdout))
	}
	if path := strings.TrimSpace(cfg.FilePath); path != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", "edextemp")), nil
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Close() {
	_ = L().Sync()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func Debugf(ctx context.Context, format string, args ...any) {
	withContext(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	withContext(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	withContext(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	withContext(ctx).Errorf(format, args...)
}

func withContext(ctx context.Context) *zap.SugaredLogger {
	sugared := L().Sugar()
	if ctx == nil {
		return sugared
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		return sugared.With("request_id", requestID)
	}
	return sugared
}
