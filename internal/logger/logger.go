// Package logger sets up the process-wide zap logger from configuration:
// console and/or rotating file output.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"gomoku-server/internal/config"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Init builds the logger. Safe to call more than once; only the first call
// takes effect.
func Init(cfg *config.LogConfig) error {
	var err error
	once.Do(func() {
		level := zapcore.InfoLevel
		if e := level.Set(cfg.Level); e != nil {
			level = zapcore.InfoLevel
		}

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if cfg.Format == "json" {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
			enc = zapcore.NewConsoleEncoder(encCfg)
		}

		var cores []zapcore.Core
		if cfg.Output == "stdout" || cfg.Output == "both" {
			cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level))
		}
		if cfg.Output == "file" || cfg.Output == "both" {
			if err = os.MkdirAll(cfg.File.Path, 0o755); err != nil {
				return
			}
			w := &lumberjack.Logger{
				Filename:   filepath.Join(cfg.File.Path, cfg.File.Filename),
				MaxSize:    cfg.File.MaxSize,
				MaxAge:     cfg.File.MaxAge,
				MaxBackups: cfg.File.MaxBackups,
				Compress:   cfg.File.Compress,
			}
			cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), level))
		}
		if len(cores) == 0 {
			cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level))
		}

		log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	})
	return err
}

// Get returns the process logger; a no-op logger before Init.
func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Sync flushes buffered entries on shutdown.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
