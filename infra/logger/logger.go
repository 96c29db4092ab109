package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"ask-mark/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05.000"

// New builds a zap logger writing to stdout and, when enabled, to a rotated file.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	writer := zapcore.AddSync(os.Stdout)
	if cfg.LogInFile {
		fileWriter, err := rotatingFile(cfg)
		if err != nil {
			return nil, err
		}
		writer = zapcore.NewMultiWriteSyncer(writer, fileWriter)
	}

	core := zapcore.NewCore(encoder(cfg.Format), writer, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoder(format string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

func rotatingFile(cfg config.LogConfig) (zapcore.WriteSyncer, error) {
	dir := cfg.Director
	if dir == "" {
		dir = "log"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = 100 // MB
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 7 // days
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "ask-mark.log"),
		MaxSize:    maxSize,
		MaxAge:     maxAge,
		MaxBackups: cfg.MaxBackup,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}), nil
}
