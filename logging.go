package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logTimeFormat = "2006/01/02 15:04:05.000"

var sugar = zap.NewNop().Sugar()

// newLogger builds the process logger: a console core on stdout and, when
// file is set, a rotated file core.
func newLogger(level, file string, production bool) *zap.Logger {
	lv := zap.NewAtomicLevel()
	if level == "" {
		level = map[bool]string{true: "info", false: "debug"}[production]
	}
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger: invalid log level %q, defaulting to INFO\n", level)
		lv.SetLevel(zapcore.InfoLevel)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(!production)), zapcore.Lock(os.Stdout), lv),
	}
	if file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     10,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(false)), zapcore.AddSync(w), lv))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func encoderConfig(colour bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + t.Format(logTimeFormat) + "]")
	}
	cfg.ConsoleSeparator = " "
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	if colour {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}

// setLogger routes the logInfo/logWarn/logFatal helpers through l.
func setLogger(l *zap.Logger) {
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}
