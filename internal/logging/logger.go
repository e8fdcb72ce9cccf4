// Package logging builds the installer's zap logger. Output goes to the
// console and to a rotating installer.log in the working directory, so a
// failed install leaves a diagnostic trail behind.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFile is the on-disk log target.
const LogFile = "installer.log"

// Setup constructs the process logger. verbose lowers the level to Debug.
func Setup(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	fileCfg := zap.NewProductionEncoderConfig()

	rotated := &lumberjack.Logger{
		Filename:   LogFile,
		MaxSize:    5, // MB
		MaxBackups: 2,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotated), level),
	)

	return zap.New(core, zap.AddCaller()), nil
}
