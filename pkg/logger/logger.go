package logger

import (
	"os"

	"go.uber.org/zap"
)

// Logger is the minimal logging surface the rest of the codebase depends on.
type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Panic(message string, values ...any)
	Fatal(error error, values ...any)
	Printf(format string, args ...interface{})
}

func init() {
	var config zap.Config

	if os.Getenv("LOG_ENV") == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	if _, err := NewLogger(config); err != nil {
		panic(err)
	}
}

func Info(msg string, values ...any)  { GetLogger().Info(msg, values...) }
func Warn(msg string, values ...any)  { GetLogger().Warn(msg, values...) }
func Error(msg string, values ...any) { GetLogger().Error(msg, values...) }
func Debug(msg string, values ...any) { GetLogger().Debug(msg, values...) }
func Panic(msg string, values ...any) { GetLogger().Panic(msg, values...) }
func Fatal(err error, values ...any)  { GetLogger().Fatal(err, values...) }
