package logger

import "go.uber.org/zap"

type ZapLogger struct {
	log *zap.SugaredLogger
}

var zapLogger *ZapLogger

func NewLogger(config zap.Config) (*ZapLogger, error) {
	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	defer l.Sync() //nolint
	l = l.WithOptions(zap.AddCallerSkip(2))
	zapLogger = &ZapLogger{log: l.Sugar()}
	return zapLogger, nil
}

func GetLogger() *ZapLogger {
	if zapLogger == nil {
		panic("logger not initialized")
	}
	return zapLogger
}

func (l *ZapLogger) Panic(message string, values ...any) { l.log.Panicw(message, values...) }

func (l *ZapLogger) Fatal(err error, values ...any) { l.log.Fatalw(err.Error(), values...) }

func (l *ZapLogger) Info(message string, values ...any) { l.log.Infow(message, values...) }

func (l *ZapLogger) Warn(message string, values ...any) { l.log.Warnw(message, values...) }

func (l *ZapLogger) Error(message string, values ...any) { l.log.Errorw(message, values...) }

func (l *ZapLogger) Debug(message string, values ...any) { l.log.Debugw(message, values...) }

func (l *ZapLogger) Printf(format string, args ...interface{}) { l.log.Infof(format, args...) }
