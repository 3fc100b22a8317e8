package logger

import (
	"time"

	gormLogger "gorm.io/gorm/logger"
)

type gormWriter struct {
	log *Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	if w.log == nil {
		return
	}
	w.log.SugaredLogger.Warnf(format, args...)
}

// Gorm returns a gorm logger that writes slow queries and errors through zap.
func (l *Logger) Gorm(slow time.Duration) gormLogger.Interface {
	if slow <= 0 {
		slow = time.Second
	}
	return gormLogger.New(gormWriter{log: l.With("component", "gorm")}, gormLogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
