package logging

import (
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// Gorm routes gorm's query log into slog. Slow queries and errors are logged
// at warn level; everything else is dropped.
func Gorm(log *slog.Logger) gormlogger.Interface {
	return gormlogger.New(
		slog.NewLogLogger(log.With("component", "gorm").Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
