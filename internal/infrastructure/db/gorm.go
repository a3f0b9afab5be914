package db

import (
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LogLevel maps the DB_LOG_LEVEL setting onto gorm's logger levels.
func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), level)
}

// OpenGormWithDialector opens gorm on any dialector, tunes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, level ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(level) > 0 {
		lvl = level[0]
	}
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(lvl),
		DisableAutomaticPing: true,
		TranslateError:       true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}
