package config

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/mkingstonsqr/tile-notes/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the configured database into DB.
func InitDB(config Config) error {
	db, err := OpenDB(config)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// OpenDB opens the database for the configured driver and sets up the pool.
func OpenDB(config Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Info
	switch config.Environment {
	case "production":
		logLevel = logger.Warn
	case "test":
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if config.DBDriver == "sqlite" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func dialectorFor(config Config) (gorm.Dialector, error) {
	dsn := config.GetDBConnString()
	switch config.DBDriver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		// lib/pq registers the "postgres" database/sql driver.
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}
}

// MigrateDB creates or updates every table of the schema.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Note{},
		&models.Task{},
		&models.Attachment{},
		&models.Tag{},
		&models.NoteTag{},
		&models.AIQueueItem{},
		&models.UserSettings{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}
