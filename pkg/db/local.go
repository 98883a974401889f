package db

import (
	"fmt"
	"io"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenLocal opens the on-disk SQLite database that backs the offline
// durability queue. The file (and its schema) may not exist yet; callers
// migrate on first use.
func OpenLocal(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("local database path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}
	return conn, nil
}
