package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = "file::memory:"

// Open connects to the SQLite analysis cache at path and migrates its schema.
func Open(path string) (*gorm.DB, error) {
	if path != MemoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if path == MemoryDSN {
		// Every pooled connection would get its own empty memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.AnalysisCache{}); err != nil {
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	log.Info().Str("path", path).Msg("analysis cache database ready")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
