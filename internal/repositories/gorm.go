package repositories

import (
	"fmt"

	"urbantales/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenAccountsDB opens the relational account database and migrates its tables.
func OpenAccountsDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported accounts database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to accounts database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Seller{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate accounts database: %w", err)
	}
	return db, nil
}
