package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"talktonic/internal/chat"
	"talktonic/internal/config"
)

var DB *gorm.DB

// Init opens the archive database named by cfg and migrates its schema.
func Init(cfg *config.Config) error {
	db, err := Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	DB = db
	log.Printf("Database connected and migrated")
	return nil
}

// Open connects with the given driver ("postgres" or "sqlite") and migrates.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&chat.ArchivedMessage{}); err != nil {
		return nil, err
	}
	return db, nil
}
