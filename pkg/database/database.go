package database

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"libraryapi/pkg/models"
)

const (
	maxConnectRetries = 10
	connectRetryDelay = 5 * time.Second
)

// Init connects to the catalog database, retrying a bounded number of times
// with a fixed delay before giving up, then runs migrations. TranslateError
// is enabled so unique-constraint violations surface as gorm.ErrDuplicatedKey.
func Init(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxConnectRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		log.Printf("Database connection attempt %d/%d failed: %v", attempt, maxConnectRetries, err)
		if attempt < maxConnectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connect failed after %d attempts", maxConnectRetries)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "database ping")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// Migrate creates or updates the catalog schema, including the unique
// indexes on serial numbers, library cards and open loans.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Author{},
		&models.Book{},
		&models.LibraryUser{},
		&models.Borrowing{},
	)
	return errors.Wrap(err, "database migration")
}
