package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// Connect opens the relational store. The returned handle is the
// process-wide store connection; open it once at startup, pass it to the
// repository factory and close it at shutdown.
func Connect() (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	driver := env.GetEnv("DB_DRIVER", "sqlite")

	for i := 0; i < maxRetries; i++ {
		switch driver {
		case "mysql":
			// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
			dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				env.GetEnv("DB_USER", ""),
				env.GetEnv("DB_PASSWORD", ""),
				env.GetEnv("DB_HOST", "127.0.0.1"),
				env.GetEnv("DB_PORT", "3306"),
				env.GetEnv("DB_NAME", "wanpass"),
			)
			db, err = gorm.Open(mysql.New(mysql.Config{
				DSN:                      dsn,
				DefaultStringSize:        256,
				DisableDatetimePrecision: true,
			}), &gorm.Config{})
		case "sqlite":
			db, err = gorm.Open(sqlite.Open(env.GetEnv("DB_PATH", "data/wanpass.db")), &gorm.Config{})
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
		}

		if err == nil {
			return db, nil
		}

		log.Errorf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("could not connect to database after %d retries: %w", maxRetries, err)
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Event{},
		&models.License{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Errorf("[Database] Failed to access connection for close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Errorf("[Database] Failed to close connection: %v", err)
	}
}
