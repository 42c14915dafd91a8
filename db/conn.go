package db

import (
	"fmt"

	"bitwise74/drive-api/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConn opens the configured database and runs migrations for
// every model the service persists.
func NewConn() (*gorm.DB, error) {
	var dial gorm.Dialector

	switch viper.GetString("db.driver") {
	case "postgres":
		dial = postgres.Open(viper.GetString("db.dsn"))
	default:
		dial = sqlite.Open(viper.GetString("db.dsn"))
	}

	conn, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = conn.AutoMigrate(
		&model.User{},
		&model.Folder{},
		&model.File{},
		&model.Thumbnail{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations, %w", err)
	}

	return conn, nil
}
