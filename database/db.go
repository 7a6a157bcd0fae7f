package database

import (
	"fmt"

	"taskboard-backend/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.String("DB_HOST", "db"),
		config.String("DB_USER", "postgres"),
		config.String("DB_PASSWORD", ""),
		config.String("DB_NAME", "taskboard"),
		config.String("DB_PORT", "5432"),
		config.String("DB_SSLMODE", "disable"))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("could not connect to database: " + err.Error())
	}
}
