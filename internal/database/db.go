package database

import (
	"fmt"
	"log"
	"os"

	"pet_portrait_go_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	// TranslateError maps driver duplicate-key failures to gorm.ErrDuplicatedKey,
	// which the account provisioner relies on to resolve first-contact races.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto Migrate the schema
	err = DB.AutoMigrate(&models.Account{}, &models.UsageCounter{}, &models.UsageEvent{}, &models.Order{}, &models.Feedback{}, &models.SupportTicket{})
	if err != nil {
		log.Fatal("Failed to auto migrate:", err)
	}

}
