package main

import (
	"log"
	"os"
	"time"

	"migratemate-be/internal/model"
	"migratemate-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	green := color.New(color.FgGreen).PrintfFunc()
	yellow := color.New(color.FgYellow).PrintfFunc()

	log.Println("Seeding demo users and subscriptions...")

	users := []struct {
		Email        string
		FullName     string
		MonthlyPrice int64
	}{
		{Email: "demo@migratemate.co", FullName: "Demo User", MonthlyPrice: 2500},
		{Email: "sam.colby@example.com", FullName: "Sam Colby", MonthlyPrice: 2900},
	}

	for _, u := range users {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			yellow("User '%s' already exists, skipping...\n", u.Email)
			continue
		}

		user := model.User{
			Id:       uuid.New(),
			Email:    u.Email,
			FullName: u.FullName,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Error creating user '%s': %v", u.Email, err)
			continue
		}

		sub := model.Subscription{
			ID:               uuid.New(),
			UserID:           user.Id,
			MonthlyPrice:     u.MonthlyPrice,
			Status:           "active",
			CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
		}
		if err := db.Create(&sub).Error; err != nil {
			log.Printf("Error creating subscription for '%s': %v", u.Email, err)
			continue
		}

		green("Created user %s with active $%.2f/mo subscription\n", u.Email, float64(u.MonthlyPrice)/100)
	}

	green("Seeding completed!\n")
}
