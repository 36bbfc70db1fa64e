package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/unclebandit/scaletracker-backend/internal/config"
	"github.com/unclebandit/scaletracker-backend/internal/db"
	"github.com/unclebandit/scaletracker-backend/internal/model"
	"github.com/unclebandit/scaletracker-backend/internal/repository"
)

// Seeds a handful of demo campaigns spanning the interesting readiness
// states: overdue, due today, upcoming, never scaled, and inactive.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadFromEnv("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Connect(cfg.Database.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}

	repo := &repository.CampaignRepository{DB: conn}

	today := model.DateOf(time.Now())
	scaled := func(daysAgo int) *model.Date {
		d := today.AddDays(-daysAgo)
		return &d
	}

	campaigns := []model.Campaign{
		{
			AccountName:              "Acme Media",
			CampaignName:             "Spring Lead Gen",
			LaunchDate:               today.AddDays(-30),
			LastScaledDate:           scaled(10),
			NotificationIntervalDays: 7,
			Status:                   model.StatusActive,
		},
		{
			AccountName:              "Acme Media",
			CampaignName:             "Retargeting Q3",
			LaunchDate:               today.AddDays(-21),
			LastScaledDate:           scaled(7),
			NotificationIntervalDays: 7,
			Status:                   model.StatusActive,
		},
		{
			AccountName:              "Borealis Brands",
			CampaignName:             "Lookalike Test",
			LaunchDate:               today.AddDays(-14),
			LastScaledDate:           scaled(5),
			NotificationIntervalDays: 7,
			Status:                   model.StatusActive,
		},
		{
			AccountName:              "Borealis Brands",
			CampaignName:             "Fresh Launch",
			LaunchDate:               today.AddDays(-2),
			NotificationIntervalDays: 7,
			Status:                   model.StatusActive,
		},
		{
			AccountName:              "Cascade Partners",
			CampaignName:             "Winter Push",
			LaunchDate:               today.AddDays(-90),
			LastScaledDate:           scaled(40),
			NotificationIntervalDays: 14,
			Status:                   model.StatusMaintenance,
		},
	}

	for i := range campaigns {
		c := &campaigns[i]
		if err := repo.Create(c); err != nil {
			log.Fatalf("failed to seed %q: %v", c.CampaignName, err)
		}
		fmt.Printf("Seeded: %s / %s (id %d)\n", c.AccountName, c.CampaignName, c.ID)
	}

	fmt.Println("Database seeding completed successfully!")
}
