package database

import (
	"log"
	"os"

	"gorm.io/gorm"

	"seodesk/auth"
	"seodesk/models"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.ServicePackage{},
		&models.Client{},
		&models.Deliverable{},
		&models.Invoice{},
		&models.Payment{},
		&models.SEOMetric{},
		&models.TrackedKeyword{},
		&models.Project{},
		&models.Page{},
		&models.Keyword{},
		&models.SEOChecklist{},
		&models.Backlink{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedDefaults creates the initial admin account and the package catalog on
// an empty database. Safe to call on every start.
func SeedDefaults(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount == 0 {
		email := os.Getenv("ADMIN_EMAIL")
		password := os.Getenv("ADMIN_PASSWORD")
		if email != "" && password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			admin := models.User{
				Email:        email,
				PasswordHash: hash,
				Name:         "Administrator",
				Role:         models.RoleAdmin,
			}
			if err := db.Create(&admin).Error; err != nil {
				return err
			}
			log.Println("seeded admin account:", email)
		} else {
			log.Println("no users and ADMIN_EMAIL/ADMIN_PASSWORD not set - admin login unavailable")
		}
	}

	var packageCount int64
	if err := db.Model(&models.ServicePackage{}).Count(&packageCount).Error; err != nil {
		return err
	}

	if packageCount == 0 {
		packages := []models.ServicePackage{
			{Name: "Starter", Description: "Local SEO basics", PriceCents: 29900, KeywordLimit: 10, PageLimit: 5},
			{Name: "Growth", Description: "Content and on-page optimization", PriceCents: 59900, KeywordLimit: 30, PageLimit: 15},
			{Name: "Enterprise", Description: "Full-service SEO program", PriceCents: 129900, KeywordLimit: 100, PageLimit: 50},
		}
		if err := db.Create(&packages).Error; err != nil {
			return err
		}
		log.Println("seeded service package catalog")
	}

	return nil
}
