// Command seed loads a demo data set: a handful of investors and
// startups with wallets, plus an admin account from the environment.
package main

import (
	"log"
	"os"

	"fundmatch/internal/config"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Email      string
	Name       string
	Role       string
	Headline   string
	Categories []string
	Points     int
}

var demoUsers = []seedUser{
	{"ava@capital.test", "Ava Stone", models.RoleInvestor, "Early-stage SaaS investor", []string{"saas", "fintech"}, 200},
	{"noah@ventures.test", "Noah Reed", models.RoleInvestor, "Deep tech and climate", []string{"climate", "hardware"}, 150},
	{"mia@fund.test", "Mia Chen", models.RoleInvestor, "Consumer and marketplaces", []string{"consumer", "marketplace"}, 0},
	{"team@ledgerly.test", "Ledgerly", models.RoleStartup, "Accounting automation for SMBs", []string{"saas", "fintech"}, 100},
	{"founders@coolroof.test", "CoolRoof", models.RoleStartup, "Reflective coatings that cut cooling costs", []string{"climate", "hardware"}, 50},
	{"hello@swaply.test", "Swaply", models.RoleStartup, "Peer-to-peer equipment marketplace", []string{"consumer", "marketplace"}, 0},
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	password := config.GetEnv("SEED_PASSWORD", "changeme123")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	for _, su := range demoUsers {
		var existing models.User
		if err := repositories.DB.Where("email = ?", su.Email).First(&existing).Error; err == nil {
			log.Printf("user %s already exists, skipping", su.Email)
			continue
		}

		u := models.User{
			Email:      su.Email,
			Password:   string(hashed),
			Name:       su.Name,
			Role:       su.Role,
			Headline:   su.Headline,
			Categories: su.Categories,
		}
		if err := repositories.DB.Create(&u).Error; err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Email, err)
		}

		wallet := models.PointsWallet{UserID: u.ID, Balance: su.Points}
		if err := repositories.DB.Create(&wallet).Error; err != nil {
			log.Fatalf("Failed to create wallet for %s: %v", su.Email, err)
		}
		log.Printf("created %s (%s) with %d points", su.Name, su.Role, su.Points)
	}

	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" {
		var existing models.User
		if err := repositories.DB.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
			log.Println("Admin user already exists")
			return
		}
		admin := models.User{
			Email:    adminEmail,
			Password: string(hashed),
			Name:     "Admin",
			Role:     models.RoleAdmin,
		}
		if err := repositories.DB.Create(&admin).Error; err != nil {
			log.Fatal("Failed to create admin user:", err)
		}
		log.Println("✅ Admin account created successfully!")
	}
}
