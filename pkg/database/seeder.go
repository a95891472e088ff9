package database

import (
	"log"

	"stock-app/config"
	"stock-app/internal/models"
	"stock-app/internal/utils"

	"gorm.io/gorm"
)

// SeedStocksAndAdmin inserts the three fixed store rows and, if configured,
// a super-admin account. Idempotent across restarts.
func SeedStocksAndAdmin() {
	for _, s := range models.KnownStocks {
		var existing models.Stock
		if err := DB.Where("id = ?", s.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := DB.Create(&s).Error; err != nil {
					log.Printf("Failed to seed stock %s: %v", s.Slug, err)
				}
			} else {
				log.Printf("Failed to check stock %s: %v", s.Slug, err)
			}
		}
	}

	adminEmail := config.AppConfig.Defaults.AdminEmail
	if adminEmail == "" {
		return
	}

	var admin models.User
	if err := DB.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			hashedPassword, herr := utils.HashPassword(config.AppConfig.Defaults.AdminPassword)
			if herr != nil {
				log.Printf("Failed to hash admin password: %v", herr)
				return
			}
			user := models.User{
				Username:     "Super Admin",
				Email:        adminEmail,
				PasswordHash: hashedPassword,
				Role:         models.RoleSuperAdmin,
				IsActive:     true,
			}
			if err := DB.Create(&user).Error; err != nil {
				log.Printf("Failed to seed super admin: %v", err)
			} else {
				log.Println("Super admin seeded successfully.")
			}
		}
	}
}
