package config

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/loantracker/models"
)

const (
	seedManagerName     = "Admin Manager"
	seedManagerPhone    = "9999999999"
	seedManagerPassword = "Manager@123"
)

// SeedInitialManager creates the bootstrap collection manager so a fresh
// deployment has someone who can create agents. Skips if the phone is taken.
func SeedInitialManager() error {
	log.Println("=== Seeding initial Collection Manager ===")

	var existing models.Profile
	err := DB.Where("phone = ?", seedManagerPhone).First(&existing).Error
	if err == nil {
		log.Println("Initial manager already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedManagerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	id := uuid.New()
	return DB.Transaction(func(tx *gorm.DB) error {
		identity := models.Identity{
			ID:           id,
			PhoneKey:     models.PhoneKey(seedManagerPhone),
			PasswordHash: string(hash),
		}
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}
		profile := models.Profile{
			ID:       id,
			Name:     seedManagerName,
			Phone:    seedManagerPhone,
			Role:     models.RoleCollectionManager,
			IsActive: true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		log.Printf("Initial Collection Manager created (phone %s). Change the password after first login.", seedManagerPhone)
		return nil
	})
}
