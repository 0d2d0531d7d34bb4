package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/config"
	"github.com/provizor/provizor/pkg/database/models"
)

// Seed populates reference data on first startup: the plan catalog, an
// initial admin user, a sample client, and sample hypervisor profiles.
// It runs in a single transaction and is idempotent; when the admin user
// already exists the whole seed is skipped.
func (db *DB) Seed(cfg *config.Config) error {
	if !cfg.InitialAdmin.Enabled {
		log.Println("Initial admin not enabled, skipping database seed")
		return nil
	}

	if cfg.InitialAdmin.Password == "" {
		return fmt.Errorf("initial admin password not configured - check secret loading or environment variables")
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", cfg.InitialAdmin.Username).First(&existing).Error
		if err == nil {
			log.Println("Database already seeded, skipping...")
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing admin: %w", err)
		}

		log.Println("Creating initial admin user...")
		admin := &models.User{
			Username: cfg.InitialAdmin.Username,
			FullName: cfg.InitialAdmin.FullName,
			Email:    cfg.InitialAdmin.Email,
			Role:     models.RoleAdmin,
		}
		if err := admin.SetPassword(cfg.InitialAdmin.Password); err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create initial admin user: %w", err)
		}

		log.Println("Creating sample client...")
		client := &models.Client{
			Name:        "Sample Client",
			ContactName: "John Doe",
			Email:       "contact@sample.com",
			Phone:       "123-456-7890",
		}
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create sample client: %w", err)
		}

		log.Println("Creating sample hypervisors...")
		hypervisors := []models.Hypervisor{
			{
				Name:     "Proxmox Cluster 1",
				Type:     models.HypervisorProxmox,
				APIURL:   "https://proxmox1.example.com:8006/api2/json",
				AuthType: models.AuthCredentials,
				Username: "root",
				Password: "change-me",
				Status:   models.HypervisorActive,
			},
			{
				Name:     "vCenter Server",
				Type:     models.HypervisorVCenter,
				APIURL:   "https://vcenter.example.com/sdk",
				AuthType: models.AuthCredentials,
				Username: "administrator@vsphere.local",
				Password: "change-me",
				Version:  "7.0",
				Status:   models.HypervisorActive,
			},
		}
		if err := tx.Create(&hypervisors).Error; err != nil {
			return fmt.Errorf("failed to create sample hypervisors: %w", err)
		}

		log.Println("Creating predefined VM plans...")
		plans := models.DefaultPlans()
		if err := tx.Create(&plans).Error; err != nil {
			return fmt.Errorf("failed to create plan catalog: %w", err)
		}

		log.Println("Database seed completed successfully")
		return nil
	})
}
