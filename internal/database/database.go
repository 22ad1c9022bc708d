package database

import (
	"fmt"

	"github.com/sanjose/backend/internal/config"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig, seed config.SeedConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedAdminUser(db, seed); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Teacher{},
		&models.Administrator{},
		&models.Profile{},
		&models.WorkPeriod{},
		&models.ExternalWorkPeriod{},
		&models.License{},
		&models.Document{},
		&models.Schedule{},
		&models.Message{},
		&models.AuditLog{},
	)
}

// seedAdminUser creates the bootstrap administrator on a fresh database. An
// empty user table means nobody could ever log in to create one.
func seedAdminUser(db *gorm.DB, seed config.SeedConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Name:         seed.AdminName,
			Email:        seed.AdminEmail,
			PasswordHash: hash,
			Role:         models.UserRoleAdministrator,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		return tx.Create(&models.Administrator{
			Name:   seed.AdminName,
			Email:  seed.AdminEmail,
			UserID: admin.ID,
		}).Error
	})
}
