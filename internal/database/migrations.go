package database

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/config"
	"LinkShield-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.User{}, // Сначала пользователи
		&domain.Link{}, // Ссылки (зависят от пользователей)
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Info("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData создает начального администратора, если пользователей еще нет
func SeedData(db *gorm.DB, cfg *config.Database, log *zap.Logger) error {
	log.Info("starting database seeding")

	var count int64
	db.Model(&domain.User{}).Count(&count)
	if count > 0 {
		log.Info("users already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	if cfg.SeedAdminPass == "" {
		log.Warn("seed_admin_password is empty, skipping admin seeding")
		return nil
	}

	passwordService := auth.NewPasswordService()
	hash, err := passwordService.HashPassword(cfg.SeedAdminPass)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	name := "Administrator"
	admin := domain.User{
		Name:         &name,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error("failed to seed admin user", zap.Error(err))
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Info("database seeding completed successfully", zap.String("admin_email", admin.Email))
	return nil
}
