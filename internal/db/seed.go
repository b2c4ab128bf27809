package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed makes sure an admin account exists and, when cfg.Database.Seed is set,
// loads a small demo catalog. It is safe to run repeatedly.
func Seed(conn *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if err := seedAdmin(conn, cfg.Auth, log); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := seedCatalog(conn); err != nil {
			return err
		}
		log.Info("demo catalog seeded")
	}
	return nil
}

func seedAdmin(conn *gorm.DB, ac config.AuthConfig, log *zap.Logger) error {
	var count int64
	if err := conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	password := ac.AdminPassword
	generated := password == ""
	if generated {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Email: strings.ToLower(ac.AdminEmail), Name: "Administrador", Password: hash, Role: models.RoleAdmin}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if generated {
		log.Warn("created admin account with a generated password; change it after first login",
			zap.String("email", admin.Email), zap.String("password", password))
	} else {
		log.Info("created admin account", zap.String("email", admin.Email))
	}
	return nil
}

func seedCatalog(conn *gorm.DB) error {
	materials := []models.Material{
		{Name: "Papel A4 75g", Stock: 5000, Unit: "folha", Category: "Papel"},
		{Name: "Papel Couché 300g", Stock: 800, Unit: "folha", Category: "Papel"},
		{Name: "Lona 440g", Stock: 50, Unit: "m²", Category: "Comunicação visual"},
		{Name: "Espiral 17mm", Stock: 200, Unit: "un", Category: "Encadernação"},
	}
	byName := map[string]uint{}
	for _, m := range materials {
		var existing models.Material
		err := conn.Where("name = ?", m.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&m).Error; err != nil {
				return err
			}
			existing = m
		} else if err != nil {
			return err
		}
		byName[existing.Name] = existing.ID
	}

	products := []models.Product{
		{Name: "Cópia P&B A4", Price: decimal.RequireFromString("0.25"), Stock: 10000, Category: "Cópias",
			Materials: []models.ProductMaterial{{MaterialID: byName["Papel A4 75g"], Quantity: 1}}},
		{Name: "Cartão de visita (100 un)", Price: decimal.RequireFromString("45.00"), Stock: 50, Category: "Impressos",
			Materials: []models.ProductMaterial{{MaterialID: byName["Papel Couché 300g"], Quantity: 10}}},
		{Name: "Banner 1x1m", Price: decimal.RequireFromString("60.00"), Stock: 20, Category: "Comunicação visual",
			Materials: []models.ProductMaterial{{MaterialID: byName["Lona 440g"], Quantity: 1}}},
		{Name: "Encadernação", Price: decimal.RequireFromString("8.00"), Stock: 100, Category: "Acabamento",
			Materials: []models.ProductMaterial{{MaterialID: byName["Espiral 17mm"], Quantity: 1}}},
	}
	for _, p := range products {
		var existing models.Product
		err := conn.Where("name = ?", p.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&p).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	var walkIn models.Client
	if err := conn.Where("name = ?", "Cliente Balcão").First(&walkIn).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return conn.Create(&models.Client{Name: "Cliente Balcão"}).Error
	} else if err != nil {
		return err
	}
	return nil
}
