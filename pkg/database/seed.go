package database

import (
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func intPtr(v int) *int { return &v }

func defaultPackages() []models.Package {
	return []models.Package{
		{
			Name:         "Starter Brand Kit",
			Description:  "Logo concepts, color palette and typography guide",
			Price:        decimal.RequireFromString("499.00"),
			DurationDays: 30,
			IsActive:     true,
		},
		{
			Name:         "Professional Brand Kit",
			Description:  "Full identity system, brand book and social templates",
			Price:        decimal.RequireFromString("999.00"),
			DurationDays: 30,
			IsActive:     true,
		},
		{
			Name:         "Enterprise Brand Kit",
			Description:  "Everything in Professional plus quarterly brand reviews",
			Price:        decimal.RequireFromString("2499.00"),
			DurationDays: 90,
			IsActive:     true,
		},
	}
}

func defaultAddons() []models.Addon {
	return []models.Addon{
		{
			Name:        "Extra Logo Revision",
			Description: "One additional round of logo revisions",
			PriceType:   models.PriceTypeOneTime,
			BasePrice:   decimal.RequireFromString("50.00"),
			IsActive:    true,
		},
		{
			Name:         "Social Media Kit",
			Description:  "Monthly set of branded social post templates",
			PriceType:    models.PriceTypeRecurring,
			BasePrice:    decimal.RequireFromString("100.00"),
			DurationDays: intPtr(30),
			IsActive:     true,
		},
		{
			Name:        "Brand Guidelines PDF",
			Description: "Printable brand guidelines document",
			PriceType:   models.PriceTypeOneTime,
			BasePrice:   decimal.RequireFromString("150.00"),
			IsActive:    true,
		},
	}
}

// Seed inserts the default catalog rows that are missing, matched by name.
func (d *Database) Seed() error {
	for _, pkg := range defaultPackages() {
		pkg := pkg
		var count int64
		if err := d.DB.Model(&models.Package{}).Where("name = ?", pkg.Name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := d.DB.Create(&pkg).Error; err != nil {
				return err
			}
			d.log.Info("seeded package", zap.String("name", pkg.Name))
		}
	}

	for _, addon := range defaultAddons() {
		addon := addon
		var count int64
		if err := d.DB.Model(&models.Addon{}).Where("name = ?", addon.Name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := d.DB.Create(&addon).Error; err != nil {
				return err
			}
			d.log.Info("seeded addon", zap.String("name", addon.Name))
		}
	}
	return nil
}
