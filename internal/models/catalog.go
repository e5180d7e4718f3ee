package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceType string

const (
	PriceTypeOneTime   PriceType = "one-time"
	PriceTypeRecurring PriceType = "recurring"
)

// Package is admin-managed reference data. Prices are never rewritten on
// existing purchases; a purchase copies what it paid.
type Package struct {
	ID           uint            `json:"package_id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	DurationDays int             `json:"duration_days" gorm:"not null"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Addon struct {
	ID          uint            `json:"addon_id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string          `json:"description" gorm:"type:text"`
	PriceType   PriceType       `json:"price_type" gorm:"type:varchar(20);not null"`
	BasePrice   decimal.Decimal `json:"base_price" gorm:"type:decimal(12,2);not null"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// DurationDays is nil for addons that follow the package they are bought with.
	DurationDays *int `json:"duration_days"`
}

type CreatePackageRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" validate:"money"`
	DurationDays int             `json:"duration_days" validate:"required,min=1"`
	IsActive     *bool           `json:"is_active"`
}

type UpdatePackageRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price" validate:"omitempty,money"`
	DurationDays *int             `json:"duration_days" validate:"omitempty,min=1"`
	IsActive     *bool            `json:"is_active"`
}

type CreateAddonRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description"`
	PriceType    PriceType       `json:"price_type" validate:"required,price_type"`
	BasePrice    decimal.Decimal `json:"base_price" validate:"money"`
	DurationDays *int            `json:"duration_days" validate:"omitempty,min=1"`
	IsActive     *bool           `json:"is_active"`
}

type UpdateAddonRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	PriceType    *PriceType       `json:"price_type" validate:"omitempty,price_type"`
	BasePrice    *decimal.Decimal `json:"base_price" validate:"omitempty,money"`
	DurationDays *int             `json:"duration_days" validate:"omitempty,min=1"`
	IsActive     *bool            `json:"is_active"`
}
