package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusActive    PurchaseStatus = "active"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
	PurchaseStatusExpired   PurchaseStatus = "expired"
)

// Terminal reports whether no further transition is allowed from s.
func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseStatusCancelled || s == PurchaseStatusExpired
}

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusActive, PurchaseStatusCancelled, PurchaseStatusExpired:
		return true
	}
	return false
}

// PackagePurchase is one package bought in a checkout batch. Addon purchases
// bought in the same checkout share its PurchaseBatchID.
type PackagePurchase struct {
	ID               uint            `json:"purchase_id" gorm:"primaryKey"`
	PurchaseBatchID  string          `json:"purchase_batch_id" gorm:"type:char(36);not null;index"`
	UserID           uint            `json:"user_id" gorm:"not null;index"`
	PackageID        uint            `json:"package_id" gorm:"not null;index"`
	PurchaseDate     time.Time       `json:"purchase_date" gorm:"not null"`
	ExpirationDate   time.Time       `json:"expiration_date" gorm:"not null;index"`
	Status           PurchaseStatus  `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	PaymentReference *string         `json:"payment_reference" gorm:"type:varchar(255)"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Package *Package        `json:"-" gorm:"foreignKey:PackageID"`
	Addons  []AddonPurchase `json:"-" gorm:"-"`
}

type AddonPurchase struct {
	ID               uint            `json:"addon_purchase_id" gorm:"primaryKey"`
	PurchaseBatchID  string          `json:"purchase_batch_id" gorm:"type:char(36);not null;index"`
	UserID           uint            `json:"user_id" gorm:"not null;index"`
	AddonID          uint            `json:"addon_id" gorm:"not null;index"`
	PurchaseDate     time.Time       `json:"purchase_date" gorm:"not null"`
	ExpirationDate   time.Time       `json:"expiration_date" gorm:"not null;index"`
	Status           PurchaseStatus  `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	AmountPaid       decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);not null"`
	PaymentReference *string         `json:"payment_reference" gorm:"type:varchar(255)"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Addon *Addon `json:"-" gorm:"foreignKey:AddonID"`
}

type CreatePackagePurchaseRequest struct {
	PackageID uint   `json:"package_id" validate:"required"`
	AddonIDs  []uint `json:"addon_ids" validate:"omitempty,unique,dive,required"`
}

type CreateAddonPurchaseRequest struct {
	AddonID      uint `json:"addon_id" validate:"required"`
	DurationDays int  `json:"duration_days" validate:"required,min=1"`
}

// UserPurchases is every ledger entry owned by one user.
type UserPurchases struct {
	Packages []PackagePurchase
	// Standalone are addon purchases that were not bought alongside a package.
	Standalone []AddonPurchase
}

// PurchaseFilter narrows admin listings.
type PurchaseFilter struct {
	Status   PurchaseStatus
	UserID   uint
	Page     int
	PageSize int
}

type ExpireResult struct {
	PackagePurchases int64 `json:"package_purchases"`
	AddonPurchases   int64 `json:"addon_purchases"`
}
