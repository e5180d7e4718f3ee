package models

import "github.com/shopspring/decimal"

type StatusCount struct {
	Status PurchaseStatus `json:"status"`
	Count  int64          `json:"count"`
}

type FormTypeStats struct {
	FormType  string `json:"form_type"`
	Started   int64  `json:"started"`
	Completed int64  `json:"completed"`
}

type DashboardSummary struct {
	PackagePurchases []StatusCount   `json:"package_purchases"`
	AddonPurchases   []StatusCount   `json:"addon_purchases"`
	ActiveRevenue    decimal.Decimal `json:"active_revenue"`
	Submissions      []FormTypeStats `json:"submissions"`
}
