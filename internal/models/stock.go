package models

import (
	"time"

	"gorm.io/gorm"
)

// Stock is one inventory line owned by a single user. Product names are
// unique per owner; quantity must never drop below zero.
type Stock struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductName  string     `json:"product_name" gorm:"type:varchar(100);uniqueIndex:idx_stocks_owner_product" validate:"required,min=1,max=100"`
	Quantity     int        `json:"quantity" validate:"gte=0"`
	PricePerItem float64    `json:"price_per_item" validate:"gte=0"`
	Description  string     `json:"description" validate:"omitempty,max=500"`
	Category     string     `json:"category" validate:"omitempty,max=100"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	UserID       string     `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_stocks_owner_product"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
