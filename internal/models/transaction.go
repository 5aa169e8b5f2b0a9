package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction types. Credit is money coming in, debit is money going out.
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// TransactionItem is a single line item on a transaction. When present, it
// must have matched a stock row at creation time and its quantity has been
// deducted from that stock.
type TransactionItem struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TransactionID string  `json:"transaction_id" gorm:"type:varchar(36);index"`
	Name          string  `json:"name" gorm:"type:varchar(100)"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"` // Stock price at the time of the transaction
}

// Transaction records a single money movement for a user.
type Transaction struct {
	ID           string            `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CustomerName string            `json:"customer_name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Amount       float64           `json:"amount" validate:"gte=0"`
	Type         string            `json:"type" gorm:"type:varchar(10)" validate:"required,oneof=credit debit"`
	Description  string            `json:"description" validate:"omitempty,max=500"`
	Date         time.Time         `json:"date"`
	UserID       string            `json:"user_id" gorm:"type:varchar(36);index"`
	Items        []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
	gorm.Model                     // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
