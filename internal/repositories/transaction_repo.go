package repositories

import (
	"time"

	"gudang/internal/models"
)

// TransactionRepository defines the interface for transaction data access.
type TransactionRepository interface {
	GetAllByUser(userID string, since *time.Time) ([]models.Transaction, error)
	GetByID(id string) (*models.Transaction, error)
	Create(txn *models.Transaction) error
	Update(txn *models.Transaction) error
	Delete(id string) error
	FindByDateRange(userID string, start, end time.Time) ([]models.Transaction, error)
	FindByType(userID, txnType string) ([]models.Transaction, error)
	TotalAmountByType(userID, txnType string) (float64, error)
}
