package repositories

import (
	"fmt"
	"time"

	"gudang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// GetAllByUser retrieves a user's transactions, newest first. When since is
// non-nil only transactions dated on or after it are returned.
func (r *GORMTransactionRepository) GetAllByUser(userID string, since *time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	q := r.db.Preload("Items").Where("user_id = ?", userID).Order("date DESC")
	if since != nil {
		q = q.Where("date >= ?", *since)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txns, nil
}

// GetByID retrieves a single transaction with its items.
func (r *GORMTransactionRepository) GetByID(id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Preload("Items").First(&txn, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("transaction with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction by ID %s: %w", id, err)
	}
	return &txn, nil
}

// Create creates a new transaction together with its line items.
func (r *GORMTransactionRepository) Create(txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	for i := range txn.Items {
		if txn.Items[i].ID == "" {
			txn.Items[i].ID = uuid.New().String()
		}
		txn.Items[i].TransactionID = txn.ID
	}
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// Update updates a transaction's scalar fields. Line items are immutable
// once the stock has been deducted, so they are not touched here.
func (r *GORMTransactionRepository) Update(txn *models.Transaction) error {
	res := r.db.Model(&models.Transaction{}).Where("id = ?", txn.ID).Updates(map[string]interface{}{
		"customer_name": txn.CustomerName,
		"amount":        txn.Amount,
		"type":          txn.Type,
		"description":   txn.Description,
		"date":          txn.Date,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction with ID %s not found for update", txn.ID)
	}
	return nil
}

// Delete removes a transaction and its line items.
func (r *GORMTransactionRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TransactionItem{}, "transaction_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete transaction items: %w", err)
		}
		res := tx.Delete(&models.Transaction{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("transaction with ID %s not found for deletion", id)
		}
		return nil
	})
}

// FindByDateRange retrieves a user's transactions dated within [start, end].
func (r *GORMTransactionRepository) FindByDateRange(userID string, start, end time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Preload("Items").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by date range: %w", err)
	}
	return txns, nil
}

// FindByType retrieves a user's transactions of one type.
func (r *GORMTransactionRepository) FindByType(userID, txnType string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Preload("Items").
		Where("user_id = ? AND type = ?", userID, txnType).
		Order("date DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by type: %w", err)
	}
	return txns, nil
}

// TotalAmountByType sums the amounts of a user's transactions of one type.
func (r *GORMTransactionRepository) TotalAmountByType(userID, txnType string) (float64, error) {
	var total float64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, txnType).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to total transactions by type: %w", err)
	}
	return total, nil
}
