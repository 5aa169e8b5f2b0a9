package repositories

import (
	"errors"
	"fmt"

	"gudang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientQuantity is returned by AdjustQuantity when the requested
// delta would drive the stored quantity below zero. The row is left untouched.
var ErrInsufficientQuantity = errors.New("insufficient stock quantity")

// GORMStockRepository is a GORM implementation of StockRepository.
type GORMStockRepository struct {
	db *gorm.DB
}

// NewGORMStockRepository creates a new instance of GORMStockRepository.
func NewGORMStockRepository(db *gorm.DB) *GORMStockRepository {
	return &GORMStockRepository{
		db: db,
	}
}

// GetAllByUser retrieves all stocks owned by the given user.
func (r *GORMStockRepository) GetAllByUser(userID string) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.Find(&stocks, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	return stocks, nil
}

// GetByID retrieves a single stock by its ID.
func (r *GORMStockRepository) GetByID(id string) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.First(&stock, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("stock with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get stock by ID %s: %w", id, err)
	}
	return &stock, nil
}

// GetByProductName retrieves a user's stock by product name.
func (r *GORMStockRepository) GetByProductName(userID, productName string) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.First(&stock, "user_id = ? AND product_name = ?", userID, productName).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("stock with product name %s not found", productName)
		}
		return nil, fmt.Errorf("failed to get stock by product name %s: %w", productName, err)
	}
	return &stock, nil
}

// Create creates a new stock in the database.
func (r *GORMStockRepository) Create(stock *models.Stock) error {
	if stock.ID == "" {
		stock.ID = uuid.New().String()
	}
	if err := r.db.Create(stock).Error; err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	return nil
}

// Update updates an existing stock in the database.
func (r *GORMStockRepository) Update(stock *models.Stock) error {
	res := r.db.Save(stock) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock with ID %s not found for update", stock.ID)
	}
	return nil
}

// Delete deletes a stock by its ID from the database.
func (r *GORMStockRepository) Delete(id string) error {
	res := r.db.Delete(&models.Stock{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock with ID %s not found for deletion", id)
	}
	return nil
}

// AdjustQuantity applies a signed delta with a guard against going negative.
// The guard lives in the WHERE clause, so the check cannot be raced between
// a read and the write.
func (r *GORMStockRepository) AdjustQuantity(id string, delta int) error {
	res := r.db.Model(&models.Stock{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust quantity for stock %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock %s: %w", id, ErrInsufficientQuantity)
	}
	return nil
}

// FindLowStock retrieves a user's stocks with quantity below the threshold.
func (r *GORMStockRepository) FindLowStock(userID string, threshold int) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.Find(&stocks, "user_id = ? AND quantity < ?", userID, threshold).Error; err != nil {
		return nil, fmt.Errorf("failed to get low stocks: %w", err)
	}
	return stocks, nil
}

// FindExpired retrieves a user's stocks whose expiry date has passed.
func (r *GORMStockRepository) FindExpired(userID string) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.Find(&stocks, "user_id = ? AND expiry_date < CURRENT_TIMESTAMP", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get expired stocks: %w", err)
	}
	return stocks, nil
}
