package repositories

import "gudang/internal/models"

// StockRepository defines the interface for stock data access. All lookups
// are scoped to the owning user.
type StockRepository interface {
	GetAllByUser(userID string) ([]models.Stock, error)
	GetByID(id string) (*models.Stock, error)
	GetByProductName(userID, productName string) (*models.Stock, error)
	Create(stock *models.Stock) error
	Update(stock *models.Stock) error
	Delete(id string) error
	// AdjustQuantity applies a signed delta to a stock's quantity. The update
	// is conditional: it fails without touching the row if the result would
	// be negative, so the check holds at write time even under concurrent
	// requests.
	AdjustQuantity(id string, delta int) error
	FindLowStock(userID string, threshold int) ([]models.Stock, error)
	FindExpired(userID string) ([]models.Stock, error)
}
