package services

import (
	"fmt"

	"gudang/internal/models"
	"gudang/internal/repositories"
)

// DefaultLowStockThreshold is used when a caller does not supply one.
const DefaultLowStockThreshold = 10

// StockService handles business logic related to stock.
type StockService struct {
	stockRepo repositories.StockRepository
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo repositories.StockRepository) *StockService {
	return &StockService{
		stockRepo: stockRepo,
	}
}

// AddStock creates a stock entry for the user, or merges the quantity into
// an existing entry with the same product name.
func (s *StockService) AddStock(stock *models.Stock) (*models.Stock, error) {
	existing, err := s.stockRepo.GetByProductName(stock.UserID, stock.ProductName)
	if err == nil && existing != nil {
		if err := s.stockRepo.AdjustQuantity(existing.ID, stock.Quantity); err != nil {
			return nil, fmt.Errorf("failed to add stock: %w", err)
		}
		return s.stockRepo.GetByID(existing.ID)
	}

	if err := s.stockRepo.Create(stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// RemoveStock deducts quantity from a user's stock by product name. The
// deduction is rejected when it would exceed the available quantity.
func (s *StockService) RemoveStock(userID, productName string, quantity int) (*models.Stock, error) {
	stock, err := s.stockRepo.GetByProductName(userID, productName)
	if err != nil {
		return nil, fmt.Errorf("product not found in stock")
	}
	if stock.Quantity < quantity {
		return nil, fmt.Errorf("insufficient stock quantity")
	}
	if err := s.stockRepo.AdjustQuantity(stock.ID, -quantity); err != nil {
		return nil, err
	}
	return s.stockRepo.GetByID(stock.ID)
}

// GetStocks retrieves all of a user's stock entries.
func (s *StockService) GetStocks(userID string) ([]models.Stock, error) {
	return s.stockRepo.GetAllByUser(userID)
}

// GetStockByID retrieves a single stock entry, verifying ownership.
func (s *StockService) GetStockByID(userID, id string) (*models.Stock, error) {
	stock, err := s.stockRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if stock.UserID != userID {
		return nil, fmt.Errorf("stock with ID %s not found", id)
	}
	return stock, nil
}

// UpdateStock replaces a stock entry's fields.
func (s *StockService) UpdateStock(userID string, stock *models.Stock) (*models.Stock, error) {
	existing, err := s.GetStockByID(userID, stock.ID)
	if err != nil {
		return nil, err
	}

	existing.ProductName = stock.ProductName
	existing.Quantity = stock.Quantity
	existing.PricePerItem = stock.PricePerItem
	existing.Description = stock.Description
	existing.Category = stock.Category
	existing.ExpiryDate = stock.ExpiryDate

	if err := s.stockRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteStock removes a stock entry, verifying ownership.
func (s *StockService) DeleteStock(userID, id string) error {
	if _, err := s.GetStockByID(userID, id); err != nil {
		return err
	}
	return s.stockRepo.Delete(id)
}

// AdjustQuantity applies a signed delta to a stock's quantity. A result
// below zero is rejected and the stored value left unchanged.
func (s *StockService) AdjustQuantity(userID, id string, delta int) (*models.Stock, error) {
	if _, err := s.GetStockByID(userID, id); err != nil {
		return nil, err
	}
	if err := s.stockRepo.AdjustQuantity(id, delta); err != nil {
		return nil, err
	}
	return s.stockRepo.GetByID(id)
}

// GetLowStock retrieves a user's stocks below the threshold. A threshold of
// zero or less falls back to the default.
func (s *StockService) GetLowStock(userID string, threshold int) ([]models.Stock, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.stockRepo.FindLowStock(userID, threshold)
}

// GetExpired retrieves a user's stocks past their expiry date.
func (s *StockService) GetExpired(userID string) ([]models.Stock, error) {
	return s.stockRepo.FindExpired(userID)
}
