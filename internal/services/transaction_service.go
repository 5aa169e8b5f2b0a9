package services

import (
	"fmt"
	"log"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"
)

// EventPublisher publishes domain events to the message broker. Publishing
// is best-effort: a failure is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishTransactionCreated(event map[string]interface{}) error
}

// TransactionSummary aggregates a user's transaction amounts by type.
type TransactionSummary struct {
	Credit  float64 `json:"credit"`
	Debit   float64 `json:"debit"`
	Balance float64 `json:"balance"`
}

// TransactionService handles business logic related to transactions,
// including the stock-aware creation workflow.
type TransactionService struct {
	transactionRepo repositories.TransactionRepository
	stockRepo       repositories.StockRepository
	publisher       EventPublisher
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactionRepo repositories.TransactionRepository, stockRepo repositories.StockRepository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		stockRepo:       stockRepo,
		publisher:       publisher,
	}
}

// CreateTransaction persists a transaction. When line items are present they
// are validated against the user's stock and the referenced quantities are
// deducted as part of creation:
//
//  1. The sum of quantity×price across items must equal the declared amount
//     exactly. Callers are expected to pre-round; there is no tolerance.
//  2. Each item must name an existing stock entry with sufficient quantity
//     at the item's declared price. The first failing item aborts.
//  3. Deductions use the repository's guarded adjustment, so a concurrent
//     request cannot slip between the check and the write. If any step after
//     a deduction fails, the applied deductions are rolled back.
func (s *TransactionService) CreateTransaction(txn *models.Transaction) (*models.Transaction, error) {
	if txn.Type != models.TransactionTypeCredit && txn.Type != models.TransactionTypeDebit {
		return nil, fmt.Errorf("invalid transaction type: %s", txn.Type)
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	if len(txn.Items) > 0 {
		if err := s.validateItems(txn); err != nil {
			return nil, err
		}
		if err := s.deductStock(txn); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.Create(txn); err != nil {
		if len(txn.Items) > 0 {
			s.restoreStock(txn, len(txn.Items))
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.publishCreated(txn)
	return txn, nil
}

// validateItems checks the declared amount against the line items and each
// item against the user's stock. The first failure wins.
func (s *TransactionService) validateItems(txn *models.Transaction) error {
	var total float64
	for _, item := range txn.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item %q must have a quantity of at least 1", item.Name)
		}
		total += float64(item.Quantity) * item.Price
	}
	if total != txn.Amount {
		return fmt.Errorf("amount does not match the sum of item totals (declared: %v, calculated: %v)", txn.Amount, total)
	}

	for _, item := range txn.Items {
		stock, err := s.stockRepo.GetByProductName(txn.UserID, item.Name)
		if err != nil {
			return fmt.Errorf("item %q not found in stock", item.Name)
		}
		if stock.Quantity < item.Quantity {
			return fmt.Errorf("insufficient quantity for item %q (requested: %d, available: %d)", item.Name, item.Quantity, stock.Quantity)
		}
		if stock.PricePerItem != item.Price {
			return fmt.Errorf("price mismatch for item %q (current price: %v)", item.Name, stock.PricePerItem)
		}
	}
	return nil
}

// deductStock applies the guarded deduction for every item. On failure the
// deductions already applied are compensated before returning.
func (s *TransactionService) deductStock(txn *models.Transaction) error {
	for i, item := range txn.Items {
		stock, err := s.stockRepo.GetByProductName(txn.UserID, item.Name)
		if err != nil {
			s.restoreStock(txn, i)
			return fmt.Errorf("item %q not found in stock", item.Name)
		}
		if err := s.stockRepo.AdjustQuantity(stock.ID, -item.Quantity); err != nil {
			// A concurrent request consumed the stock between validation
			// and the write.
			s.restoreStock(txn, i)
			return fmt.Errorf("insufficient quantity for item %q", item.Name)
		}
	}
	return nil
}

// restoreStock re-adds the quantities of the first n items. Used to unwind
// partially applied deductions.
func (s *TransactionService) restoreStock(txn *models.Transaction, n int) {
	for i := 0; i < n; i++ {
		item := txn.Items[i]
		stock, err := s.stockRepo.GetByProductName(txn.UserID, item.Name)
		if err != nil {
			log.Printf("Failed to restore stock for item %q: %v", item.Name, err)
			continue
		}
		if err := s.stockRepo.AdjustQuantity(stock.ID, item.Quantity); err != nil {
			log.Printf("Failed to restore %d units of item %q: %v", item.Quantity, item.Name, err)
		}
	}
}

func (s *TransactionService) publishCreated(txn *models.Transaction) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"transactionID": txn.ID,
		"userID":        txn.UserID,
		"type":          txn.Type,
		"amount":        txn.Amount,
		"itemCount":     len(txn.Items),
	}
	if err := s.publisher.PublishTransactionCreated(event); err != nil {
		log.Printf("Warning: Failed to publish transaction created event for %s: %v", txn.ID, err)
	}
}

// GetTransactions retrieves a user's transactions. When days is positive,
// only transactions within the last N days are returned.
func (s *TransactionService) GetTransactions(userID string, days int) ([]models.Transaction, error) {
	var since *time.Time
	if days > 0 {
		t := time.Now().AddDate(0, 0, -days)
		since = &t
	}
	return s.transactionRepo.GetAllByUser(userID, since)
}

// GetTransactionByID retrieves a single transaction, verifying ownership.
func (s *TransactionService) GetTransactionByID(userID, id string) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("transaction with ID %s not found", id)
	}
	return txn, nil
}

// UpdateTransaction updates a transaction's scalar fields. Line items are
// not updatable; the stock deduction already happened at creation.
func (s *TransactionService) UpdateTransaction(userID string, txn *models.Transaction) (*models.Transaction, error) {
	existing, err := s.GetTransactionByID(userID, txn.ID)
	if err != nil {
		return nil, err
	}

	if txn.CustomerName != "" {
		existing.CustomerName = txn.CustomerName
	}
	if txn.Type != "" {
		if txn.Type != models.TransactionTypeCredit && txn.Type != models.TransactionTypeDebit {
			return nil, fmt.Errorf("invalid transaction type: %s", txn.Type)
		}
		existing.Type = txn.Type
	}
	if txn.Amount != 0 {
		existing.Amount = txn.Amount
	}
	if txn.Description != "" {
		existing.Description = txn.Description
	}
	if !txn.Date.IsZero() {
		existing.Date = txn.Date
	}

	if err := s.transactionRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTransaction removes a transaction, verifying ownership. Stock is not
// restored on deletion; deleting a record does not undo the sale.
func (s *TransactionService) DeleteTransaction(userID, id string) error {
	if _, err := s.GetTransactionByID(userID, id); err != nil {
		return err
	}
	return s.transactionRepo.Delete(id)
}

// GetTransactionsByDateRange retrieves a user's transactions within [start, end].
func (s *TransactionService) GetTransactionsByDateRange(userID string, start, end time.Time) ([]models.Transaction, error) {
	return s.transactionRepo.FindByDateRange(userID, start, end)
}

// GetTransactionsByType retrieves a user's transactions of one type.
func (s *TransactionService) GetTransactionsByType(userID, txnType string) ([]models.Transaction, error) {
	if txnType != models.TransactionTypeCredit && txnType != models.TransactionTypeDebit {
		return nil, fmt.Errorf("invalid transaction type: %s", txnType)
	}
	return s.transactionRepo.FindByType(userID, txnType)
}

// GetSummary totals a user's credits and debits.
func (s *TransactionService) GetSummary(userID string) (*TransactionSummary, error) {
	credit, err := s.transactionRepo.TotalAmountByType(userID, models.TransactionTypeCredit)
	if err != nil {
		return nil, err
	}
	debit, err := s.transactionRepo.TotalAmountByType(userID, models.TransactionTypeDebit)
	if err != nil {
		return nil, err
	}
	return &TransactionSummary{
		Credit:  credit,
		Debit:   debit,
		Balance: credit - debit,
	}, nil
}
