package services_test

import (
	"fmt"
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of repositories.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) GetAllByUser(userID string, since *time.Time) ([]models.Transaction, error) {
	args := m.Called(userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(id string) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(txn *models.Transaction) error {
	args := m.Called(txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Update(txn *models.Transaction) error {
	args := m.Called(txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByDateRange(userID string, start, end time.Time) ([]models.Transaction, error) {
	args := m.Called(userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByType(userID, txnType string) ([]models.Transaction, error) {
	args := m.Called(userID, txnType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) TotalAmountByType(userID, txnType string) (float64, error) {
	args := m.Called(userID, txnType)
	return args.Get(0).(float64), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishTransactionCreated(event map[string]interface{}) error {
	args := m.Called(event)
	return args.Error(0)
}

func creditTransaction(items ...models.TransactionItem) *models.Transaction {
	var amount float64
	for _, item := range items {
		amount += float64(item.Quantity) * item.Price
	}
	return &models.Transaction{
		CustomerName: "Budi",
		Amount:       amount,
		Type:         models.TransactionTypeCredit,
		UserID:       "user-1",
		Items:        items,
	}
}

func TestTransactionService_CreateTransaction_NoItems(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	mockPublisher := new(MockEventPublisher)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, mockPublisher)

	txn := &models.Transaction{
		CustomerName: "Budi",
		Amount:       50000,
		Type:         models.TransactionTypeDebit,
		UserID:       "user-1",
	}
	mockTxnRepo.On("Create", txn).Return(nil).Once()
	mockPublisher.On("PublishTransactionCreated", mock.Anything).Return(nil).Once()

	created, err := txnService.CreateTransaction(txn)
	assert.NoError(t, err)
	assert.False(t, created.Date.IsZero()) // Date defaults to now
	mockStockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
	mockTxnRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)

	// Unknown type is rejected
	_, err = txnService.CreateTransaction(&models.Transaction{Type: "transfer", UserID: "user-1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transaction type")
}

func TestTransactionService_CreateTransaction_AmountMismatch(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, nil)

	txn := creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 2, Price: 15000})
	txn.Amount = 29000 // Declared amount disagrees with 2 × 15000

	_, err := txnService.CreateTransaction(txn)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount does not match the sum of item totals")
	mockStockRepo.AssertNotCalled(t, "GetByProductName", mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestTransactionService_CreateTransaction_ItemValidation(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, nil)

	stock := &models.Stock{
		ID:           "stock-1",
		ProductName:  "Beras Premium",
		Quantity:     10,
		PricePerItem: 15000,
		UserID:       "user-1",
	}

	// Item not found in stock
	mockStockRepo.On("GetByProductName", "user-1", "Tepung").Return(nil, fmt.Errorf("stock for product Tepung not found")).Once()
	_, err := txnService.CreateTransaction(creditTransaction(models.TransactionItem{Name: "Tepung", Quantity: 1, Price: 8000}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `item "Tepung" not found in stock`)

	// Requested quantity exceeds what is available
	mockStockRepo.On("GetByProductName", "user-1", "Beras Premium").Return(stock, nil).Once()
	_, err = txnService.CreateTransaction(creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 11, Price: 15000}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `insufficient quantity for item "Beras Premium" (requested: 11, available: 10)`)

	// Declared price disagrees with the current stock price
	mockStockRepo.On("GetByProductName", "user-1", "Beras Premium").Return(stock, nil).Once()
	_, err = txnService.CreateTransaction(creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 2, Price: 14000}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `price mismatch for item "Beras Premium" (current price: 15000)`)

	// Zero quantity is rejected before any stock lookup
	_, err = txnService.CreateTransaction(creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 0, Price: 15000}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `item "Beras Premium" must have a quantity of at least 1`)

	// No validation failure may leave a write behind
	mockStockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockStockRepo.AssertExpectations(t)
}

func TestTransactionService_CreateTransaction_DeductsStock(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	mockPublisher := new(MockEventPublisher)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, mockPublisher)

	stock := &models.Stock{
		ID:           "stock-1",
		ProductName:  "Beras Premium",
		Quantity:     10,
		PricePerItem: 15000,
		UserID:       "user-1",
	}

	// Validation and deduction each look the product up
	mockStockRepo.On("GetByProductName", "user-1", "Beras Premium").Return(stock, nil).Twice()
	mockStockRepo.On("AdjustQuantity", "stock-1", -2).Return(nil).Once()
	mockTxnRepo.On("Create", mock.AnythingOfType("*models.Transaction")).Return(nil).Once()
	mockPublisher.On("PublishTransactionCreated", mock.Anything).Return(nil).Once()

	txn := creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 2, Price: 15000})
	created, err := txnService.CreateTransaction(txn)
	assert.NoError(t, err)
	assert.Equal(t, float64(30000), created.Amount)
	mockStockRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestTransactionService_CreateTransaction_RestoresStockOnFailure(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, nil)

	stock := &models.Stock{
		ID:           "stock-1",
		ProductName:  "Beras Premium",
		Quantity:     10,
		PricePerItem: 15000,
		UserID:       "user-1",
	}

	// Persisting the transaction fails after the deduction was applied, so
	// the deducted quantity must be re-added.
	mockStockRepo.On("GetByProductName", "user-1", "Beras Premium").Return(stock, nil).Times(3)
	mockStockRepo.On("AdjustQuantity", "stock-1", -2).Return(nil).Once()
	mockTxnRepo.On("Create", mock.AnythingOfType("*models.Transaction")).Return(fmt.Errorf("database gone")).Once()
	mockStockRepo.On("AdjustQuantity", "stock-1", 2).Return(nil).Once()

	txn := creditTransaction(models.TransactionItem{Name: "Beras Premium", Quantity: 2, Price: 15000})
	_, err := txnService.CreateTransaction(txn)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create transaction")
	mockStockRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestTransactionService_CreateTransaction_ConcurrentDeductionLoses(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	mockStockRepo := new(MockStockRepository)
	txnService := services.NewTransactionService(mockTxnRepo, mockStockRepo, nil)

	first := &models.Stock{ID: "stock-1", ProductName: "Beras Premium", Quantity: 10, PricePerItem: 15000, UserID: "user-1"}
	second := &models.Stock{ID: "stock-2", ProductName: "Gula Pasir", Quantity: 5, PricePerItem: 12000, UserID: "user-1"}

	// Both items validate, the first deduction lands, then a concurrent
	// request drains the second product and its guarded update fails. The
	// first deduction must be unwound.
	mockStockRepo.On("GetByProductName", "user-1", "Beras Premium").Return(first, nil).Times(3)
	mockStockRepo.On("GetByProductName", "user-1", "Gula Pasir").Return(second, nil).Twice()
	mockStockRepo.On("AdjustQuantity", "stock-1", -2).Return(nil).Once()
	mockStockRepo.On("AdjustQuantity", "stock-2", -5).Return(fmt.Errorf("insufficient stock quantity")).Once()
	mockStockRepo.On("AdjustQuantity", "stock-1", 2).Return(nil).Once()

	txn := creditTransaction(
		models.TransactionItem{Name: "Beras Premium", Quantity: 2, Price: 15000},
		models.TransactionItem{Name: "Gula Pasir", Quantity: 5, Price: 12000},
	)
	_, err := txnService.CreateTransaction(txn)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `insufficient quantity for item "Gula Pasir"`)
	mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockStockRepo.AssertExpectations(t)
}

func TestTransactionService_GetTransactionByID_Ownership(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	txnService := services.NewTransactionService(mockTxnRepo, new(MockStockRepository), nil)

	txn := &models.Transaction{ID: "txn-1", UserID: "owner", Amount: 1000, Type: models.TransactionTypeCredit}
	mockTxnRepo.On("GetByID", "txn-1").Return(txn, nil).Twice()

	result, err := txnService.GetTransactionByID("owner", "txn-1")
	assert.NoError(t, err)
	assert.Equal(t, "txn-1", result.ID)

	_, err = txnService.GetTransactionByID("intruder", "txn-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	mockTxnRepo.AssertExpectations(t)
}

func TestTransactionService_GetTransactionsByType(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	txnService := services.NewTransactionService(mockTxnRepo, new(MockStockRepository), nil)

	credits := []models.Transaction{{ID: "txn-1", Type: models.TransactionTypeCredit, Amount: 1000, UserID: "user-1"}}
	mockTxnRepo.On("FindByType", "user-1", models.TransactionTypeCredit).Return(credits, nil).Once()

	result, err := txnService.GetTransactionsByType("user-1", models.TransactionTypeCredit)
	assert.NoError(t, err)
	assert.Len(t, result, 1)

	_, err = txnService.GetTransactionsByType("user-1", "transfer")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transaction type")
	mockTxnRepo.AssertExpectations(t)
}

func TestTransactionService_GetSummary(t *testing.T) {
	mockTxnRepo := new(MockTransactionRepository)
	txnService := services.NewTransactionService(mockTxnRepo, new(MockStockRepository), nil)

	mockTxnRepo.On("TotalAmountByType", "user-1", models.TransactionTypeCredit).Return(float64(100000), nil).Once()
	mockTxnRepo.On("TotalAmountByType", "user-1", models.TransactionTypeDebit).Return(float64(40000), nil).Once()

	summary, err := txnService.GetSummary("user-1")
	assert.NoError(t, err)
	assert.Equal(t, float64(100000), summary.Credit)
	assert.Equal(t, float64(40000), summary.Debit)
	assert.Equal(t, float64(60000), summary.Balance)
	mockTxnRepo.AssertExpectations(t)
}
