package repositories_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockRepo(t *testing.T, dbName string) *repositories.GORMStockRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// SQLite handles one writer at a time; a second pooled connection would
	// surface as spurious lock errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Stock{}))
	return repositories.NewGORMStockRepository(db)
}

func TestGORMStockRepository_AdjustQuantity(t *testing.T) {
	repo := setupStockRepo(t, "adjust_quantity")

	stock := &models.Stock{ProductName: "Beras Premium", Quantity: 10, PricePerItem: 15000, UserID: "user-1"}
	require.NoError(t, repo.Create(stock))

	// A valid deduction lands
	require.NoError(t, repo.AdjustQuantity(stock.ID, -4))
	got, err := repo.GetByID(stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)

	// A deduction past zero fails and leaves the row untouched
	err = repo.AdjustQuantity(stock.ID, -7)
	assert.ErrorIs(t, err, repositories.ErrInsufficientQuantity)
	got, err = repo.GetByID(stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)

	// Deducting to exactly zero is allowed
	require.NoError(t, repo.AdjustQuantity(stock.ID, -6))
	got, err = repo.GetByID(stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	// An unknown ID reports the same way as a failed guard
	err = repo.AdjustQuantity("no-such-id", -1)
	assert.ErrorIs(t, err, repositories.ErrInsufficientQuantity)
}

func TestGORMStockRepository_AdjustQuantity_Concurrent(t *testing.T) {
	repo := setupStockRepo(t, "adjust_concurrent")

	stock := &models.Stock{ProductName: "Gula Pasir", Quantity: 10, PricePerItem: 12000, UserID: "user-1"}
	require.NoError(t, repo.Create(stock))

	// 20 workers each try to take 1 unit from a stock of 10. Exactly 10 may
	// succeed; the guard in the WHERE clause enforces that without locks in
	// the application.
	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.AdjustQuantity(stock.ID, -1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded)

	got, err := repo.GetByID(stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestGORMStockRepository_UserScoping(t *testing.T) {
	repo := setupStockRepo(t, "user_scoping")

	require.NoError(t, repo.Create(&models.Stock{ProductName: "Beras Premium", Quantity: 5, UserID: "user-1"}))
	require.NoError(t, repo.Create(&models.Stock{ProductName: "Beras Premium", Quantity: 8, UserID: "user-2"}))

	// The same product name resolves per owner
	first, err := repo.GetByProductName("user-1", "Beras Premium")
	require.NoError(t, err)
	assert.Equal(t, 5, first.Quantity)

	second, err := repo.GetByProductName("user-2", "Beras Premium")
	require.NoError(t, err)
	assert.Equal(t, 8, second.Quantity)

	_, err = repo.GetByProductName("user-3", "Beras Premium")
	assert.Error(t, err)

	stocks, err := repo.GetAllByUser("user-1")
	require.NoError(t, err)
	assert.Len(t, stocks, 1)
}

func TestGORMStockRepository_Reports(t *testing.T) {
	repo := setupStockRepo(t, "stock_reports")

	yesterday := time.Now().Add(-24 * time.Hour)
	nextMonth := time.Now().AddDate(0, 1, 0)

	require.NoError(t, repo.Create(&models.Stock{ProductName: "Susu Kental", Quantity: 2, UserID: "user-1", ExpiryDate: &yesterday}))
	require.NoError(t, repo.Create(&models.Stock{ProductName: "Kopi Bubuk", Quantity: 50, UserID: "user-1", ExpiryDate: &nextMonth}))
	require.NoError(t, repo.Create(&models.Stock{ProductName: "Garam", Quantity: 3, UserID: "user-1"}))

	low, err := repo.FindLowStock("user-1", 10)
	require.NoError(t, err)
	assert.Len(t, low, 2)

	low, err = repo.FindLowStock("user-1", 3)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Susu Kental", low[0].ProductName)

	// Entries without an expiry date never count as expired
	expired, err := repo.FindExpired("user-1")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "Susu Kental", expired[0].ProductName)
}
