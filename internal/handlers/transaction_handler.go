package handlers

import (
	"log"
	"strings"
	"time"

	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	transactionService *services.TransactionService
	validate           *validator.Validate
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		validate:           validator.New(),
	}
}

// RegisterRoutes registers the transaction routes with the Fiber app. The
// static paths are registered before /:id so Fiber does not swallow them.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router) {
	txnRoutes := router.Group("/transactions")
	txnRoutes.Post("/", h.HandleCreateTransaction)
	txnRoutes.Get("/", h.HandleGetTransactions)
	txnRoutes.Get("/date-range", h.HandleGetByDateRange)
	txnRoutes.Get("/summary", h.HandleGetSummary)
	txnRoutes.Get("/type/:type", h.HandleGetByType)
	txnRoutes.Get("/:id", h.HandleGetTransactionByID)
	txnRoutes.Put("/:id", h.HandleUpdateTransaction)
	txnRoutes.Delete("/:id", h.HandleDeleteTransaction)
}

// TransactionItemRequest is one line item on a transaction request.
type TransactionItemRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// TransactionRequest represents the request body for creating a transaction.
type TransactionRequest struct {
	CustomerName string                   `json:"customer_name" validate:"required,min=1,max=100"`
	Amount       float64                  `json:"amount" validate:"gte=0"`
	Type         string                   `json:"type" validate:"required,oneof=credit debit"`
	Description  string                   `json:"description" validate:"omitempty,max=500"`
	Date         *time.Time               `json:"date"`
	Items        []TransactionItemRequest `json:"items" validate:"omitempty,dive"`
}

// isBusinessRuleError reports whether a transaction-creation failure came
// from validation of the request against stock, as opposed to an unexpected
// failure. Business-rule failures surface as 400.
func isBusinessRuleError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "not found in stock") ||
		strings.Contains(msg, "insufficient quantity") ||
		strings.Contains(msg, "price mismatch") ||
		strings.Contains(msg, "does not match the sum") ||
		strings.Contains(msg, "invalid transaction type") ||
		strings.Contains(msg, "quantity of at least")
}

// HandleCreateTransaction creates a transaction, validating and deducting
// stock when line items are present.
func (h *TransactionHandler) HandleCreateTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transaction request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   validationErrorMap(err),
		})
	}

	txn := models.Transaction{
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Type:         req.Type,
		Description:  req.Description,
		UserID:       userID,
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}
	for _, item := range req.Items {
		txn.Items = append(txn.Items, models.TransactionItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	created, err := h.transactionService.CreateTransaction(&txn)
	if err != nil {
		log.Printf("Error creating transaction for user %s: %v", userID, err)
		if isBusinessRuleError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

// HandleGetTransactions lists the user's transactions, optionally limited to
// the last ?days=N days.
func (h *TransactionHandler) HandleGetTransactions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	days := c.QueryInt("days", 0)
	if c.Query("days") != "" && days < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "days must be a positive number",
		})
	}

	txns, err := h.transactionService.GetTransactions(userID, days)
	if err != nil {
		log.Printf("Error getting transactions for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txns,
	})
}

// HandleGetTransactionByID retrieves a single transaction.
func (h *TransactionHandler) HandleGetTransactionByID(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	txn, err := h.transactionService.GetTransactionByID(userID, c.Params("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error getting transaction %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txn,
	})
}

// UpdateTransactionRequest represents the request body for an update. All
// fields are optional; line items are immutable after creation.
type UpdateTransactionRequest struct {
	CustomerName string     `json:"customer_name" validate:"omitempty,min=1,max=100"`
	Amount       float64    `json:"amount" validate:"omitempty,gte=0"`
	Type         string     `json:"type" validate:"omitempty,oneof=credit debit"`
	Description  string     `json:"description" validate:"omitempty,max=500"`
	Date         *time.Time `json:"date"`
}

// HandleUpdateTransaction updates a transaction's scalar fields.
func (h *TransactionHandler) HandleUpdateTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transaction update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   validationErrorMap(err),
		})
	}

	update := models.Transaction{
		ID:           c.Params("id"),
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Type:         req.Type,
		Description:  req.Description,
	}
	if req.Date != nil {
		update.Date = *req.Date
	}

	txn, err := h.transactionService.UpdateTransaction(userID, &update)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "invalid transaction type") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating transaction %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txn,
	})
}

// HandleDeleteTransaction removes a transaction.
func (h *TransactionHandler) HandleDeleteTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	if err := h.transactionService.DeleteTransaction(userID, c.Params("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error deleting transaction %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    "Transaction deleted successfully",
	})
}

// HandleGetByDateRange lists transactions dated within ?startDate=&endDate=
// (YYYY-MM-DD, end date inclusive).
func (h *TransactionHandler) HandleGetByDateRange(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	start, err := time.Parse("2006-01-02", c.Query("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "startDate must be a valid date (YYYY-MM-DD)",
		})
	}
	end, err := time.Parse("2006-01-02", c.Query("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "endDate must be a valid date (YYYY-MM-DD)",
		})
	}
	// Make the end date inclusive of the whole day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	txns, err := h.transactionService.GetTransactionsByDateRange(userID, start, end)
	if err != nil {
		log.Printf("Error getting transactions by date range for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txns,
	})
}

// HandleGetByType lists transactions of one type (credit or debit).
func (h *TransactionHandler) HandleGetByType(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	txns, err := h.transactionService.GetTransactionsByType(userID, c.Params("type"))
	if err != nil {
		if strings.Contains(err.Error(), "invalid transaction type") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error getting transactions by type for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txns,
	})
}

// HandleGetSummary totals the user's credits and debits.
func (h *TransactionHandler) HandleGetSummary(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	summary, err := h.transactionService.GetSummary(userID)
	if err != nil {
		log.Printf("Error getting transaction summary for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
