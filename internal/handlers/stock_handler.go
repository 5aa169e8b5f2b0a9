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

// StockHandler handles HTTP requests for stock.
type StockHandler struct {
	stockService *services.StockService
	validate     *validator.Validate
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService *services.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the stock routes with the Fiber app. The static
// paths are registered before /:id so Fiber does not swallow them.
func (h *StockHandler) RegisterRoutes(router fiber.Router) {
	stockRoutes := router.Group("/stocks")
	stockRoutes.Post("/", h.HandleAddStock)
	stockRoutes.Post("/remove", h.HandleRemoveStock)
	stockRoutes.Get("/", h.HandleGetStocks)
	stockRoutes.Get("/low-stock", h.HandleGetLowStock)
	stockRoutes.Get("/expired", h.HandleGetExpired)
	stockRoutes.Get("/:id", h.HandleGetStockByID)
	stockRoutes.Put("/:id", h.HandleUpdateStock)
	stockRoutes.Delete("/:id", h.HandleDeleteStock)
	stockRoutes.Patch("/:id/quantity", h.HandleAdjustQuantity)
}

// StockRequest represents the request body for creating or updating a stock.
type StockRequest struct {
	ProductName  string     `json:"product_name" validate:"required,min=1,max=100"`
	Quantity     int        `json:"quantity" validate:"gte=0"`
	PricePerItem float64    `json:"price_per_item" validate:"gte=0"`
	Description  string     `json:"description" validate:"omitempty,max=500"`
	Category     string     `json:"category" validate:"omitempty,max=100"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

// HandleAddStock creates a stock entry, or merges the quantity into an
// existing entry with the same product name.
func (h *StockHandler) HandleAddStock(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing stock request body: %v", err)
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

	stock, err := h.stockService.AddStock(&models.Stock{
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		PricePerItem: req.PricePerItem,
		Description:  req.Description,
		Category:     req.Category,
		ExpiryDate:   req.ExpiryDate,
		UserID:       userID,
	})
	if err != nil {
		log.Printf("Error adding stock for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    stock,
	})
}

// RemoveStockRequest represents the request body for removing stock by name.
type RemoveStockRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// HandleRemoveStock deducts quantity from a stock entry by product name.
func (h *StockHandler) HandleRemoveStock(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req RemoveStockRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing remove stock body: %v", err)
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

	stock, err := h.stockService.RemoveStock(userID, req.ProductName, req.Quantity)
	if err != nil {
		log.Printf("Error removing stock for user %s: %v", userID, err)
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "insufficient") {
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

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stock,
	})
}

// HandleGetStocks lists the authenticated user's stock entries.
func (h *StockHandler) HandleGetStocks(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	stocks, err := h.stockService.GetStocks(userID)
	if err != nil {
		log.Printf("Error getting stocks for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stocks,
	})
}

// HandleGetStockByID retrieves a single stock entry.
func (h *StockHandler) HandleGetStockByID(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	stock, err := h.stockService.GetStockByID(userID, c.Params("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error getting stock %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stock,
	})
}

// HandleUpdateStock replaces a stock entry's fields.
func (h *StockHandler) HandleUpdateStock(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing stock update body: %v", err)
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

	stock, err := h.stockService.UpdateStock(userID, &models.Stock{
		ID:           c.Params("id"),
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		PricePerItem: req.PricePerItem,
		Description:  req.Description,
		Category:     req.Category,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating stock %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stock,
	})
}

// HandleDeleteStock removes a stock entry.
func (h *StockHandler) HandleDeleteStock(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	if err := h.stockService.DeleteStock(userID, c.Params("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error deleting stock %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    "Stock deleted successfully",
	})
}

// AdjustQuantityRequest represents the request body for a quantity change.
// Adjustment is a signed delta: positive restocks, negative deducts.
type AdjustQuantityRequest struct {
	Adjustment int `json:"adjustment" validate:"required"`
}

// HandleAdjustQuantity applies a clamped quantity adjustment. A result
// below zero is rejected and the stored quantity left unchanged.
func (h *StockHandler) HandleAdjustQuantity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	var req AdjustQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing quantity adjustment body: %v", err)
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

	stock, err := h.stockService.AdjustQuantity(userID, c.Params("id"), req.Adjustment)
	if err != nil {
		if strings.Contains(err.Error(), "insufficient") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "insufficient stock quantity",
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error adjusting quantity for stock %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stock,
	})
}

// HandleGetLowStock lists stocks below a quantity threshold (default 10).
func (h *StockHandler) HandleGetLowStock(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	threshold := c.QueryInt("threshold", services.DefaultLowStockThreshold)
	stocks, err := h.stockService.GetLowStock(userID, threshold)
	if err != nil {
		log.Printf("Error getting low stock for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stocks,
	})
}

// HandleGetExpired lists stocks past their expiry date.
func (h *StockHandler) HandleGetExpired(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized",
		})
	}

	stocks, err := h.stockService.GetExpired(userID)
	if err != nil {
		log.Printf("Error getting expired stock for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stocks,
	})
}
