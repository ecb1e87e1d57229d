package handlers

import (
	"log"

	"khqrpos/internal/middleware"
	"khqrpos/internal/repositories"
	"khqrpos/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const maxTransactionLimit = 100

// TransactionHandler lists the caller's payment transactions.
type TransactionHandler struct {
	txRepo repositories.TransactionRepository
}

func NewTransactionHandler(txRepo repositories.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{txRepo: txRepo}
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > maxTransactionLimit {
		limit = 20
	}

	transactions, total, err := h.txRepo.ListForUser(claims.UserID, page, limit)
	if err != nil {
		log.Printf("Error fetching transactions for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to fetch transactions")
	}

	return utils.Success(c, fiber.Map{
		"message": "Transactions retrieved successfully",
		"data":    transactions,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
