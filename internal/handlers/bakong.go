package handlers

import (
	"errors"
	"log"

	"khqrpos/internal/middleware"
	"khqrpos/internal/repositories"
	"khqrpos/internal/services/merchant"
	"khqrpos/internal/services/qr"
	"khqrpos/internal/services/verification"
	"khqrpos/internal/utils"
	"khqrpos/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// BakongHandler serves the KHQR issuance, verification, and token
// management endpoints.
type BakongHandler struct {
	qrService       qr.Service
	verifier        verification.Service
	merchantService merchant.Service
}

func NewBakongHandler(qrService qr.Service, verifier verification.Service, merchantService merchant.Service) *BakongHandler {
	return &BakongHandler{
		qrService:       qrService,
		verifier:        verifier,
		merchantService: merchantService,
	}
}

type generateQRInput struct {
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	Currency          string  `json:"currency" validate:"omitempty,oneof=KHR USD khr usd"`
	MerchantAccountID uint    `json:"merchant_account_id"`
}

// GenerateQR issues a payment QR and records its pending transaction.
func (h *BakongHandler) GenerateQR(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input generateQRInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	result, err := h.qrService.Issue(c.Context(), claims.UserID, input.MerchantAccountID, input.Amount, input.Currency)
	if err != nil {
		switch {
		case errors.Is(err, qr.ErrInvalidAmount), errors.Is(err, qr.ErrUnsupportedCurrency):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, merchant.ErrMerchantNotFound), errors.Is(err, qr.ErrMissingToken):
			return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
				"message": "QR generation error",
				"error":   "No merchant account or token found in the database.",
			})
		default:
			log.Printf("QR issuance failed for user %d: %v", claims.UserID, err)
			return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
				"message": "QR Generation Failed",
				"error":   err.Error(),
			})
		}
	}

	return utils.Success(c, result)
}

// VerifyLatest checks the caller's most recent pending transaction
// against the gateway.
func (h *BakongHandler) VerifyLatest(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	result, err := h.verifier.VerifyLatestPending(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("Verification failed for user %d: %v", claims.UserID, err)
		return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
			"message": "MD5 verification failed",
			"error":   err.Error(),
		})
	}
	return utils.Success(c, result)
}

// VerifyByBill checks one specific transaction by its bill number.
func (h *BakongHandler) VerifyByBill(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	billNumber := c.Params("billNumber")
	if billNumber == "" {
		return utils.BadRequest(c, "Bill number is required")
	}

	result, err := h.verifier.VerifyByBill(c.Context(), claims.UserID, billNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return utils.NotFound(c, "Transaction not found")
		}
		log.Printf("Verification failed for bill %s: %v", billNumber, err)
		return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
			"message": "Verification failed",
			"error":   err.Error(),
		})
	}
	return utils.Success(c, result)
}

// GetToken returns the merchant's current gateway token.
func (h *BakongHandler) GetToken(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	m, err := h.merchantService.Resolve(c.Context(), uint(c.QueryInt("merchant_account_id")), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No merchant account or token found",
		})
	}

	token, err := h.merchantService.GetToken(c.Context(), m.ID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No merchant account or token found",
		})
	}
	return utils.Success(c, fiber.Map{"token": token})
}

type updateTokenInput struct {
	Token             string `json:"token" validate:"required,min=10"`
	MerchantAccountID uint   `json:"merchant_account_id"`
}

// UpdateToken rotates the merchant's gateway token. Admin only.
func (h *BakongHandler) UpdateToken(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input updateTokenInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	m, err := h.merchantService.Resolve(c.Context(), input.MerchantAccountID, claims.UserID)
	if err != nil {
		return utils.NotFound(c, "Merchant account not found.")
	}

	if err := h.merchantService.SetToken(c.Context(), m.ID, input.Token, claims.UserID); err != nil {
		return utils.InternalError(c, "Failed to update Bakong token.")
	}

	return utils.Success(c, fiber.Map{
		"message":     "Bakong token updated successfully.",
		"merchant_id": m.ID,
	})
}

// DeleteToken clears the merchant's gateway token. Admin only.
func (h *BakongHandler) DeleteToken(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	m, err := h.merchantService.Resolve(c.Context(), uint(c.QueryInt("merchant_account_id")), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "Merchant account not found.")
	}

	if err := h.merchantService.ClearToken(c.Context(), m.ID, claims.UserID); err != nil {
		if errors.Is(err, merchant.ErrTokenNotFound) {
			return utils.NotFound(c, "No token to delete.")
		}
		return utils.InternalError(c, "Failed to delete Bakong token.")
	}

	return utils.Success(c, fiber.Map{
		"message":     "Bakong token deleted successfully.",
		"merchant_id": m.ID,
	})
}
