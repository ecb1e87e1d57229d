package handlers

import (
	"errors"
	"strconv"

	"khqrpos/internal/models"
	"khqrpos/internal/services/merchant"
	"khqrpos/internal/utils"
	"khqrpos/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type MerchantAccountHandler struct {
	service merchant.Service
}

func NewMerchantAccountHandler(service merchant.Service) *MerchantAccountHandler {
	return &MerchantAccountHandler{service: service}
}

func (h *MerchantAccountHandler) Create(c *fiber.Ctx) error {
	var input models.CreateMerchantAccountInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	m, err := h.service.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, merchant.ErrDuplicateAccountID) {
			return utils.BadRequest(c, "Account ID already exists")
		}
		return utils.InternalError(c, "Failed to create merchant account")
	}

	return utils.Created(c, fiber.Map{
		"message": "Merchant account added successfully",
		"data":    m,
	})
}

func (h *MerchantAccountHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to list merchant accounts")
	}
	return utils.Success(c, fiber.Map{
		"message": "Merchant accounts retrieved successfully",
		"data":    list,
	})
}

func (h *MerchantAccountHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant account ID")
	}

	m, err := h.service.Get(c.Context(), id)
	if err != nil {
		return utils.NotFound(c, "Merchant account not found")
	}
	return utils.Success(c, fiber.Map{
		"message": "Merchant account retrieved successfully",
		"data":    m,
	})
}

func (h *MerchantAccountHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant account ID")
	}

	var input models.UpdateMerchantAccountInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	m, err := h.service.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, merchant.ErrMerchantNotFound) {
			return utils.NotFound(c, "Merchant account not found")
		}
		return utils.InternalError(c, "Failed to update merchant account")
	}
	return utils.Success(c, fiber.Map{
		"message": "Merchant account updated successfully",
		"data":    m,
	})
}

func (h *MerchantAccountHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant account ID")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, merchant.ErrMerchantNotFound) {
			return utils.NotFound(c, "Merchant account not found")
		}
		return utils.InternalError(c, "Failed to delete merchant account")
	}
	return utils.Success(c, fiber.Map{
		"message": "Merchant account deleted successfully",
	})
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
