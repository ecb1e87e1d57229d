package handlers

import (
	"errors"
	"log"

	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	"khqrpos/internal/services/user"
	"khqrpos/internal/utils"
	"khqrpos/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler exposes the admin-only user management endpoints.
type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	users, total, err := h.userService.List(page, limit)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return utils.InternalError(c, "Failed to list users")
	}

	return utils.Success(c, fiber.Map{
		"message": "Users retrieved successfully",
		"data":    users,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	u, err := h.userService.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalError(c, "Failed to fetch user")
	}
	return utils.Success(c, fiber.Map{
		"message": "User retrieved successfully",
		"data":    u,
	})
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	u, err := h.userService.Create(&input)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "Failed to create user")
	}
	return utils.Created(c, fiber.Map{
		"message": "User created successfully",
		"data":    u,
	})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var input models.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	u, err := h.userService.Update(id, &input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return utils.NotFound(c, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalError(c, "Failed to update user")
		}
	}
	return utils.Success(c, fiber.Map{
		"message": "User updated successfully",
		"data":    u,
	})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalError(c, "Failed to delete user")
	}
	return utils.Success(c, fiber.Map{"message": "User deleted successfully"})
}
