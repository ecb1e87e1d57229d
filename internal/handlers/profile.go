package handlers

import (
	"errors"

	"khqrpos/internal/middleware"
	"khqrpos/internal/models"
	"khqrpos/internal/repositories"
	"khqrpos/internal/utils"
	"khqrpos/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the per-user profile endpoints. Access is
// restricted to the profile owner or an admin.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
}

func NewProfileHandler(profileRepo repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return utils.Forbidden(c, "Access denied")
	}

	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return utils.NotFound(c, "Profile not found")
		}
		return utils.InternalError(c, "Failed to fetch profile")
	}
	return utils.Success(c, fiber.Map{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

func (h *ProfileHandler) Upsert(c *fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return utils.Forbidden(c, "Access denied")
	}

	var input models.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if fields, err := validation.Struct(&input); err != nil {
		return utils.InternalError(c, "Validation failed")
	} else if fields != nil {
		return utils.UnprocessableEntity(c, fields)
	}

	profile := &models.Profile{
		UserID:    userID,
		FullName:  input.FullName,
		Phone:     input.Phone,
		Address:   input.Address,
		AvatarURL: input.AvatarURL,
	}
	if err := h.profileRepo.Upsert(profile); err != nil {
		return utils.InternalError(c, "Failed to save profile")
	}
	return utils.Success(c, fiber.Map{
		"message": "Profile saved successfully",
		"data":    profile,
	})
}

func (h *ProfileHandler) Delete(c *fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return utils.Forbidden(c, "Access denied")
	}

	if err := h.profileRepo.DeleteByUserID(userID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return utils.NotFound(c, "Profile not found")
		}
		return utils.InternalError(c, "Failed to delete profile")
	}
	return utils.Success(c, fiber.Map{"message": "Profile deleted successfully"})
}

// authorize resolves the :id path parameter and reports whether the
// caller may act on that user's profile (owner or admin).
func (h *ProfileHandler) authorize(c *fiber.Ctx) (uint, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return 0, false
	}
	targetID, err := parseIDParam(c)
	if err != nil {
		return 0, false
	}
	if claims.UserID != targetID && !claims.IsAdmin() {
		return 0, false
	}
	return targetID, true
}
