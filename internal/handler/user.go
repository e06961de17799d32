package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/model"
)

// UserHandler handles profile reads/updates and user search
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a UserHandler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UpdateProfileRequest profile update request
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
}

// UpdateProfile changes the user-set profile fields. The display name set
// here is the first tier of the realtime display-name resolution chain.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var user model.User
	if err := h.db.Where("uid = ?", uid).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	}

	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if len(trimmed) > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "display name too long",
			})
		}
		if trimmed == "" {
			user.DisplayName = nil
		} else {
			user.DisplayName = &trimmed
		}
	}
	if req.PhotoURL != nil {
		user.PhotoURL = req.PhotoURL
	}

	if err := h.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update profile",
		})
	}

	return c.JSON(fiber.Map{"user": toUserResponse(&user)})
}

// SearchUsers finds users by display name or email, for friend adds
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "search query is required",
		})
	}
	if len(query) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "search query must be at least 2 characters",
		})
	}

	searchPattern := "%" + query + "%"

	var users []model.User
	if err := h.db.
		Where("uid != ?", uid).
		Where("display_name ILIKE ? OR provider_name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern, searchPattern).
		Limit(20).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "search failed",
		})
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, toUserResponse(&users[i]))
	}

	return c.JSON(fiber.Map{
		"users": results,
		"total": len(results),
	})
}
