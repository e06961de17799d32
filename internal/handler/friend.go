package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/model"
	"whiteboard-backend/internal/realtime"
)

// FriendHandler manages friend lists and online lookups
type FriendHandler struct {
	db       *gorm.DB
	hub      *realtime.Hub
	resolver *realtime.DisplayNameResolver
}

// NewFriendHandler creates a FriendHandler
func NewFriendHandler(db *gorm.DB, hub *realtime.Hub, resolver *realtime.DisplayNameResolver) *FriendHandler {
	return &FriendHandler{db: db, hub: hub, resolver: resolver}
}

// FriendResponse is one friend row with live online status
type FriendResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	Online      bool   `json:"online"`
}

// GetFriends lists the caller's friends with their online status
func (h *FriendHandler) GetFriends(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var rows []model.Friend
	if err := h.db.Where("user_uid = ?", uid).Order("id ASC").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load friends",
		})
	}

	friends := make([]FriendResponse, 0, len(rows))
	for _, row := range rows {
		var user model.User
		photoURL := ""
		if err := h.db.Select("photo_url").Where("uid = ?", row.FriendUID).First(&user).Error; err == nil && user.PhotoURL != nil {
			photoURL = *user.PhotoURL
		}
		friends = append(friends, FriendResponse{
			UID:         row.FriendUID,
			DisplayName: h.resolver.Resolve(c.Context(), row.FriendUID),
			PhotoURL:    photoURL,
			Online:      h.hub.IsOnline(row.FriendUID),
		})
	}

	return c.JSON(fiber.Map{"friends": friends})
}

// AddFriendRequest names the user to add
type AddFriendRequest struct {
	FriendUID string `json:"friendUid"`
}

// AddFriend adds a user to the caller's friend list and notifies them
// over their live connections if they are online
func (h *FriendHandler) AddFriend(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req AddFriendRequest
	if err := c.BodyParser(&req); err != nil || req.FriendUID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "friendUid is required",
		})
	}
	if req.FriendUID == uid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cannot add yourself",
		})
	}

	var target model.User
	if err := h.db.Select("uid").Where("uid = ?", req.FriendUID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to add friend",
		})
	}

	var count int64
	h.db.Model(&model.Friend{}).
		Where("user_uid = ? AND friend_uid = ?", uid, req.FriendUID).
		Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "already friends",
		})
	}

	friend := model.Friend{UserUID: uid, FriendUID: req.FriendUID}
	if err := h.db.Create(&friend).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to add friend",
		})
	}

	h.hub.SendToUser(req.FriendUID, realtime.EventFriendAdded, realtime.FriendAddedPayload{
		UserID:      uid,
		DisplayName: h.resolver.Resolve(c.Context(), uid),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveFriend removes a user from the caller's friend list
func (h *FriendHandler) RemoveFriend(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	friendUID := c.Params("friendUid")

	result := h.db.Where("user_uid = ? AND friend_uid = ?", uid, friendUID).Delete(&model.Friend{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to remove friend",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "friend not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
