package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/model"
)

// ContainerHandler handles container and item CRUD
type ContainerHandler struct {
	db *gorm.DB
}

// NewContainerHandler creates a ContainerHandler
func NewContainerHandler(db *gorm.DB) *ContainerHandler {
	return &ContainerHandler{db: db}
}

// CreateContainerRequest container creation request
type CreateContainerRequest struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CreateContainer adds a container to a board
func (h *ContainerHandler) CreateContainer(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	var board model.Board
	if err := h.db.Select("id").Where("id = ?", boardID).First(&board).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "board not found",
		})
	}

	var req CreateContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	containerType := req.Type
	switch containerType {
	case "NOTE", "LINK":
	case "":
		containerType = "NOTE"
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid container type",
		})
	}

	container := model.Container{
		ID:      uuid.New().String(),
		BoardID: boardID,
		Type:    containerType,
		X:       req.X,
		Y:       req.Y,
		Width:   req.Width,
		Height:  req.Height,
	}
	if container.Width <= 0 {
		container.Width = 240
	}
	if container.Height <= 0 {
		container.Height = 180
	}

	if err := h.db.Create(&container).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create container",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"container": container})
}

// UpdateContainerRequest authoritative container update
type UpdateContainerRequest struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	ZIndex *int     `json:"z_index"`
}

// UpdateContainer persists a container transform. The live echo during a
// drag travels over the websocket relay; this endpoint is the
// last-write-wins authoritative state.
func (h *ContainerHandler) UpdateContainer(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")
	containerID := c.Params("containerId")

	var req UpdateContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.X != nil {
		updates["x"] = *req.X
	}
	if req.Y != nil {
		updates["y"] = *req.Y
	}
	if req.Width != nil && *req.Width > 0 {
		updates["width"] = *req.Width
	}
	if req.Height != nil && *req.Height > 0 {
		updates["height"] = *req.Height
	}
	if req.ZIndex != nil {
		updates["z_index"] = *req.ZIndex
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "nothing to update",
		})
	}

	result := h.db.Model(&model.Container{}).
		Where("id = ? AND board_id = ?", containerID, boardID).
		Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update container",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "container not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteContainer removes a container and its items
func (h *ContainerHandler) DeleteContainer(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")
	containerID := c.Params("containerId")

	tx := h.db.Begin()
	if err := tx.Where("container_id = ?", containerID).Delete(&model.ContainerItem{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete container",
		})
	}
	result := tx.Where("id = ? AND board_id = ?", containerID, boardID).Delete(&model.Container{})
	if result.Error != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete container",
		})
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "container not found",
		})
	}
	tx.Commit()

	return c.JSON(fiber.Map{"success": true})
}

// CreateItemRequest item creation request
type CreateItemRequest struct {
	Content   string  `json:"content"`
	URL       *string `json:"url"`
	SortOrder int     `json:"sort_order"`
}

// CreateItem adds a note/link item to a container
func (h *ContainerHandler) CreateItem(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	containerID := c.Params("containerId")

	var container model.Container
	if err := h.db.Select("id").Where("id = ?", containerID).First(&container).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "container not found",
		})
	}

	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	item := model.ContainerItem{
		ID:          uuid.New().String(),
		ContainerID: containerID,
		Content:     req.Content,
		URL:         req.URL,
		SortOrder:   req.SortOrder,
	}

	if err := h.db.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

// UpdateItemRequest item update request
type UpdateItemRequest struct {
	Content   *string `json:"content"`
	URL       *string `json:"url"`
	SortOrder *int    `json:"sort_order"`
}

// UpdateItem edits an item
func (h *ContainerHandler) UpdateItem(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	itemID := c.Params("itemId")

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "nothing to update",
		})
	}

	result := h.db.Model(&model.ContainerItem{}).Where("id = ?", itemID).Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update item",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "item not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteItem removes an item
func (h *ContainerHandler) DeleteItem(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	itemID := c.Params("itemId")

	result := h.db.Where("id = ?", itemID).Delete(&model.ContainerItem{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete item",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "item not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
