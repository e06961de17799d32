package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/model"
)

// BoardHandler handles board CRUD
type BoardHandler struct {
	db *gorm.DB
}

// NewBoardHandler creates a BoardHandler
func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{db: db}
}

// CreateBoardRequest board creation request
type CreateBoardRequest struct {
	Title string `json:"title"`
}

// CreateBoard creates a new board owned by the caller
func (h *BoardHandler) CreateBoard(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req CreateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled board"
	}
	if len(title) > 200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title too long",
		})
	}

	board := model.Board{
		ID:       uuid.New().String(),
		OwnerUID: uid,
		Title:    title,
	}

	if err := h.db.Create(&board).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create board",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"board": board})
}

// GetMyBoards lists the caller's boards
func (h *BoardHandler) GetMyBoards(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var boards []model.Board
	if err := h.db.Where("owner_uid = ?", uid).Order("updated_at DESC").Find(&boards).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch boards",
		})
	}

	return c.JSON(fiber.Map{"boards": boards})
}

// GetBoard returns one board with its containers and items
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	var board model.Board
	if err := h.db.
		Preload("Containers", func(db *gorm.DB) *gorm.DB {
			return db.Order("z_index ASC")
		}).
		Preload("Containers.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", boardID).First(&board).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "board not found",
		})
	}

	return c.JSON(fiber.Map{"board": board})
}

// UpdateBoardRequest board update request
type UpdateBoardRequest struct {
	Title string `json:"title"`
}

// UpdateBoard renames a board (owner only)
func (h *BoardHandler) UpdateBoard(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	var req UpdateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > 200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid title",
		})
	}

	result := h.db.Model(&model.Board{}).
		Where("id = ? AND owner_uid = ?", boardID, uid).
		Update("title", title)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update board",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "board not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteBoard removes a board and everything on it (owner only)
func (h *BoardHandler) DeleteBoard(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	var board model.Board
	if err := h.db.Where("id = ? AND owner_uid = ?", boardID, uid).First(&board).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "board not found",
		})
	}

	tx := h.db.Begin()
	if err := tx.Where("container_id IN (?)",
		tx.Model(&model.Container{}).Select("id").Where("board_id = ?", boardID),
	).Delete(&model.ContainerItem{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete board",
		})
	}
	if err := tx.Where("board_id = ?", boardID).Delete(&model.Container{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete board",
		})
	}
	if err := tx.Where("board_id = ?", boardID).Delete(&model.DrawingStroke{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete board",
		})
	}
	if err := tx.Delete(&board).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete board",
		})
	}
	tx.Commit()

	return c.JSON(fiber.Map{"success": true})
}
