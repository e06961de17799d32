package handler

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/cache"
	"whiteboard-backend/internal/model"
	"whiteboard-backend/internal/realtime"
)

// DrawingHandler persists strokes and serves the drawing layer
type DrawingHandler struct {
	db    *gorm.DB
	redis *cache.RedisClient
	hub   *realtime.Hub
}

// NewDrawingHandler creates a DrawingHandler. redis may be nil; reads then
// always go to the database.
func NewDrawingHandler(db *gorm.DB, redis *cache.RedisClient, hub *realtime.Hub) *DrawingHandler {
	return &DrawingHandler{db: db, redis: redis, hub: hub}
}

// StrokeResponse is the wire shape of a persisted stroke
type StrokeResponse struct {
	StrokeID    string          `json:"strokeId"`
	BoardID     string          `json:"boardId"`
	ContainerID string          `json:"containerId,omitempty"`
	UserID      string          `json:"userId"`
	Color       string          `json:"color"`
	BrushSize   float64         `json:"brushSize"`
	Opacity     float64         `json:"opacity"`
	Points      json.RawMessage `json:"points"`
}

// GetBoardDrawing returns the drawing layer for a board. Serves from the
// redis recent-stroke cache when it is warm, falls back to the database.
func (h *DrawingHandler) GetBoardDrawing(c *fiber.Ctx) error {
	if _, err := auth.GetUIDFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	if h.redis != nil {
		if cached, err := h.redis.GetStrokes(c.Context(), boardID); err == nil && len(cached) > 0 {
			strokes := make([]StrokeResponse, 0, len(cached))
			for _, s := range cached {
				strokes = append(strokes, StrokeResponse{
					StrokeID:    s.StrokeID,
					BoardID:     s.BoardID,
					ContainerID: s.ContainerID,
					UserID:      s.UserID,
					Color:       s.Color,
					BrushSize:   s.BrushSize,
					Opacity:     s.Opacity,
					Points:      s.Points,
				})
			}
			return c.JSON(fiber.Map{"strokes": strokes, "source": "cache"})
		}
	}

	var rows []model.DrawingStroke
	if err := h.db.Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load drawing",
		})
	}

	strokes := make([]StrokeResponse, 0, len(rows))
	for _, row := range rows {
		containerID := ""
		if row.ContainerID != nil {
			containerID = *row.ContainerID
		}
		strokes = append(strokes, StrokeResponse{
			StrokeID:    row.StrokeID,
			BoardID:     row.BoardID,
			ContainerID: containerID,
			UserID:      row.UserUID,
			Color:       row.Color,
			BrushSize:   row.BrushSize,
			Opacity:     row.Opacity,
			Points:      json.RawMessage(row.PointData),
		})
	}

	return c.JSON(fiber.Map{"strokes": strokes, "source": "database"})
}

// SaveStrokeRequest is a completed stroke to persist
type SaveStrokeRequest struct {
	StrokeID    string          `json:"strokeId"`
	ContainerID string          `json:"containerId"`
	Color       string          `json:"color"`
	BrushSize   float64         `json:"brushSize"`
	Opacity     float64         `json:"opacity"`
	Points      json.RawMessage `json:"points"`
}

// SaveStroke persists a completed stroke, warms the cache and announces
// it to the board room.
func (h *DrawingHandler) SaveStroke(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	var req SaveStrokeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.StrokeID == "" || len(req.Points) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "strokeId and points are required",
		})
	}
	if req.Color == "" {
		req.Color = "#000000"
	}
	if req.BrushSize <= 0 {
		req.BrushSize = 2
	}
	if req.Opacity <= 0 || req.Opacity > 1 {
		req.Opacity = 1
	}
	// eraser strokes always remove at full strength
	if req.Color == model.EraseColor {
		req.Opacity = 1
	}

	var containerID *string
	if req.ContainerID != "" {
		containerID = &req.ContainerID
	}

	stroke := model.DrawingStroke{
		StrokeID:    req.StrokeID,
		BoardID:     boardID,
		ContainerID: containerID,
		UserUID:     uid,
		Color:       req.Color,
		BrushSize:   req.BrushSize,
		Opacity:     req.Opacity,
		PointData:   string(req.Points),
	}

	if err := h.db.Create(&stroke).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save stroke",
		})
	}

	if h.redis != nil {
		if err := h.redis.AddStroke(c.Context(), boardID, &cache.CachedStroke{
			StrokeID:    req.StrokeID,
			BoardID:     boardID,
			ContainerID: req.ContainerID,
			UserID:      uid,
			Color:       req.Color,
			BrushSize:   req.BrushSize,
			Opacity:     req.Opacity,
			Points:      req.Points,
		}); err != nil {
			log.Printf("[Drawing] Cache write failed for board %s: %v", boardID, err)
		}
	}

	h.hub.BroadcastToRoom(boardID, realtime.EventDrawingSaved, realtime.DrawingSavedPayload{
		BoardID:     boardID,
		ContainerID: req.ContainerID,
		UserID:      uid,
		StrokeID:    req.StrokeID,
		Color:       req.Color,
		BrushSize:   req.BrushSize,
		Opacity:     req.Opacity,
		Points:      req.Points,
	}, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// ClearBoardDrawing wipes the drawing layer of a board for everyone
func (h *DrawingHandler) ClearBoardDrawing(c *fiber.Ctx) error {
	uid, err := auth.GetUIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	boardID := c.Params("boardId")

	if err := h.db.Where("board_id = ?", boardID).Delete(&model.DrawingStroke{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to clear drawing",
		})
	}

	if h.redis != nil {
		if err := h.redis.ClearBoard(c.Context(), boardID); err != nil {
			log.Printf("[Drawing] Cache clear failed for board %s: %v", boardID, err)
		}
	}

	// everyone in the room redraws, the clearer included
	h.hub.BroadcastToRoom(boardID, realtime.EventClearBoardDrawing, realtime.ClearBoardPayload{
		BoardID: boardID,
		UserID:  uid,
	}, nil)

	return c.JSON(fiber.Map{"success": true})
}
