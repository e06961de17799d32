package model

import (
	"time"
)

// EraseColor is the reserved color value marking an eraser stroke.
const EraseColor = "erase"

// DrawingStroke is one persisted freehand stroke
type DrawingStroke struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StrokeID    string    `gorm:"type:varchar(64);index;not null" json:"stroke_id"` // client-assigned
	BoardID     string    `gorm:"type:varchar(64);not null;index:idx_board_created" json:"board_id"`
	ContainerID *string   `gorm:"type:varchar(64);index" json:"container_id,omitempty"`
	UserUID     string    `gorm:"type:varchar(64);not null" json:"user_uid"`
	Color       string    `gorm:"type:varchar(20);not null" json:"color"`
	BrushSize   float64   `gorm:"default:4" json:"brush_size"`
	Opacity     float64   `gorm:"default:1" json:"opacity"`
	PointData   string    `gorm:"type:jsonb;not null" json:"point_data"` // JSON array of {x,y,timestamp}
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_board_created" json:"created_at"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	User  User  `gorm:"foreignKey:UserUID" json:"user,omitempty"`
}

func (DrawingStroke) TableName() string {
	return "drawing_strokes"
}
