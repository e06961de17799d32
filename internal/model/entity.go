package model

import (
	"time"
)

// User account record. UID is the identity-provider subject, not a
// database-assigned id, so presence and relay payloads can carry it as-is.
type User struct {
	UID          string  `gorm:"type:varchar(64);primaryKey" json:"uid"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName  *string `gorm:"type:varchar(100)" json:"display_name,omitempty"`
	ProviderName *string `gorm:"type:varchar(100)" json:"provider_name,omitempty"`
	PhotoURL     *string `gorm:"type:text" json:"photo_url,omitempty"`
	Provider     *string `gorm:"type:varchar(50)" json:"provider,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Boards  []Board  `gorm:"foreignKey:OwnerUID" json:"boards,omitempty"`
	Friends []Friend `gorm:"foreignKey:UserUID" json:"friends,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Board is a shared whiteboard
type Board struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	OwnerUID  string    `gorm:"type:varchar(64);index;not null" json:"owner_uid"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Owner      User        `gorm:"foreignKey:OwnerUID" json:"owner,omitempty"`
	Containers []Container `gorm:"foreignKey:BoardID" json:"containers,omitempty"`
}

func (Board) TableName() string {
	return "boards"
}

// Container is a draggable note/link box on a board
type Container struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	BoardID   string    `gorm:"type:varchar(64);index;not null" json:"board_id"`
	Type      string    `gorm:"type:varchar(20);default:'NOTE'" json:"type"` // NOTE, LINK
	X         float64   `gorm:"not null" json:"x"`
	Y         float64   `gorm:"not null" json:"y"`
	Width     float64   `gorm:"default:240" json:"width"`
	Height    float64   `gorm:"default:180" json:"height"`
	ZIndex    int       `gorm:"default:0" json:"z_index"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Board Board           `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Items []ContainerItem `gorm:"foreignKey:ContainerID" json:"items,omitempty"`
}

func (Container) TableName() string {
	return "containers"
}

// ContainerItem is one note or link inside a container
type ContainerItem struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	ContainerID string    `gorm:"type:varchar(64);index;not null" json:"container_id"`
	Content     string    `gorm:"type:text" json:"content"`
	URL         *string   `gorm:"type:text" json:"url,omitempty"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Container Container `gorm:"foreignKey:ContainerID" json:"container,omitempty"`
}

func (ContainerItem) TableName() string {
	return "container_items"
}

// Friend is a directed friend-list edge
type Friend struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID   string    `gorm:"type:varchar(64);uniqueIndex:idx_user_friend;not null" json:"user_uid"`
	FriendUID string    `gorm:"type:varchar(64);uniqueIndex:idx_user_friend;not null" json:"friend_uid"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserUID" json:"user,omitempty"`
}

func (Friend) TableName() string {
	return "friends"
}
