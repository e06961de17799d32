package realtime

import (
	"context"

	"gorm.io/gorm"

	"whiteboard-backend/internal/model"
)

// GormProfileStore reads the user-set display name from the users table
type GormProfileStore struct {
	db *gorm.DB
}

// NewGormProfileStore creates a GormProfileStore
func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

// GetProfile looks up the user's own profile display name
func (s *GormProfileStore) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Select("display_name").Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	if user.DisplayName == nil {
		return &Profile{}, nil
	}
	return &Profile{DisplayName: *user.DisplayName}, nil
}

// GormIdentityDirectory serves provider-reported identity data that the
// login handler synced from Google at sign-in time
type GormIdentityDirectory struct {
	db *gorm.DB
}

// NewGormIdentityDirectory creates a GormIdentityDirectory
func NewGormIdentityDirectory(db *gorm.DB) *GormIdentityDirectory {
	return &GormIdentityDirectory{db: db}
}

// GetUser looks up the provider-reported name and email
func (d *GormIdentityDirectory) GetUser(ctx context.Context, uid string) (*IdentityUser, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Select("provider_name", "email").Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}

	identity := &IdentityUser{Email: user.Email}
	if user.ProviderName != nil {
		identity.DisplayName = *user.ProviderName
	}
	return identity, nil
}
