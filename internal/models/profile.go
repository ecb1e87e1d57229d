package models

import "gorm.io/gorm"

// Profile holds the optional contact details a user can attach to
// their account. One profile per user.
type Profile struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	AvatarURL string `json:"avatar_url"`
}

type UpdateProfileInput struct {
	FullName  string `json:"full_name" validate:"omitempty,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Address   string `json:"address" validate:"omitempty,max=255"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}
