package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"size:150;not null" json:"name"`
	ImageURL   string    `gorm:"type:text" json:"image_url"`
	ExternalID string    `gorm:"size:150;uniqueIndex;not null" json:"external_id"` // subject bên identity provider (Clerk/Google)
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Podcaster là một user kèm số podcast đã tạo, dùng cho trang podcasters.
type Podcaster struct {
	User         User      `json:"user"`
	TotalPodcast int64     `json:"total_podcasts"`
	Podcasts     []Podcast `json:"podcasts"`
}
