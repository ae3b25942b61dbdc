package models

import (
	"time"

	"github.com/google/uuid"
)

// Podcast là một tập podcast đã xuất bản. Các trường Author* là bản chụp
// thông tin người tạo tại thời điểm tạo, không đồng bộ lại khi User đổi.
type Podcast struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index:idx_podcasts_user" json:"user_id"`
	PodcastTitle       string    `gorm:"size:255;not null" json:"podcast_title"`
	PodcastDescription string    `gorm:"type:text;not null" json:"podcast_description"`
	CategoryType       string    `gorm:"size:50;not null;index:idx_podcasts_category_type" json:"category_type"`
	VoiceType          string    `gorm:"size:50;not null" json:"voice_type"`
	VoicePrompt        string    `gorm:"type:text" json:"voice_prompt"`
	ImagePrompt        string    `gorm:"type:text" json:"image_prompt"`
	Views              int       `gorm:"default:0" json:"views"`
	AudioDuration      float64   `gorm:"default:0" json:"audio_duration"`

	AudioURL       *string `gorm:"type:text" json:"audio_url"`
	AudioStorageID *string `gorm:"type:text" json:"audio_storage_id"`
	ImageURL       *string `gorm:"type:text" json:"image_url"`
	ImageStorageID *string `gorm:"type:text" json:"image_storage_id"`

	Author         string `gorm:"size:150;not null" json:"author"`
	AuthorID       string `gorm:"size:150;not null;index:idx_podcasts_author_id" json:"author_id"`
	AuthorImageURL string `gorm:"type:text" json:"author_image_url"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LegacyAudioStorageColumn là cột audio storage id viết sai chính tả trong dữ liệu cũ.
const LegacyAudioStorageColumn = "audio_strorage_id"
