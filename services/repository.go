package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
)

// SearchField là cột được đánh chỉ mục tìm kiếm full-text.
type SearchField string

const (
	SearchAuthor      SearchField = "author"
	SearchTitle       SearchField = "podcast_title"
	SearchDescription SearchField = "podcast_description"
)

// PodcastRepository là bề mặt truy vấn/ghi của bảng podcasts.
// FindByID trả về (nil, nil) khi không có bản ghi.
type PodcastRepository interface {
	Create(ctx context.Context, p *models.Podcast) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error)
	ListTrending(ctx context.Context) ([]models.Podcast, error)
	ListNewest(ctx context.Context) ([]models.Podcast, error)
	Search(ctx context.Context, field SearchField, query string, limit int) ([]models.Podcast, error)
	ListByVoiceType(ctx context.Context, voiceType string, excludeID uuid.UUID, limit int) ([]models.Podcast, error)
	ListByCategory(ctx context.Context, category string) ([]models.Podcast, error)
	ListByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Podcast, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserPodcastCount struct {
	UserID uuid.UUID
	Total  int64
}

// UserRepository: các hàm Find* trả về (nil, nil) khi không tìm thấy.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	TopByPodcastCount(ctx context.Context, limit int) ([]UserPodcastCount, error)
}

// FileRepository: Find trả về (nil, nil) khi storage id chưa được ghi nhận.
type FileRepository interface {
	Record(ctx context.Context, f *models.StoredFile) error
	Find(ctx context.Context, storageID string) (*models.StoredFile, error)
	MarkAttached(ctx context.Context, storageIDs ...string) error
	MarkDetached(ctx context.Context, storageIDs ...string) error
	Remove(ctx context.Context, storageIDs ...string) error
	ListStale(ctx context.Context, before time.Time, limit int) ([]models.StoredFile, error)
}
