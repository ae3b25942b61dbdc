package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/podcastr-backend/models"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

// Save tạo mới hoặc cập nhật theo external_id.
func (r *GormUserRepository) Save(ctx context.Context, u *models.User) error {
	existing, err := r.FindByExternalID(ctx, u.ExternalID)
	if err != nil {
		return err
	}
	if existing == nil {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		return duplicateAsConflict(r.db.WithContext(ctx).Create(u).Error)
	}

	u.ID = existing.ID
	u.CreatedAt = existing.CreatedAt
	return duplicateAsConflict(r.db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"email":     u.Email,
		"name":      u.Name,
		"image_url": u.ImageURL,
	}).Error)
}

// Hai request đồng thời vẫn có thể vượt qua bước kiểm tra email trong UserService.
func duplicateAsConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrIdentityConflict
	}
	return err
}

func (r *GormUserRepository) TopByPodcastCount(ctx context.Context, limit int) ([]UserPodcastCount, error) {
	var rows []UserPodcastCount
	q := r.db.WithContext(ctx).Table("users").
		Select("users.id AS user_id, COUNT(podcasts.id) AS total").
		Joins("LEFT JOIN podcasts ON podcasts.user_id = users.id").
		Group("users.id").
		Order("total DESC").
		Order("users.created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}
