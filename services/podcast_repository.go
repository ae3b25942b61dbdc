package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/podcastr-backend/models"
)

type GormPodcastRepository struct {
	db *gorm.DB
}

func NewGormPodcastRepository(db *gorm.DB) *GormPodcastRepository {
	return &GormPodcastRepository{db: db}
}

func (r *GormPodcastRepository) Create(ctx context.Context, p *models.Podcast) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormPodcastRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	var p models.Podcast
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormPodcastRepository) ListTrending(ctx context.Context) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).Order("views DESC").Order("created_at DESC").Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) ListNewest(ctx context.Context) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) Search(ctx context.Context, field SearchField, query string, limit int) ([]models.Podcast, error) {
	switch field {
	case SearchAuthor, SearchTitle, SearchDescription:
	default:
		return nil, fmt.Errorf("search field không hợp lệ: %q", field)
	}

	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Where(fmt.Sprintf("%s ILIKE ?", field), likePattern(query)).
		Order("created_at DESC").
		Limit(limit).
		Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) ListByVoiceType(ctx context.Context, voiceType string, excludeID uuid.UUID, limit int) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Where("voice_type = ? AND id <> ?", voiceType, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) ListByCategory(ctx context.Context, category string) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Where("category_type = ?", category).
		Order("created_at DESC").
		Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) ListByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&podcasts).Error
	return podcasts, err
}

func (r *GormPodcastRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Podcast{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *GormPodcastRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Podcast{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormPodcastRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Podcast{}, "id = ?", id).Error
}

func (r *GormPodcastRepository) IncrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Podcast{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// likePattern escape ký tự đại diện của LIKE rồi bọc %...%.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
