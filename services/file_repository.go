package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/podcastr-backend/models"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Record(ctx context.Context, f *models.StoredFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *GormFileRepository) Find(ctx context.Context, storageID string) (*models.StoredFile, error) {
	var f models.StoredFile
	if err := r.db.WithContext(ctx).Where("storage_id = ?", storageID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *GormFileRepository) MarkAttached(ctx context.Context, storageIDs ...string) error {
	return r.setAttached(ctx, true, storageIDs)
}

// MarkDetached trả file về trạng thái chờ dọn; CleanupJob sẽ xoá khi quá hạn.
func (r *GormFileRepository) MarkDetached(ctx context.Context, storageIDs ...string) error {
	return r.setAttached(ctx, false, storageIDs)
}

func (r *GormFileRepository) setAttached(ctx context.Context, attached bool, storageIDs []string) error {
	if len(storageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.StoredFile{}).
		Where("storage_id IN ?", storageIDs).
		Update("attached", attached).Error
}

func (r *GormFileRepository) Remove(ctx context.Context, storageIDs ...string) error {
	if len(storageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("storage_id IN ?", storageIDs).Delete(&models.StoredFile{}).Error
}

func (r *GormFileRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]models.StoredFile, error) {
	var files []models.StoredFile
	err := r.db.WithContext(ctx).
		Where("attached = ? AND created_at < ?", false, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&files).Error
	return files, err
}
