package services

import (
	"context"
	"log"
	"time"
)

const cleanupBatch = 100

// CleanupJob xóa blob đã sinh/upload nhưng không được gắn vào podcast nào sau maxAge.
type CleanupJob struct {
	files    FileRepository
	blobs    BlobStore
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewCleanupJob(files FileRepository, blobs BlobStore, maxAge, interval time.Duration) *CleanupJob {
	return &CleanupJob{files: files, blobs: blobs, maxAge: maxAge, interval: interval, now: time.Now}
}

// RunOnce trả về số blob đã xóa.
func (j *CleanupJob) RunOnce(ctx context.Context) (int, error) {
	stale, err := j.files.ListStale(ctx, j.now().Add(-j.maxAge), cleanupBatch)
	if err != nil {
		return 0, err
	}

	var removed []string
	for _, f := range stale {
		if err := j.blobs.Delete(ctx, f.StorageID); err != nil {
			log.Printf("Lỗi khi xóa blob mồ côi %s: %v", f.StorageID, err)
			continue
		}
		removed = append(removed, f.StorageID)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := j.files.Remove(ctx, removed...); err != nil {
		return 0, err
	}
	log.Printf("Đã xóa %d blob không được gắn vào podcast", len(removed))
	return len(removed), nil
}

// Start chạy cleanup ngay lần đầu rồi lặp theo interval cho tới khi ctx bị hủy.
func (j *CleanupJob) Start(ctx context.Context) {
	log.Println("Đang chạy cleanup lần đầu...")
	if _, err := j.RunOnce(ctx); err != nil {
		log.Printf("Cleanup thất bại: %v", err)
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := j.RunOnce(ctx); err != nil {
					log.Printf("Cleanup thất bại: %v", err)
				}
			}
		}
	}()

	log.Printf("Cleanup job đã được khởi động (chạy mỗi %s)", j.interval)
}
