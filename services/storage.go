package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// BlobStore lưu file nhị phân. Storage id là đường dẫn object trong bucket.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	URL(ctx context.Context, storageID string) (string, error)
	Delete(ctx context.Context, storageID string) error
	CreateUploadURL(ctx context.Context, objectPath string) (string, error)
}

type SupabaseStorage struct {
	client  *storage.Client
	baseURL string
	bucket  string
	public  bool
	urlTTL  time.Duration
}

func NewSupabaseStorage(supabaseURL, supabaseKey, bucket string, public bool, urlTTL time.Duration) *SupabaseStorage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		client:  storage.NewClient(baseURL+"/storage/v1", supabaseKey, nil),
		baseURL: baseURL,
		bucket:  bucket,
		public:  public,
		urlTTL:  urlTTL,
	}
}

func (s *SupabaseStorage) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	upsert := false
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return objectPath, nil
}

func (s *SupabaseStorage) URL(ctx context.Context, storageID string) (string, error) {
	if s.public {
		return s.client.GetPublicUrl(s.bucket, storageID).SignedURL, nil
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, storageID, int(s.urlTTL.Seconds()))
	if err != nil {
		return "", fmt.Errorf("signed url %s: %w", storageID, err)
	}
	return resp.SignedURL, nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{storageID}); err != nil {
		return fmt.Errorf("xóa file Supabase thất bại: %w", err)
	}
	return nil
}

func (s *SupabaseStorage) CreateUploadURL(ctx context.Context, objectPath string) (string, error) {
	resp, err := s.client.CreateSignedUploadUrl(s.bucket, objectPath)
	if err != nil {
		return "", fmt.Errorf("signed upload url %s: %w", objectPath, err)
	}
	if strings.HasPrefix(resp.Url, "http") {
		return resp.Url, nil
	}
	return s.baseURL + "/storage/v1" + resp.Url, nil
}
