package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnkhanh/podcastr-backend/models"
)

type UserService struct {
	users    UserRepository
	podcasts PodcastRepository
}

func NewUserService(users UserRepository, podcasts PodcastRepository) *UserService {
	return &UserService{users: users, podcasts: podcasts}
}

type SyncUserInput struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Sync tạo hoặc cập nhật user từ identity. Podcast đã tạo giữ nguyên thông tin tác giả cũ.
func (s *UserService) Sync(ctx context.Context, identity *models.Identity, in SyncUserInput) (*models.User, error) {
	if !identity.Valid() {
		return nil, ErrNotAuthenticated
	}

	// Một email chỉ gắn với một tài khoản; đăng nhập bằng provider khác không tự liên kết.
	byEmail, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if byEmail != nil && byEmail.ExternalID != identity.Subject {
		return nil, ErrIdentityConflict
	}

	name := firstNonEmpty(in.Name, identity.Name, strings.Split(identity.Email, "@")[0])
	user := &models.User{
		ExternalID: identity.Subject,
		Email:      identity.Email,
		Name:       name,
		ImageURL:   firstNonEmpty(in.ImageURL, identity.ImageURL),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// GetByExternalID trả về (nil, nil) khi không có user.
func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.users.FindByExternalID(ctx, strings.TrimSpace(externalID))
}

// TopPodcasters sắp xếp user theo số podcast giảm dần.
func (s *UserService) TopPodcasters(ctx context.Context, limit int) ([]models.Podcaster, error) {
	counts, err := s.users.TopByPodcastCount(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Podcaster, 0, len(counts))
	for _, c := range counts {
		user, err := s.users.FindByID(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		podcasts, err := s.podcasts.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Podcaster{User: *user, TotalPodcast: c.Total, Podcasts: podcasts})
	}
	return out, nil
}

type Profile struct {
	User      models.User      `json:"user"`
	Podcasts  []models.Podcast `json:"podcasts"`
	Listeners int              `json:"listeners"`
}

// Profile trả về (nil, nil) khi không có podcaster.
func (s *UserService) Profile(ctx context.Context, externalID string) (*Profile, error) {
	user, err := s.GetByExternalID(ctx, externalID)
	if err != nil || user == nil {
		return nil, err
	}

	podcasts, err := s.podcasts.ListByAuthorID(ctx, user.ExternalID)
	if err != nil {
		return nil, err
	}
	listeners := 0
	for _, p := range podcasts {
		listeners += p.Views
	}
	return &Profile{User: *user, Podcasts: podcasts, Listeners: listeners}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Feed dựng RSS cho podcaster; ErrUserNotFound khi không có user.
func (s *UserService) Feed(ctx context.Context, baseURL, externalID string) (string, error) {
	user, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	podcasts, err := s.podcasts.ListByAuthorID(ctx, user.ExternalID)
	if err != nil {
		return "", err
	}
	return BuildFeed(baseURL, *user, podcasts)
}
