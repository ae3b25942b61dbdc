package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
)

const (
	searchTierLimit = 10
	similarLimit    = 10
	minTextLength   = 2
)

// Thứ tự tìm kiếm: tầng sau chỉ chạy khi tầng trước không có kết quả.
var searchTiers = []SearchField{SearchAuthor, SearchTitle, SearchDescription}

type PodcastPolicy struct {
	LimitPerUser int // 0 = không giới hạn
	ExemptEmails []string
}

func (p PodcastPolicy) exempt(email string) bool {
	for _, e := range p.ExemptEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

type PodcastService struct {
	podcasts PodcastRepository
	users    UserRepository
	files    FileRepository
	blobs    BlobStore
	notifier Notifier
	policy   PodcastPolicy
}

func NewPodcastService(podcasts PodcastRepository, users UserRepository, files FileRepository, blobs BlobStore, notifier Notifier, policy PodcastPolicy) *PodcastService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PodcastService{
		podcasts: podcasts,
		users:    users,
		files:    files,
		blobs:    blobs,
		notifier: notifier,
		policy:   policy,
	}
}

type CreatePodcastInput struct {
	PodcastTitle       string  `json:"podcast_title"`
	PodcastDescription string  `json:"podcast_description"`
	CategoryType       string  `json:"category_type"`
	VoiceType          string  `json:"voice_type"`
	VoicePrompt        string  `json:"voice_prompt"`
	ImagePrompt        string  `json:"image_prompt"`
	AudioURL           string  `json:"audio_url"`
	ImageURL           string  `json:"image_url"`
	AudioStorageID     *string `json:"audio_storage_id"`
	ImageStorageID     *string `json:"image_storage_id"`
	AudioDuration      float64 `json:"audio_duration"`
	Views              int     `json:"views"`
}

func (in *CreatePodcastInput) validate() error {
	if err := checkText("podcast_title", in.PodcastTitle); err != nil {
		return err
	}
	if err := checkText("podcast_description", in.PodcastDescription); err != nil {
		return err
	}
	category, ok := models.ResolveCategory(in.CategoryType)
	if !ok {
		return invalid("category_type", "unknown category")
	}
	in.CategoryType = category
	if !models.IsKnownVoice(in.VoiceType) {
		return invalid("voice_type", "unknown voice type")
	}
	if strings.TrimSpace(in.AudioURL) == "" || strings.TrimSpace(in.ImageURL) == "" {
		return invalid("audio_url", "please generate audio and image before submitting")
	}
	if in.AudioDuration < 0 {
		return invalid("audio_duration", "must not be negative")
	}
	if in.Views < 0 {
		return invalid("views", "must not be negative")
	}
	return nil
}

// Create tạo podcast cho user khớp email của identity và chụp lại thông tin tác giả.
func (s *PodcastService) Create(ctx context.Context, identity *models.Identity, in CreatePodcastInput) (uuid.UUID, error) {
	if !identity.Valid() {
		return uuid.Nil, ErrNotAuthenticated
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return uuid.Nil, ErrUserNotFound
	}

	if err := in.validate(); err != nil {
		return uuid.Nil, err
	}

	if s.policy.LimitPerUser > 0 && !s.policy.exempt(user.Email) {
		total, err := s.podcasts.CountByUser(ctx, user.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("count podcasts: %w", err)
		}
		if total >= int64(s.policy.LimitPerUser) {
			return uuid.Nil, ErrPodcastLimitReached
		}
	}

	if err := s.checkHandles(ctx, user.ID,
		storageHandle{"audio_storage_id", in.AudioStorageID},
		storageHandle{"image_storage_id", in.ImageStorageID},
	); err != nil {
		return uuid.Nil, err
	}

	audioURL, imageURL := in.AudioURL, in.ImageURL
	podcast := models.Podcast{
		ID:                 uuid.New(),
		UserID:             user.ID,
		PodcastTitle:       strings.TrimSpace(in.PodcastTitle),
		PodcastDescription: strings.TrimSpace(in.PodcastDescription),
		CategoryType:       in.CategoryType,
		VoiceType:          in.VoiceType,
		VoicePrompt:        in.VoicePrompt,
		ImagePrompt:        in.ImagePrompt,
		Views:              in.Views,
		AudioDuration:      in.AudioDuration,
		AudioURL:           &audioURL,
		ImageURL:           &imageURL,
		AudioStorageID:     nonEmpty(in.AudioStorageID),
		ImageStorageID:     nonEmpty(in.ImageStorageID),
		Author:             user.Name,
		AuthorID:           user.ExternalID,
		AuthorImageURL:     user.ImageURL,
	}

	if err := s.podcasts.Create(ctx, &podcast); err != nil {
		return uuid.Nil, fmt.Errorf("create podcast: %w", err)
	}

	s.attach(ctx, podcast.AudioStorageID, podcast.ImageStorageID)
	s.notifier.Broadcast(podcastListChanged("created", podcast.ID.String()))
	return podcast.ID, nil
}

// GetByID trả về (nil, nil) khi podcast không tồn tại.
func (s *PodcastService) GetByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	return s.podcasts.FindByID(ctx, id)
}

func (s *PodcastService) Trending(ctx context.Context) ([]models.Podcast, error) {
	return s.podcasts.ListTrending(ctx)
}

// Search thử lần lượt theo author, title, description; dừng ở tầng đầu tiên có kết quả.
func (s *PodcastService) Search(ctx context.Context, query string) ([]models.Podcast, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.podcasts.ListNewest(ctx)
	}

	for _, field := range searchTiers {
		results, err := s.podcasts.Search(ctx, field, q, searchTierLimit)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", field, err)
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return []models.Podcast{}, nil
}

// ByVoiceType trả về các podcast cùng giọng đọc, không gồm chính podcast đó.
func (s *PodcastService) ByVoiceType(ctx context.Context, podcastID uuid.UUID) ([]models.Podcast, error) {
	current, err := s.podcasts.FindByID(ctx, podcastID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []models.Podcast{}, nil
	}
	return s.podcasts.ListByVoiceType(ctx, current.VoiceType, current.ID, similarLimit)
}

func (s *PodcastService) ByCategory(ctx context.Context, category string) ([]models.Podcast, error) {
	name, ok := models.ResolveCategory(category)
	if !ok {
		// danh mục lạ vẫn là truy vấn bằng, chỉ là không có kết quả
		name = strings.TrimSpace(category)
	}
	return s.podcasts.ListByCategory(ctx, name)
}

func (s *PodcastService) ByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error) {
	return s.podcasts.ListByAuthorID(ctx, strings.TrimSpace(authorID))
}

func (s *PodcastService) ByUser(ctx context.Context, userID uuid.UUID) ([]models.Podcast, error) {
	return s.podcasts.ListByUser(ctx, userID)
}

type PodcastPatch struct {
	PodcastTitle       *string  `json:"podcast_title"`
	PodcastDescription *string  `json:"podcast_description"`
	CategoryType       *string  `json:"category_type"`
	VoiceType          *string  `json:"voice_type"`
	VoicePrompt        *string  `json:"voice_prompt"`
	ImagePrompt        *string  `json:"image_prompt"`
	AudioURL           *string  `json:"audio_url"`
	ImageURL           *string  `json:"image_url"`
	AudioStorageID     *string  `json:"audio_storage_id"`
	ImageStorageID     *string  `json:"image_storage_id"`
	AudioDuration      *float64 `json:"audio_duration"`
	Views              *int     `json:"views"`
}

// fields bỏ các trường nil và trả về map cột -> giá trị đã kiểm tra.
func (p PodcastPatch) fields() (map[string]interface{}, error) {
	out := map[string]interface{}{}

	if p.PodcastTitle != nil {
		if err := checkText("podcast_title", *p.PodcastTitle); err != nil {
			return nil, err
		}
		out["podcast_title"] = strings.TrimSpace(*p.PodcastTitle)
	}
	if p.PodcastDescription != nil {
		if err := checkText("podcast_description", *p.PodcastDescription); err != nil {
			return nil, err
		}
		out["podcast_description"] = strings.TrimSpace(*p.PodcastDescription)
	}
	if p.CategoryType != nil {
		name, ok := models.ResolveCategory(*p.CategoryType)
		if !ok {
			return nil, invalid("category_type", "unknown category")
		}
		out["category_type"] = name
	}
	if p.VoiceType != nil {
		if !models.IsKnownVoice(*p.VoiceType) {
			return nil, invalid("voice_type", "unknown voice type")
		}
		out["voice_type"] = *p.VoiceType
	}
	if p.VoicePrompt != nil {
		out["voice_prompt"] = *p.VoicePrompt
	}
	if p.ImagePrompt != nil {
		out["image_prompt"] = *p.ImagePrompt
	}
	if p.AudioURL != nil {
		out["audio_url"] = *p.AudioURL
	}
	if p.ImageURL != nil {
		out["image_url"] = *p.ImageURL
	}
	if p.AudioStorageID != nil {
		out["audio_storage_id"] = *p.AudioStorageID
	}
	if p.ImageStorageID != nil {
		out["image_storage_id"] = *p.ImageStorageID
	}
	if p.AudioDuration != nil {
		if *p.AudioDuration < 0 {
			return nil, invalid("audio_duration", "must not be negative")
		}
		out["audio_duration"] = *p.AudioDuration
	}
	if p.Views != nil {
		if *p.Views < 0 {
			return nil, invalid("views", "must not be negative")
		}
		out["views"] = *p.Views
	}
	return out, nil
}

// Update vá một phần các trường của podcast thuộc identity.
func (s *PodcastService) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, patch PodcastPatch) (*models.Podcast, error) {
	podcast, err := s.owned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoChanges
	}

	var (
		incoming []storageHandle
		replaced []string
	)
	for _, h := range []struct {
		field         string
		next, current *string
	}{
		{"audio_storage_id", patch.AudioStorageID, podcast.AudioStorageID},
		{"image_storage_id", patch.ImageStorageID, podcast.ImageStorageID},
	} {
		if h.next == nil || (h.current != nil && *h.current == *h.next) {
			continue
		}
		incoming = append(incoming, storageHandle{h.field, h.next})
		if h.current != nil && *h.current != "" {
			replaced = append(replaced, *h.current)
		}
	}
	if err := s.checkHandles(ctx, podcast.UserID, incoming...); err != nil {
		return nil, err
	}

	if err := s.podcasts.Update(ctx, podcast.ID, fields); err != nil {
		return nil, fmt.Errorf("update podcast: %w", err)
	}

	s.attach(ctx, patch.AudioStorageID, patch.ImageStorageID)
	s.detach(ctx, replaced)
	s.notifier.Broadcast(podcastListChanged("updated", podcast.ID.String()))

	updated, err := s.podcasts.FindByID(ctx, podcast.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPodcastNotFound
	}
	return updated, nil
}

// Delete xoá ảnh, audio (nếu có handle) rồi xoá bản ghi; các bước không nằm trong một giao dịch.
func (s *PodcastService) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) error {
	podcast, err := s.owned(ctx, identity, id)
	if err != nil {
		return err
	}

	var removed []string
	for _, handle := range []*string{podcast.ImageStorageID, podcast.AudioStorageID} {
		if handle == nil || *handle == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, *handle); err != nil {
			return fmt.Errorf("delete blob %s: %w", *handle, err)
		}
		removed = append(removed, *handle)
	}

	if err := s.podcasts.Delete(ctx, podcast.ID); err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}

	if s.files != nil && len(removed) > 0 {
		if err := s.files.Remove(ctx, removed...); err != nil {
			log.Printf("Không thể xoá stored_files %v: %v", removed, err)
		}
	}
	s.notifier.Broadcast(podcastListChanged("deleted", podcast.ID.String()))
	return nil
}

func (s *PodcastService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	ok, err := s.podcasts.IncrementViews(ctx, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if !ok {
		return ErrPodcastNotFound
	}
	return nil
}

type CategoryPodcasts struct {
	Category models.Category  `json:"category"`
	Podcasts []models.Podcast `json:"podcasts"`
}

type Discovery struct {
	Trending   []models.Podcast   `json:"trending"`
	Categories []CategoryPodcasts `json:"categories"`
}

// Discover gom podcast trending và podcast theo từng danh mục có dữ liệu.
func (s *PodcastService) Discover(ctx context.Context) (*Discovery, error) {
	trending, err := s.podcasts.ListTrending(ctx)
	if err != nil {
		return nil, err
	}

	out := &Discovery{Trending: trending, Categories: []CategoryPodcasts{}}
	for _, category := range models.Categories() {
		podcasts, err := s.podcasts.ListByCategory(ctx, category.Name)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", category.Name, err)
		}
		if len(podcasts) == 0 {
			continue
		}
		out.Categories = append(out.Categories, CategoryPodcasts{Category: category, Podcasts: podcasts})
	}
	return out, nil
}

// owned tải podcast và kiểm tra người gọi là chủ sở hữu.
func (s *PodcastService) owned(ctx context.Context, identity *models.Identity, id uuid.UUID) (*models.Podcast, error) {
	if !identity.Valid() {
		return nil, ErrNotAuthenticated
	}

	podcast, err := s.podcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if podcast == nil {
		return nil, ErrPodcastNotFound
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.ID != podcast.UserID {
		return nil, ErrForbidden
	}
	return podcast, nil
}

func (s *PodcastService) attach(ctx context.Context, handles ...*string) {
	if s.files == nil {
		return
	}
	var ids []string
	for _, h := range handles {
		if h != nil && *h != "" {
			ids = append(ids, *h)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.files.MarkAttached(ctx, ids...); err != nil {
		log.Printf("Không thể đánh dấu file đã gắn %v: %v", ids, err)
	}
}

// detach đưa handle bị thay thế về hàng đợi dọn dẹp.
func (s *PodcastService) detach(ctx context.Context, ids []string) {
	if s.files == nil || len(ids) == 0 {
		return
	}
	if err := s.files.MarkDetached(ctx, ids...); err != nil {
		log.Printf("Không thể bỏ gắn file %v: %v", ids, err)
	}
}

type storageHandle struct {
	field string
	id    *string
}

// checkHandles chỉ nhận storage handle đã được ghi nhận là do chính ownerID upload.
func (s *PodcastService) checkHandles(ctx context.Context, ownerID uuid.UUID, handles ...storageHandle) error {
	for _, h := range handles {
		if h.id == nil || *h.id == "" {
			continue
		}
		if s.files == nil {
			return fmt.Errorf("%w: %s", ErrFileNotOwned, h.field)
		}
		f, err := s.files.Find(ctx, *h.id)
		if err != nil {
			return fmt.Errorf("find stored file: %w", err)
		}
		if f == nil || f.OwnerID == nil || *f.OwnerID != ownerID {
			return fmt.Errorf("%w: %s", ErrFileNotOwned, h.field)
		}
	}
	return nil
}

func checkText(field, v string) error {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < minTextLength {
		return invalid(field, fmt.Sprintf("must contain at least %d characters", minTextLength))
	}
	return nil
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
