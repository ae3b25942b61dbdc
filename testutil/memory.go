// Package testutil chứa fake in-memory cho repository, blob store và generator dùng trong test.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

// clock tăng dần để thứ tự "mới nhất trước" ổn định trong test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c.now = c.now.Add(time.Second)
	return c.now
}

type PodcastRepo struct {
	mu       sync.Mutex
	clock    clock
	podcasts map[uuid.UUID]models.Podcast

	// SearchCalls ghi lại các cột đã được truy vấn theo thứ tự.
	SearchCalls []services.SearchField
	Err         error
}

func NewPodcastRepo() *PodcastRepo {
	return &PodcastRepo{podcasts: map[uuid.UUID]models.Podcast{}}
}

func (r *PodcastRepo) Create(_ context.Context, p *models.Podcast) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.clock.next()
	}
	p.UpdatedAt = p.CreatedAt
	r.podcasts[p.ID] = *p
	return nil
}

// Put chèn trực tiếp một podcast (seed dữ liệu).
func (r *PodcastRepo) Put(p models.Podcast) models.Podcast {
	_ = r.Create(context.Background(), &p)
	return p
}

func (r *PodcastRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Podcast, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.podcasts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PodcastRepo) filter(keep func(models.Podcast) bool, limit int) []models.Podcast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Podcast{}
	for _, p := range r.podcasts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func all(models.Podcast) bool { return true }

func (r *PodcastRepo) ListTrending(_ context.Context) ([]models.Podcast, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(all, 0)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	return out, nil
}

func (r *PodcastRepo) ListNewest(_ context.Context) ([]models.Podcast, error) {
	return r.filter(all, 0), r.Err
}

func (r *PodcastRepo) Search(_ context.Context, field services.SearchField, query string, limit int) ([]models.Podcast, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	r.SearchCalls = append(r.SearchCalls, field)
	r.mu.Unlock()

	q := strings.ToLower(query)
	return r.filter(func(p models.Podcast) bool {
		var v string
		switch field {
		case services.SearchAuthor:
			v = p.Author
		case services.SearchTitle:
			v = p.PodcastTitle
		case services.SearchDescription:
			v = p.PodcastDescription
		}
		return strings.Contains(strings.ToLower(v), q)
	}, limit), nil
}

func (r *PodcastRepo) ListByVoiceType(_ context.Context, voiceType string, excludeID uuid.UUID, limit int) ([]models.Podcast, error) {
	return r.filter(func(p models.Podcast) bool {
		return p.VoiceType == voiceType && p.ID != excludeID
	}, limit), r.Err
}

func (r *PodcastRepo) ListByCategory(_ context.Context, category string) ([]models.Podcast, error) {
	return r.filter(func(p models.Podcast) bool { return p.CategoryType == category }, 0), r.Err
}

func (r *PodcastRepo) ListByAuthorID(_ context.Context, authorID string) ([]models.Podcast, error) {
	return r.filter(func(p models.Podcast) bool { return p.AuthorID == authorID }, 0), r.Err
}

func (r *PodcastRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Podcast, error) {
	return r.filter(func(p models.Podcast) bool { return p.UserID == userID }, 0), r.Err
}

func (r *PodcastRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	list, err := r.ListByUser(ctx, userID)
	return int64(len(list)), err
}

func (r *PodcastRepo) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.podcasts[id]
	if !ok {
		return nil
	}
	for col, v := range fields {
		switch col {
		case "podcast_title":
			p.PodcastTitle = v.(string)
		case "podcast_description":
			p.PodcastDescription = v.(string)
		case "category_type":
			p.CategoryType = v.(string)
		case "voice_type":
			p.VoiceType = v.(string)
		case "voice_prompt":
			p.VoicePrompt = v.(string)
		case "image_prompt":
			p.ImagePrompt = v.(string)
		case "audio_url":
			s := v.(string)
			p.AudioURL = &s
		case "image_url":
			s := v.(string)
			p.ImageURL = &s
		case "audio_storage_id":
			s := v.(string)
			p.AudioStorageID = &s
		case "image_storage_id":
			s := v.(string)
			p.ImageStorageID = &s
		case "audio_duration":
			p.AudioDuration = v.(float64)
		case "views":
			p.Views = v.(int)
		default:
			return fmt.Errorf("unknown column %q", col)
		}
	}
	p.UpdatedAt = r.clock.next()
	r.podcasts[id] = p
	return nil
}

func (r *PodcastRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.podcasts, id)
	return nil
}

func (r *PodcastRepo) IncrementViews(_ context.Context, id uuid.UUID) (bool, error) {
	if r.Err != nil {
		return false, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.podcasts[id]
	if !ok {
		return false, nil
	}
	p.Views++
	r.podcasts[id] = p
	return true, nil
}

func (r *PodcastRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.podcasts)
}

type UserRepo struct {
	mu       sync.Mutex
	clock    clock
	users    map[uuid.UUID]models.User
	podcasts *PodcastRepo
}

// NewUserRepo nhận PodcastRepo để tính TopByPodcastCount (có thể nil).
func NewUserRepo(podcasts *PodcastRepo) *UserRepo {
	return &UserRepo{users: map[uuid.UUID]models.User{}, podcasts: podcasts}
}

func (r *UserRepo) find(match func(models.User) bool) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found
		}
	}
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }), nil
}

func (r *UserRepo) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ExternalID == externalID }), nil
}

func (r *UserRepo) Save(_ context.Context, u *models.User) error {
	if u.ExternalID == "" {
		return errors.New("external_id is required")
	}
	existing := r.find(func(x models.User) bool { return x.ExternalID == u.ExternalID })

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing != nil {
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
	} else {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.CreatedAt = r.clock.next()
	}
	u.UpdatedAt = r.clock.next()
	r.users[u.ID] = *u
	return nil
}

// Put tạo user mới với ExternalID/Email/Name cho sẵn.
func (r *UserRepo) Put(u models.User) models.User {
	_ = r.Save(context.Background(), &u)
	return u
}

func (r *UserRepo) TopByPodcastCount(ctx context.Context, limit int) ([]services.UserPodcastCount, error) {
	r.mu.Lock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	r.mu.Unlock()

	out := make([]services.UserPodcastCount, 0, len(users))
	for _, u := range users {
		var total int64
		if r.podcasts != nil {
			total, _ = r.podcasts.CountByUser(ctx, u.ID)
		}
		out = append(out, services.UserPodcastCount{UserID: u.ID, Total: total})
	}
	created := map[uuid.UUID]time.Time{}
	for _, u := range users {
		created[u.ID] = u.CreatedAt
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return created[out[i].UserID].Before(created[out[j].UserID])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type FileRepo struct {
	mu    sync.Mutex
	Files map[string]models.StoredFile
}

func NewFileRepo() *FileRepo {
	return &FileRepo{Files: map[string]models.StoredFile{}}
}

func (r *FileRepo) Record(_ context.Context, f *models.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	r.Files[f.StorageID] = *f
	return nil
}

func (r *FileRepo) Find(_ context.Context, storageID string) (*models.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.Files[storageID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *FileRepo) MarkAttached(_ context.Context, storageIDs ...string) error {
	r.setAttached(true, storageIDs)
	return nil
}

func (r *FileRepo) MarkDetached(_ context.Context, storageIDs ...string) error {
	r.setAttached(false, storageIDs)
	return nil
}

func (r *FileRepo) setAttached(attached bool, storageIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range storageIDs {
		if f, ok := r.Files[id]; ok {
			f.Attached = attached
			r.Files[id] = f
		}
	}
}

func (r *FileRepo) Remove(_ context.Context, storageIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range storageIDs {
		delete(r.Files, id)
	}
	return nil
}

func (r *FileRepo) ListStale(_ context.Context, before time.Time, limit int) ([]models.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StoredFile
	for _, f := range r.Files {
		if !f.Attached && f.CreatedAt.Before(before) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ services.PodcastRepository = (*PodcastRepo)(nil)
	_ services.UserRepository    = (*UserRepo)(nil)
	_ services.FileRepository    = (*FileRepo)(nil)
)
