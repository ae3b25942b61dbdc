package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
)

type GenerationStatus string

const (
	StatusIdle       GenerationStatus = "idle"
	StatusGenerating GenerationStatus = "generating"
	StatusReady      GenerationStatus = "ready"
)

// GenerationState là trạng thái sinh nội dung của một user cho một loại asset.
type GenerationState struct {
	Type      string           `json:"type"`
	Kind      models.FileKind  `json:"kind"`
	Status    GenerationStatus `json:"status"`
	StorageID string           `json:"storage_id,omitempty"`
	URL       string           `json:"url,omitempty"`
	Error     string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// GenerationTracker giữ trạng thái idle → generating → ready|idle theo (user, kind).
type GenerationTracker struct {
	mu     sync.RWMutex
	states map[string]map[models.FileKind]GenerationState
	notify Notifier
}

func NewGenerationTracker(notifier Notifier) *GenerationTracker {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &GenerationTracker{states: map[string]map[models.FileKind]GenerationState{}, notify: notifier}
}

func (t *GenerationTracker) set(subject string, st GenerationState) {
	st.Type = "generation_status"
	st.UpdatedAt = time.Now()

	t.mu.Lock()
	if _, ok := t.states[subject]; !ok {
		t.states[subject] = map[models.FileKind]GenerationState{}
	}
	t.states[subject][st.Kind] = st
	t.mu.Unlock()

	t.notify.NotifyUser(subject, st)
}

// Snapshot trả về trạng thái audio và image của user (mặc định idle).
func (t *GenerationTracker) Snapshot(subject string) []GenerationState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]GenerationState, 0, 2)
	for _, kind := range []models.FileKind{models.FileAudio, models.FileImage} {
		st, ok := t.states[subject][kind]
		if !ok {
			st = GenerationState{Type: "generation_status", Kind: kind, Status: StatusIdle}
		}
		out = append(out, st)
	}
	return out
}

// GeneratedAsset là kết quả một lần sinh: handle lưu trữ và URL truy xuất.
type GeneratedAsset struct {
	StorageID string  `json:"storage_id"`
	URL       string  `json:"url"`
	Duration  float64 `json:"audio_duration,omitempty"`
}

type GenerationService struct {
	audio   AudioSynthesizer
	images  ImageGenerator
	writer  PromptWriter
	blobs   BlobStore
	files   FileRepository
	users   UserRepository
	tracker *GenerationTracker
}

func NewGenerationService(audio AudioSynthesizer, images ImageGenerator, writer PromptWriter, blobs BlobStore, files FileRepository, users UserRepository, tracker *GenerationTracker) *GenerationService {
	if tracker == nil {
		tracker = NewGenerationTracker(nil)
	}
	return &GenerationService{
		audio:   audio,
		images:  images,
		writer:  writer,
		blobs:   blobs,
		files:   files,
		users:   users,
		tracker: tracker,
	}
}

func (s *GenerationService) Tracker() *GenerationTracker {
	return s.tracker
}

type GenerateAudioInput struct {
	VoiceType   string `json:"voice_type"`
	VoicePrompt string `json:"voice_prompt"`
}

// GenerateAudio đọc voice prompt bằng giọng đã chọn, upload MP3 và trả về handle + URL.
func (s *GenerationService) GenerateAudio(ctx context.Context, identity *models.Identity, in GenerateAudioInput) (*GeneratedAsset, error) {
	if !identity.Valid() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(in.VoiceType) == "" {
		return nil, ErrMissingVoiceType
	}
	if !models.IsKnownVoice(in.VoiceType) {
		return nil, ErrUnknownVoice
	}
	if strings.TrimSpace(in.VoicePrompt) == "" {
		return nil, ErrMissingVoicePrompt
	}

	return s.run(ctx, identity, models.FileAudio, func() ([]byte, string, error) {
		if s.audio == nil {
			return nil, "", errors.New("text-to-speech is not configured")
		}
		data, err := s.audio.Synthesize(ctx, in.VoiceType, in.VoicePrompt)
		return data, "audio/mpeg", err
	})
}

type GenerateThumbnailInput struct {
	ImagePrompt string `json:"image_prompt"`
}

func (s *GenerationService) GenerateThumbnail(ctx context.Context, identity *models.Identity, in GenerateThumbnailInput) (*GeneratedAsset, error) {
	if !identity.Valid() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(in.ImagePrompt) == "" {
		return nil, ErrMissingImagePrompt
	}

	return s.run(ctx, identity, models.FileImage, func() ([]byte, string, error) {
		if s.images == nil {
			return nil, "", errors.New("image generator is not configured")
		}
		return s.images.Generate(ctx, in.ImagePrompt)
	})
}

// run: gọi generator → upload → lấy URL. Lỗi ở bất kỳ bước nào đưa trạng thái về idle, không retry.
func (s *GenerationService) run(ctx context.Context, identity *models.Identity, kind models.FileKind, generate func() ([]byte, string, error)) (*GeneratedAsset, error) {
	s.tracker.set(identity.Subject, GenerationState{Kind: kind, Status: StatusGenerating})

	asset, err := s.produce(ctx, identity, kind, generate)
	if err != nil {
		log.Printf("Sinh %s thất bại cho %s: %v", kind, identity.Subject, err)
		s.tracker.set(identity.Subject, GenerationState{Kind: kind, Status: StatusIdle, Error: userMessage(err)})
		return nil, err
	}

	s.tracker.set(identity.Subject, GenerationState{Kind: kind, Status: StatusReady, StorageID: asset.StorageID, URL: asset.URL})
	return asset, nil
}

func (s *GenerationService) produce(ctx context.Context, identity *models.Identity, kind models.FileKind, generate func() ([]byte, string, error)) (*GeneratedAsset, error) {
	data, contentType, err := generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrGenerationFailed)
	}

	storageID, err := s.blobs.Upload(ctx, objectName(kind, contentType), contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if storageID == "" {
		return nil, ErrUploadFailed
	}
	s.record(ctx, identity, storageID, kind, contentType, int64(len(data)))

	url, err := s.blobs.URL(ctx, storageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLUnavailable, err)
	}
	if url == "" {
		return nil, ErrURLUnavailable
	}

	asset := &GeneratedAsset{StorageID: storageID, URL: url}
	if kind == models.FileAudio {
		if asset.Duration, err = MP3Duration(data); err != nil {
			log.Printf("Không thể tính thời lượng %s: %v", storageID, err)
		}
	}
	return asset, nil
}

type UploadTarget struct {
	StorageID string `json:"storage_id"`
	UploadURL string `json:"upload_url"`
}

// CreateUploadURL cấp URL upload có chữ ký cho file client tự tải lên (vd. thumbnail riêng).
func (s *GenerationService) CreateUploadURL(ctx context.Context, identity *models.Identity, filename string) (*UploadTarget, error) {
	if !identity.Valid() {
		return nil, ErrNotAuthenticated
	}

	ext := strings.ToLower(path.Ext(filename))
	objectPath := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)
	uploadURL, err := s.blobs.CreateUploadURL(ctx, objectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	s.record(ctx, identity, objectPath, models.FileUpload, "", 0)
	return &UploadTarget{StorageID: objectPath, UploadURL: uploadURL}, nil
}

func (s *GenerationService) ResolveURL(ctx context.Context, storageID string) (string, error) {
	if strings.TrimSpace(storageID) == "" {
		return "", invalid("storage_id", "is required")
	}
	url, err := s.blobs.URL(ctx, storageID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLUnavailable, err)
	}
	if url == "" {
		return "", ErrURLUnavailable
	}
	return url, nil
}

type SuggestPromptInput struct {
	Kind               PromptKind `json:"kind"`
	PodcastTitle       string     `json:"podcast_title"`
	PodcastDescription string     `json:"podcast_description"`
}

func (s *GenerationService) SuggestPrompt(ctx context.Context, in SuggestPromptInput) (string, error) {
	if s.writer == nil {
		return "", fmt.Errorf("%w: prompt writer is not configured", ErrGenerationFailed)
	}
	if err := checkText("podcast_title", in.PodcastTitle); err != nil {
		return "", err
	}
	prompt, err := suggestionPrompt(in.Kind, in.PodcastTitle, in.PodcastDescription)
	if err != nil {
		return "", err
	}
	text, err := s.writer.Write(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return text, nil
}

// PromptFromDocument trích voice prompt từ file PDF/DOCX/TXT mà user tải lên.
func (s *GenerationService) PromptFromDocument(identity *models.Identity, filename string, data []byte) (string, error) {
	if !identity.Valid() {
		return "", ErrNotAuthenticated
	}
	text, err := ExtractVoicePrompt(filename, data)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", invalid("file", "no readable text found")
	}
	return text, nil
}

func (s *GenerationService) record(ctx context.Context, identity *models.Identity, storageID string, kind models.FileKind, contentType string, size int64) {
	if s.files == nil {
		return
	}
	f := &models.StoredFile{StorageID: storageID, Kind: kind, ContentType: contentType, Size: size}
	if s.users != nil {
		if user, err := s.users.FindByEmail(ctx, identity.Email); err == nil && user != nil {
			f.OwnerID = &user.ID
		}
	}
	if err := s.files.Record(ctx, f); err != nil {
		log.Printf("Không thể ghi stored_file %s: %v", storageID, err)
	}
}

func objectName(kind models.FileKind, contentType string) string {
	switch kind {
	case models.FileAudio:
		return fmt.Sprintf("audio/podcast-%s.mp3", uuid.New().String())
	default:
		ext := ".png"
		if contentType == "image/jpeg" {
			ext = ".jpg"
		}
		return fmt.Sprintf("images/thumbnail-%s%s", uuid.New().String(), ext)
	}
}

// userMessage rút gọn lỗi thành thông báo hiển thị cho người dùng.
func userMessage(err error) string {
	for _, known := range []error{ErrUploadFailed, ErrURLUnavailable, ErrGenerationFailed} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
