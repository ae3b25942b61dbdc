package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/vnkhanh/podcastr-backend/services"
)

// BlobStore giữ blob trong bộ nhớ; các trường *Err buộc từng thao tác thất bại.
type BlobStore struct {
	mu    sync.Mutex
	Blobs map[string][]byte

	Deleted []string

	UploadErr error
	DeleteErr error
	URLErr    error
	// EmptyID buộc Upload trả về storage id rỗng.
	EmptyID bool
	// EmptyURL buộc URL trả về chuỗi rỗng.
	EmptyURL bool
}

func NewBlobStore() *BlobStore {
	return &BlobStore{Blobs: map[string][]byte{}}
}

func (b *BlobStore) Upload(_ context.Context, objectPath, _ string, data []byte) (string, error) {
	if b.UploadErr != nil {
		return "", b.UploadErr
	}
	if b.EmptyID {
		return "", nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Blobs[objectPath] = data
	return objectPath, nil
}

func (b *BlobStore) URL(_ context.Context, storageID string) (string, error) {
	if b.URLErr != nil {
		return "", b.URLErr
	}
	if b.EmptyURL {
		return "", nil
	}
	return "https://storage.test/" + storageID, nil
}

func (b *BlobStore) Delete(_ context.Context, storageID string) error {
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Blobs, storageID)
	b.Deleted = append(b.Deleted, storageID)
	return nil
}

func (b *BlobStore) CreateUploadURL(_ context.Context, objectPath string) (string, error) {
	if b.UploadErr != nil {
		return "", b.UploadErr
	}
	return "https://storage.test/upload/" + objectPath + "?token=signed", nil
}

func (b *BlobStore) Has(storageID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.Blobs[storageID]
	return ok
}

type Synthesizer struct {
	Calls int
	Data  []byte
	Err   error
}

func (s *Synthesizer) Synthesize(_ context.Context, voiceType, text string) ([]byte, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Data != nil {
		return s.Data, nil
	}
	return []byte(fmt.Sprintf("%s:%s", voiceType, text)), nil
}

type ImageGenerator struct {
	Calls int
	Err   error
}

func (g *ImageGenerator) Generate(_ context.Context, prompt string) ([]byte, string, error) {
	g.Calls++
	if g.Err != nil {
		return nil, "", g.Err
	}
	return []byte("\x89PNG" + prompt), "image/png", nil
}

type PromptWriter struct {
	Prompts []string
	Reply   string
	Err     error
}

func (w *PromptWriter) Write(_ context.Context, prompt string) (string, error) {
	w.Prompts = append(w.Prompts, prompt)
	if w.Err != nil {
		return "", w.Err
	}
	return w.Reply, nil
}

// Notifier ghi lại các event đã gửi.
type Notifier struct {
	mu         sync.Mutex
	UserEvent  map[string][]interface{}
	Broadcasts []interface{}
}

func NewNotifier() *Notifier {
	return &Notifier{UserEvent: map[string][]interface{}{}}
}

func (n *Notifier) NotifyUser(subject string, event interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.UserEvent[subject] = append(n.UserEvent[subject], event)
}

func (n *Notifier) Broadcast(event interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Broadcasts = append(n.Broadcasts, event)
}

var (
	_ services.BlobStore        = (*BlobStore)(nil)
	_ services.AudioSynthesizer = (*Synthesizer)(nil)
	_ services.ImageGenerator   = (*ImageGenerator)(nil)
	_ services.PromptWriter     = (*PromptWriter)(nil)
	_ services.Notifier         = (*Notifier)(nil)
)
