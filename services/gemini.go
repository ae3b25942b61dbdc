package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// PromptWriter sinh văn bản từ prompt (dùng để gợi ý prompt ảnh / kịch bản đọc).
type PromptWriter interface {
	Write(ctx context.Context, prompt string) (string, error)
}

type GeminiPromptWriter struct {
	client *genai.Client
	model  string
}

func NewGeminiPromptWriter(ctx context.Context, apiKey string) (*GeminiPromptWriter, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Gemini client: %w", err)
	}
	return &GeminiPromptWriter{client: client, model: "gemini-2.0-flash"}, nil
}

func (g *GeminiPromptWriter) Close() error {
	return g.client.Close()
}

func (g *GeminiPromptWriter) Write(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini không trả kết quả hợp lệ")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

type PromptKind string

const (
	PromptImage PromptKind = "image"
	PromptVoice PromptKind = "voice"
)

// suggestionPrompt dựng yêu cầu gửi cho Gemini theo loại prompt.
func suggestionPrompt(kind PromptKind, title, description string) (string, error) {
	switch kind {
	case PromptImage:
		return fmt.Sprintf(`Write one vivid prompt (max 60 words) for an image generator to create a square podcast thumbnail.
No text or letters in the image. Reply with the prompt only.
Podcast title: %s
Podcast description: %s`, title, description), nil
	case PromptVoice:
		return fmt.Sprintf(`Write a short spoken podcast script (150-250 words) to be read aloud by a text-to-speech voice.
Plain prose only, no headings, speaker names or stage directions.
Podcast title: %s
Podcast description: %s`, title, description), nil
	default:
		return "", invalid("kind", "must be image or voice")
	}
}
