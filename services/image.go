package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ImageGenerator sinh ảnh thumbnail từ prompt, trả về bytes và content type.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, string, error)
}

// OpenAIImageGenerator gọi images/generations của OpenAI hoặc API tương thích.
type OpenAIImageGenerator struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIImageGenerator nhận base URL dạng ".../v1"; chấp nhận cả URL đầy đủ tới /images/generations.
func NewOpenAIImageGenerator(baseURL, apiKey, model string) *OpenAIImageGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/images/generations"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	return &OpenAIImageGenerator{client: openai.NewClientWithConfig(cfg), apiKey: apiKey, model: model}
}

func (g *OpenAIImageGenerator) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	if g.apiKey == "" {
		return nil, "", errors.New("IMAGE_API_KEY is not set")
	}

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          g.model,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1024,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, "", fmt.Errorf("lỗi gọi image API: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, "", errors.New("image API không trả về ảnh")
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("decode ảnh: %w", err)
	}
	return img, http.DetectContentType(img), nil
}
