package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// AudioSynthesizer chuyển text thành MP3 theo voice tag.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, voiceType, text string) ([]byte, error)
}

// DefaultVoiceMap ánh xạ voice tag của client sang giọng Google TTS.
var DefaultVoiceMap = map[string]string{
	"alloy":   "en-US-Neural2-A",
	"shimmer": "en-US-Neural2-H",
	"nova":    "en-US-Neural2-F",
	"echo":    "en-US-Neural2-D",
	"fable":   "en-GB-Neural2-B",
	"onyx":    "en-US-Neural2-J",
}

const ttsChunkBytes = 4500 // dưới ngưỡng 5000 bytes của Google

type GoogleSynthesizer struct {
	client *texttospeech.Client
	voices map[string]string
	rate   float64
}

func NewGoogleSynthesizer(ctx context.Context, credPath string, overrides map[string]string) (*GoogleSynthesizer, error) {
	if credPath == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_JSON environment variable is not set")
	}
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, err
	}
	return &GoogleSynthesizer{client: client, voices: mergeVoices(overrides), rate: 1.0}, nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, voiceType, text string) ([]byte, error) {
	if len(text) == 0 {
		return nil, errors.New("text is empty")
	}
	voice, ok := g.voices[voiceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoice, voiceType)
	}

	chunks := splitTextToChunksByByte(text, ttsChunkBytes)
	var allAudio []byte
	for idx, chunk := range chunks {
		log.Printf("Synthesizing chunk %d/%d: %d bytes", idx+1, len(chunks), len(chunk))

		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCode(voice),
				Name:         voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  g.rate,
			},
		}

		resp, err := g.client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		allAudio = append(allAudio, resp.AudioContent...)
	}
	return allAudio, nil
}

func mergeVoices(overrides map[string]string) map[string]string {
	out := make(map[string]string, len(DefaultVoiceMap))
	for k, v := range DefaultVoiceMap {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// languageCode lấy "en-US" từ "en-US-Neural2-F".
func languageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

// splitTextToChunksByByte chia text theo giới hạn byte, ưu tiên cắt ở dấu câu.
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cutPos := maxBytes
		for i := cutPos; i > 0; i-- {
			if remaining[i-1] == '.' || remaining[i-1] == '!' || remaining[i-1] == '?' || remaining[i-1] == '\n' {
				cutPos = i
				break
			}
		}

		// không cắt giữa ký tự UTF-8
		for cutPos > 0 && cutPos < len(remaining) && (remaining[cutPos]&0xC0) == 0x80 {
			cutPos--
		}
		if cutPos == 0 {
			cutPos = maxBytes
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
