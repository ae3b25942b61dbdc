package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUserNotFound        = errors.New("user not found")
	ErrPodcastNotFound     = errors.New("podcast not found")
	ErrForbidden           = errors.New("you do not own this podcast")
	ErrNoChanges           = errors.New("no changes provided")
	ErrPodcastLimitReached = errors.New("podcast limit reached")
	ErrFileNotOwned        = errors.New("storage handle does not belong to you")
	ErrIdentityConflict    = errors.New("email is already linked to another account")

	ErrMissingVoiceType   = errors.New("please provide a voice type to generate a podcast")
	ErrUnknownVoice       = errors.New("unknown voice type")
	ErrMissingVoicePrompt = errors.New("please provide a voice prompt to generate a podcast")
	ErrMissingImagePrompt = errors.New("please provide an image prompt to generate a thumbnail")
	ErrGenerationFailed   = errors.New("error generating content")
	ErrUploadFailed       = errors.New("error uploading file")
	ErrURLUnavailable     = errors.New("failed to retrieve file url")
	ErrUnsupportedFile    = errors.New("unsupported file type")
)

// ValidationError mô tả một trường đầu vào không hợp lệ.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
