package utils

import (
	"errors"
	"strings"

	"github.com/vnkhanh/podcastr-backend/models"
)

var ErrInvalidToken = errors.New("token không hợp lệ hoặc hết hạn")

// Verifier đổi bearer token thành identity đã xác thực.
type Verifier interface {
	Verify(token string) (*models.Identity, error)
}

// ChainVerifier thử lần lượt từng verifier, verifier đầu tiên thành công thắng.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	for _, v := range c {
		if v == nil {
			continue
		}
		identity, err := v.Verify(token)
		if err == nil && identity.Valid() {
			return identity, nil
		}
	}
	return nil, ErrInvalidToken
}

// BearerToken tách token từ "Bearer <token>"; rỗng nếu header sai định dạng.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
