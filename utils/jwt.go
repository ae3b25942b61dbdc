package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vnkhanh/podcastr-backend/models"
)

const sessionIssuer = "podcastr-api"

// SessionClaims là payload của JWT phiên do server tự cấp (sau khi đăng nhập Google).
type SessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

// SessionTokens ký và xác thực JWT HS256.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue tạo token cho identity, subject là id ổn định của user.
func (s *SessionTokens) Issue(identity models.Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT_SECRET không được thiết lập")
	}
	if identity.Subject == "" || identity.Email == "" {
		return "", errors.New("identity thiếu subject hoặc email")
	}

	now := s.now()
	claims := SessionClaims{
		Email:    identity.Email,
		Name:     identity.Name,
		ImageURL: identity.ImageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify cài đặt Verifier cho token phiên local.
func (s *SessionTokens) Verify(tokenStr string) (*models.Identity, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT_SECRET không được thiết lập")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("token không hợp lệ hoặc đã hết hạn")
	}
	return &models.Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		ImageURL: claims.ImageURL,
		Provider: "local",
	}, nil
}
