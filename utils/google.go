package utils

import (
	"context"
	"errors"

	"cloud.google.com/go/auth/credentials/idtoken"

	"github.com/vnkhanh/podcastr-backend/models"
)

// GoogleIDVerifier xác minh Google ID token với GOOGLE_CLIENT_ID.
type GoogleIDVerifier struct {
	clientID string
}

func NewGoogleIDVerifier(clientID string) *GoogleIDVerifier {
	return &GoogleIDVerifier{clientID: clientID}
}

func (g *GoogleIDVerifier) VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error) {
	if g.clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID is not set")
	}
	payload, err := idtoken.Validate(ctx, idToken, g.clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	identity := &models.Identity{
		Subject:  "google|" + payload.Subject,
		Email:    email,
		Name:     name,
		ImageURL: picture,
		Provider: "google",
	}
	if !identity.Valid() {
		return nil, errors.New("token Google thiếu email")
	}
	return identity, nil
}
