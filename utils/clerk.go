package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clerkinc/clerk-sdk-go/clerk"

	"github.com/vnkhanh/podcastr-backend/models"
)

const clerkProfileTTL = 5 * time.Minute

type cachedProfile struct {
	identity  models.Identity
	expiresAt time.Time
}

// ClerkVerifier xác thực session token của Clerk. Hồ sơ user được đọc từ Clerk
// và giữ trong cache theo subject, nên không phải request nào cũng gọi Users().Read.
type ClerkVerifier struct {
	verifyToken func(token string) (*clerk.SessionClaims, error)
	readUser    func(userID string) (*clerk.User, error)
	now         func() time.Time

	mu       sync.Mutex
	profiles map[string]cachedProfile
}

func NewClerkVerifier(secretKey string) (*ClerkVerifier, error) {
	if secretKey == "" {
		return nil, errors.New("CLERK_SECRET_KEY is not set")
	}
	client, err := clerk.NewClient(secretKey)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Clerk client: %w", err)
	}
	return newClerkVerifier(
		func(token string) (*clerk.SessionClaims, error) { return client.VerifyToken(token) },
		client.Users().Read,
	), nil
}

func newClerkVerifier(verify func(string) (*clerk.SessionClaims, error), read func(string) (*clerk.User, error)) *ClerkVerifier {
	return &ClerkVerifier{
		verifyToken: verify,
		readUser:    read,
		now:         time.Now,
		profiles:    map[string]cachedProfile{},
	}
}

func (v *ClerkVerifier) Verify(token string) (*models.Identity, error) {
	sess, err := v.verifyToken(token)
	if err != nil {
		return nil, err
	}

	now := v.now()
	v.mu.Lock()
	cached, ok := v.profiles[sess.Subject]
	if ok && now.After(cached.expiresAt) {
		delete(v.profiles, sess.Subject)
		ok = false
	}
	v.mu.Unlock()
	if ok {
		identity := cached.identity
		return &identity, nil
	}

	user, err := v.readUser(sess.Subject)
	if err != nil {
		return nil, fmt.Errorf("không thể đọc user từ Clerk: %w", err)
	}

	identity := models.Identity{
		Subject:  sess.Subject,
		Email:    primaryEmail(user),
		Name:     clerkName(user.FirstName, user.LastName),
		ImageURL: user.ProfileImageURL,
		Provider: "clerk",
	}

	v.mu.Lock()
	v.profiles[sess.Subject] = cachedProfile{identity: identity, expiresAt: now.Add(clerkProfileTTL)}
	v.mu.Unlock()
	return &identity, nil
}

// primaryEmail lấy địa chỉ khớp PrimaryEmailAddressID; email là khoá sở hữu podcast.
func primaryEmail(user *clerk.User) string {
	if user.PrimaryEmailAddressID != nil {
		for _, addr := range user.EmailAddresses {
			if addr.ID == *user.PrimaryEmailAddressID {
				return addr.EmailAddress
			}
		}
	}
	return ""
}

func clerkName(first, last *string) string {
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}
