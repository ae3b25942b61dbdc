package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/testutil"
)

func TestUserSync(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserRepo(nil)
	svc := services.NewUserService(users, testutil.NewPodcastRepo())

	_, err := svc.Sync(ctx, nil, services.SyncUserInput{})
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	identity := &models.Identity{Subject: "user_1", Email: "alice@test.dev"}
	created, err := svc.Sync(ctx, identity, services.SyncUserInput{})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Name)

	updated, err := svc.Sync(ctx, identity, services.SyncUserInput{Name: "Alice A.", ImageURL: "https://img.test/a.png"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.GetByExternalID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.Name)
	assert.Equal(t, "https://img.test/a.png", got.ImageURL)

	missing, err := svc.GetByExternalID(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserSyncEmailOwnedByAnotherIdentity(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewUserRepo(nil)
	svc := services.NewUserService(users, testutil.NewPodcastRepo())

	clerkUser, err := svc.Sync(ctx, &models.Identity{Subject: "user_2abc", Email: "alice@test.dev", Name: "Alice"}, services.SyncUserInput{})
	require.NoError(t, err)

	_, err = svc.Sync(ctx, &models.Identity{Subject: "google|1234", Email: "alice@test.dev", Name: "Alice G"}, services.SyncUserInput{})
	assert.ErrorIs(t, err, services.ErrIdentityConflict)

	// tài khoản gốc không bị đổi
	got, err := svc.GetByExternalID(ctx, "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, clerkUser.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)

	missing, err := svc.GetByExternalID(ctx, "google|1234")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTopPodcastersAndProfile(t *testing.T) {
	ctx := context.Background()
	podcasts := testutil.NewPodcastRepo()
	users := testutil.NewUserRepo(podcasts)
	svc := services.NewUserService(users, podcasts)

	alice := users.Put(models.User{ExternalID: "user_1", Email: "a@test.dev", Name: "Alice"})
	bob := users.Put(models.User{ExternalID: "user_2", Email: "b@test.dev", Name: "Bob"})
	audio := "https://storage.test/a.mp3"
	podcasts.Put(models.Podcast{UserID: bob.ID, AuthorID: "user_2", PodcastTitle: "b1", PodcastDescription: "first episode", Views: 4, AudioURL: &audio})
	podcasts.Put(models.Podcast{UserID: bob.ID, AuthorID: "user_2", PodcastTitle: "b2", PodcastDescription: "second episode", Views: 6})
	podcasts.Put(models.Podcast{UserID: alice.ID, AuthorID: "user_1", PodcastTitle: "a1"})

	top, err := svc.TopPodcasters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Bob", top[0].User.Name)
	assert.EqualValues(t, 2, top[0].TotalPodcast)
	assert.Len(t, top[0].Podcasts, 2)
	assert.Equal(t, "Alice", top[1].User.Name)

	profile, err := svc.Profile(ctx, "user_2")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 10, profile.Listeners)
	assert.Len(t, profile.Podcasts, 2)

	none, err := svc.Profile(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, none)

	feed, err := svc.Feed(ctx, "https://api.test/", "user_2")
	require.NoError(t, err)
	assert.Contains(t, feed, "<rss")
	assert.Contains(t, feed, "https://api.test/api/podcasters/user_2")
	// podcast không có audio bị bỏ khỏi feed
	assert.Equal(t, 1, strings.Count(feed, "<enclosure"))

	_, err = svc.Feed(ctx, "https://api.test", "ghost")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestCleanupJob(t *testing.T) {
	ctx := context.Background()
	files := testutil.NewFileRepo()
	blobs := testutil.NewBlobStore()
	_, _ = blobs.Upload(ctx, "audio/old.mp3", "audio/mpeg", []byte("x"))
	_, _ = blobs.Upload(ctx, "audio/kept.mp3", "audio/mpeg", []byte("x"))

	require.NoError(t, files.Record(ctx, &models.StoredFile{StorageID: "audio/old.mp3", Kind: models.FileAudio}))
	require.NoError(t, files.Record(ctx, &models.StoredFile{StorageID: "audio/kept.mp3", Kind: models.FileAudio, Attached: true}))

	// maxAge âm: mọi file chưa gắn đều quá hạn
	job := services.NewCleanupJob(files, blobs, -time.Hour, time.Hour)
	n, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, blobs.Has("audio/old.mp3"))
	assert.True(t, blobs.Has("audio/kept.mp3"))
	assert.NotContains(t, files.Files, "audio/old.mp3")
	assert.Contains(t, files.Files, "audio/kept.mp3")
}
