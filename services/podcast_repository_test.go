package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/testutil"
)

var podcastColumns = []string{
	"id", "user_id", "podcast_title", "podcast_description", "category_type", "voice_type",
	"views", "author", "author_id", "created_at",
}

func TestGormPodcastRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("find by id absent", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "podcasts" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(podcastColumns))

		p, err := repo.FindByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find by id", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)
		id, owner := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "podcasts" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(podcastColumns).
				AddRow(id, owner, "Test", "Desc", "music", "nova", 3, "Alice", "user_1", time.Now()))

		p, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "Alice", p.Author)
		assert.Equal(t, 3, p.Views)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "podcasts" WHERE author ILIKE \$1 ORDER BY created_at DESC LIMIT \$2`).
			WithArgs(`%50\%\_off%`, 10).
			WillReturnRows(sqlmock.NewRows(podcastColumns))

		_, err := repo.Search(ctx, services.SearchAuthor, "50%_off", 10)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search rejects unknown field", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)

		_, err := repo.Search(ctx, services.SearchField("voice_prompt; DROP TABLE podcasts"), "x", 10)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("voice type excludes reference", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)
		ref := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "podcasts" WHERE voice_type = \$1 AND id <> \$2 ORDER BY created_at DESC LIMIT \$3`).
			WithArgs("nova", ref, 10).
			WillReturnRows(sqlmock.NewRows(podcastColumns))

		res, err := repo.ListByVoiceType(ctx, "nova", ref, 10)
		assert.NoError(t, err)
		assert.Empty(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increment views on missing row", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)

		mock.ExpectExec(`UPDATE "podcasts" SET "views"=views \+ \$1 WHERE id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.IncrementViews(ctx, uuid.New())
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := services.NewGormPodcastRepository(db)
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM "podcasts" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
