package config

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/testutil"
)

var hasColumnQuery = regexp.QuoteMeta(`SELECT count(*) FROM INFORMATION_SCHEMA.columns`)

func TestMigrateLegacyAudioStorageNoColumn(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(hasColumnQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	require.NoError(t, MigrateLegacyAudioStorage(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateLegacyAudioStorageCopiesAndDrops(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(hasColumnQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE podcasts SET audio_storage_id = audio_strorage_id WHERE audio_storage_id IS NULL AND audio_strorage_id IS NOT NULL`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "podcasts" DROP COLUMN "audio_strorage_id"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, MigrateLegacyAudioStorage(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
