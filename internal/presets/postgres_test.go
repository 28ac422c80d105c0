package presets

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStorage(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storage := NewPostgresStorage(db, "parameter_presets", "nc_program_parameter_presets")

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "parameter_presets"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, storage.EnsureSchema(ctx))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM "parameter_presets" WHERE storage_key = $1`)).
		WithArgs("nc_program_parameter_presets").
		WillReturnError(sql.ErrNoRows)
	data, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "parameter_presets"`)).
		WithArgs("nc_program_parameter_presets", `[]`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, storage.Write(ctx, []byte(`[]`)))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM "parameter_presets"`)).
		WithArgs("nc_program_parameter_presets").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(`[]`)))
	data, err = storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_StoreToleratesOutage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(`SELECT document`).WillReturnError(sql.ErrConnDone)

	store := newTestStore(t, NewPostgresStorage(db, "parameter_presets", "k"))
	assert.Empty(t, store.All())
	assert.NoError(t, mock.ExpectationsWereMet())
}
