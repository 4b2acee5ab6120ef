package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLSeanceRepoHasSeances(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM shows WHERE movie_uid = ? AND status <> 'CANCELLED')`)
	mock.ExpectQuery(q).WithArgs("uid-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("uid-2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(q).WithArgs("uid-3").WillReturnError(errors.New("server has gone away"))

	repo := NewSQLSeanceRepo(db)
	ctx := context.Background()

	ok, err := repo.HasSeances(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasSeances(ctx, "uid-2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.HasSeances(ctx, "uid-3")
	assert.Equal(t, KindStore, KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
