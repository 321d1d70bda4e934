package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"mx-social/domain/model"
)

// TestUserRepository_GetById reads one operator through the prepared
// statement path.
func TestUserRepository_GetById(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)).
		ExpectQuery().WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_name", "password", "created_at", "updated_at"}).
			AddRow(1, "Panel Admin", "admin", "5f4dcc3b5aa765d61d8327deb882cf99", now, now))

	user, err := repo.GetById(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, "admin", user.UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetByUserName resolves the login lookup.
func TestUserRepository_GetByUserName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)).
		ExpectQuery().WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_name", "password", "created_at", "updated_at"}).
			AddRow(1, "Panel Admin", "admin", "5f4dcc3b5aa765d61d8327deb882cf99", now, now))

	user, err := repo.GetByUserName(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, "Panel Admin", user.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_CreateUser inserts a new operator.
func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO public.user (name, user_name, password) VALUES ($1, $2, $3)`)).
		ExpectExec().WithArgs("Panel Admin", "admin", "5f4dcc3b5aa765d61d8327deb882cf99").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.CreateUser(context.Background(), model.User{
		Name:     "Panel Admin",
		UserName: "admin",
		Password: "5f4dcc3b5aa765d61d8327deb882cf99",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetById_PrepareError checks prepare failures surface
// to the caller.
func TestUserRepository_GetById_PrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)).
		WillReturnError(fmt.Errorf("prepare error"))

	user, err := repo.GetById(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, model.User{}, user)
	require.NoError(t, mock.ExpectationsWereMet())
}
