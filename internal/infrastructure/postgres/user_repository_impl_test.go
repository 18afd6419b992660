package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/domain/repository"
)

var cols = []string{"user_id", "username", "password", "branch", "role", "status", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users\s*\(username,\s*password,\s*branch,\s*role,\s*status\).*RETURNING\s+user_id`).
		WithArgs("alice", "cipher", "HQ", "admin", "Active").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	u := &entity.User{Username: "alice", Password: "cipher", Branch: "HQ", Role: "admin"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, entity.StatusActive, u.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("value too long"))

	err := repo.Create(context.Background(), &entity.User{Username: "alice", Status: entity.StatusActive})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user")
}

func TestUpdate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET.*WHERE\s+user_id\s*=\s*\$6`).
		WithArgs("bob", "cipher", "B1", "clerk", "Inactive", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &entity.User{ID: 3, Username: "bob", Password: "cipher", Branch: "B1", Role: "clerk", Status: entity.StatusInactive}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, now, u.UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &entity.User{ID: 99})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(5), "carol", "c", "HQ", "admin", "Active", now, now))

	u, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)
	assert.Equal(t, entity.StatusActive, u.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "alice", "c", "HQ", "admin", "Active", now, now))

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY user_id`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "alice", "c1", "HQ", "admin", "Active", now, now).
			AddRow(int64(2), "bob", "c2", "B1", "clerk", "Inactive", now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, entity.StatusInactive, users[1].Status)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY user_id`).WillReturnRows(sqlmock.NewRows(cols))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestDelete_MissingIsNotAnError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM users WHERE user_id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM users`).WillReturnError(errors.New("db down"))

	assert.Error(t, repo.Delete(context.Background(), 1))
}
