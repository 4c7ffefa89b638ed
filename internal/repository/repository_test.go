package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "blogapp/internal/errors"
	"blogapp/internal/model"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

var userColumns = []string{"id", "username", "email", "password_hash", "avatar_path", "created_at", "updated_at"}

func userRow(id uint, username, email string) []driver.Value {
	now := time.Now()
	return []driver.Value{id, username, email, "$2a$10$hash", model.DefaultAvatar, now, now}
}

func TestUserRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnResult(sqlmock.NewResult(7, 1))

	user := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h", AvatarPath: model.DefaultAvatar}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_TranslatesDuplicateKeys(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{"username", "Duplicate entry 'alice' for key 'users.idx_users_username'", apperrors.ErrDuplicateUsername},
		{"email", "Duplicate entry 'a@x.com' for key 'users.idx_users_email'", apperrors.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock := setupMockDB(t)
			repo := NewUserRepository(gormDB)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
				WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: tt.message})

			err := repo.Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow(3, "alice", "a@x.com")...))

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_Absent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE username = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewUserRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'users.idx_users_username'"})

	err := repo.UpdateProfile(context.Background(), 1, "bob", "a@x.com")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var postColumns = []string{"id", "title", "body", "created_at", "updated_at", "owner_id"}

func TestPostRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `posts`")).
		WillReturnResult(sqlmock.NewResult(11, 1))

	post := &model.Post{Title: "Hello", Body: "World", OwnerID: 1}
	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(11), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_FindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` WHERE `posts`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows(postColumns))

	post, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_NewestFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` ORDER BY created_at DESC,id DESC")).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(2, "second", "b", newer, newer, 1).
			AddRow(1, "first", "a", older, older, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow(1, "alice", "a@x.com")...))

	posts, total, err := repo.List(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "alice", posts[0].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_BeyondRangeSkipsQuery(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)
	owner := uint(4)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `posts` WHERE owner_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))

	posts, total, err := repo.List(context.Background(), &owner, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_NegativeOffsetIsEmpty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))

	posts, total, err := repo.List(context.Background(), nil, -100, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` WHERE `posts`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(5, "old", "old body", created, created, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `posts` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post, err := repo.Update(context.Background(), 5, "new", "new body")
	require.NoError(t, err)
	assert.Equal(t, "new", post.Title)
	assert.Equal(t, "new body", post.Body)
	assert.Equal(t, created, post.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update_MissingRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts` WHERE `posts`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows(postColumns))
	mock.ExpectRollback()

	post, err := repo.Update(context.Background(), 5, "new", "new body")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewPostRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `posts` WHERE `posts`.`id` = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 5))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `posts` WHERE `posts`.`id` = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), apperrors.ErrPostNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
