package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"mx-social/domain/model"
)

// TestSocialPostRepository_Create checks the attachment is serialized and
// the new id written back onto the post.
func TestSocialPostRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialPostRepository(db)

	mock.ExpectQuery("INSERT INTO social_posts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	post := &model.SocialPost{
		AccountID: 7,
		Content:   "hello",
		File:      &model.PostFile{ID: 3, FileName: "clip.mp4", MimeType: "video/mp4"},
	}
	id, err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	require.Equal(t, int64(5), id)
	require.Equal(t, int64(5), post.ID)
	require.Equal(t, model.PostStatusPending, post.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestSocialPostRepository_GetByID checks the attachment JSON round trips
// back into a PostFile.
func TestSocialPostRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialPostRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+postColumns+` FROM social_posts WHERE id=$1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "content", "link", "file", "status", "response", "external_id", "scheduled_at", "created_at", "updated_at",
		}).AddRow(
			5, 7, "hello", nil, `{"id":3,"file_name":"clip.mp4","mime_type":"video/mp4"}`,
			"pending", nil, nil, nil, now, now,
		))

	post, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(7), post.AccountID)
	require.NotNil(t, post.File)
	require.Equal(t, "clip.mp4", post.File.FileName)
	require.Nil(t, post.ScheduledAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestSocialPostRepository_FetchDue checks only pending due posts come
// back, oldest first.
func TestSocialPostRepository_FetchDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialPostRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM social_posts").
		WithArgs(model.PostStatusPending, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "content", "link", "file", "status", "response", "external_id", "scheduled_at", "created_at", "updated_at",
		}).AddRow(
			1, 7, "first", nil, nil, "pending", nil, nil, now.Add(-time.Hour), now, now,
		).AddRow(
			2, 7, "second", nil, nil, "pending", nil, nil, nil, now, now,
		))

	posts, err := repo.FetchDue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "first", posts[0].Content)
	require.NotNil(t, posts[0].ScheduledAt)
	require.Nil(t, posts[1].ScheduledAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestSocialPostRepository_UpdateStatus checks the lifecycle update keeps
// a prior external id when none is supplied.
func TestSocialPostRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialPostRepository(db)

	mock.ExpectExec("UPDATE social_posts SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	response := "Video posting initiated successfully"
	err = repo.UpdateStatus(context.Background(), 5, model.PostStatusPublished, &response, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
