package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

func TestArticleRepository_InsertAndSetLatest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	article := &domain.Article{ID: "a-1", Title: "Morning brief", Body: "text", Topic: "tech", CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO articles`).
		WithArgs(article.ID, article.Title, article.Body, article.Topic, article.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO latest_article`).
		WithArgs(article.ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewArticleRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), article))
	require.NoError(t, repo.SetLatest(context.Background(), article.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_Insert_EmptyTopic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// The static generator produces articles without a topic; the column
	// stores the empty string as-is, never NULL.
	article := &domain.Article{ID: "a-2", Title: "Morning brief", Body: "text", Topic: "", CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO articles \(id, title, body, topic, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(article.ID, article.Title, article.Body, "", article.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewArticleRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), article))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_GetLatest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "title", "body", "topic", "created_at"}).
		AddRow("a-1", "Morning brief", "text", "tech", createdAt)

	mock.ExpectQuery(`SELECT (.+) FROM latest_article`).WillReturnRows(rows)

	repo := NewArticleRepository(mock)
	article, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a-1", article.ID)
	assert.Equal(t, "Morning brief", article.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_GetLatest_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM latest_article`).WillReturnError(pgx.ErrNoRows)

	repo := NewArticleRepository(mock)
	_, err = repo.GetLatest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
