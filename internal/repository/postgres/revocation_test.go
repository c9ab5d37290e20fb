package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

func TestRevocationRepository_Insert_Idempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	token := &domain.RevokedToken{
		TokenID:   "u-1:1700000000",
		UserID:    "u-1",
		Reason:    domain.RevokeReasonLogout,
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: time.Now(),
	}

	// Second insert hits the conflict clause and affects zero rows.
	mock.ExpectExec(`INSERT INTO revoked_tokens`).
		WithArgs(token.TokenID, token.UserID, token.Reason, token.ExpiresAt, token.RevokedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO revoked_tokens`).
		WithArgs(token.TokenID, token.UserID, token.Reason, token.ExpiresAt, token.RevokedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewRevocationRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), token))
	require.NoError(t, repo.Insert(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocationRepository_IsRevoked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u-1:1700000000").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u-2:1700000000").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewRevocationRepository(mock)

	revoked, err := repo.IsRevoked(context.Background(), "u-1:1700000000")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(context.Background(), "u-2:1700000000")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocationRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectExec(`DELETE FROM revoked_tokens`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewRevocationRepository(mock)
	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
