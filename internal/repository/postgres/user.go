package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

type userRepository struct {
	db DB
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, COALESCE(google_id, ''), COALESCE(kakao_id, ''), name, COALESCE(picture_url, ''), role, created_at, last_login_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.GoogleID, &u.KakaoID, &u.Name, &u.PictureURL, &u.Role, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	// Provider IDs are stored as NULL when absent so the unique indexes only
	// apply to real values. On an email conflict the missing provider ID is
	// kept, letting one account link both providers over time.
	query := `
		INSERT INTO users (id, email, google_id, kakao_id, name, picture_url, role, created_at, last_login_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (email) DO UPDATE SET
			google_id = COALESCE(EXCLUDED.google_id, users.google_id),
			kakao_id = COALESCE(EXCLUDED.kakao_id, users.kakao_id),
			name = EXCLUDED.name,
			picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
			role = EXCLUDED.role,
			last_login_at = EXCLUDED.last_login_at
		RETURNING ` + userColumns

	stored, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.GoogleID, user.KakaoID,
		user.Name, user.PictureURL, user.Role,
		user.CreatedAt, user.LastLoginAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.AlreadyExists("user with conflicting provider identity already exists")
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return stored, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	var column string
	switch provider {
	case domain.ProviderGoogle:
		column = "google_id"
	case domain.ProviderKakao:
		column = "kakao_id"
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown provider %q", provider))
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (r *userRepository) EnsureUsageStats(ctx context.Context, userID string) error {
	query := `
		INSERT INTO usage_stats (user_id, chat_messages, briefs_read, updated_at)
		VALUES ($1, 0, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ensure usage stats: %w", err)
	}
	return nil
}

func (r *userRepository) GetUsageStats(ctx context.Context, userID string) (*domain.UsageStats, error) {
	query := `SELECT user_id, chat_messages, briefs_read, updated_at FROM usage_stats WHERE user_id = $1`

	var s domain.UsageStats
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.ChatMessages, &s.BriefsRead, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("usage stats not found")
		}
		return nil, fmt.Errorf("get usage stats: %w", err)
	}
	return &s, nil
}
