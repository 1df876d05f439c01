package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"hubstaff-bot-backend/internal/features/user/models"
	"hubstaff-bot-backend/internal/features/user/repository"
	"hubstaff-bot-backend/internal/platform/postgres"
)

type userRepository struct {
	q postgres.Querier
}

// New binds a user repository to the given querier (pool or transaction).
func New(q postgres.Querier) repository.UserRepository {
	return &userRepository{q: q}
}

const userColumns = `external_id, username, is_admin, access_token, refresh_token, id_token, token_expires_at, created_at`

// GetByExternalID получает пользователя по внешнему идентификатору
func (r *userRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	row := r.q.QueryRow(ctx, query, externalID)
	var u models.User
	err := row.Scan(&u.ExternalID, &u.Username, &u.IsAdmin,
		&u.AccessToken, &u.RefreshToken, &u.IDToken, &u.TokenExpiresAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// GetOrCreate создает нового пользователя при первом обращении
func (r *userRepository) GetOrCreate(ctx context.Context, externalID int64, username string) (*models.User, error) {
	u, err := r.GetByExternalID(ctx, externalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO users (external_id, username)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	row := r.q.QueryRow(ctx, query, externalID, username)
	var created models.User
	err = row.Scan(&created.ExternalID, &created.Username, &created.IsAdmin,
		&created.AccessToken, &created.RefreshToken, &created.IDToken,
		&created.TokenExpiresAt, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// SaveTokens сохраняет токены Hubstaff для пользователя
func (r *userRepository) SaveTokens(ctx context.Context, externalID int64, tokens models.TokenSet) error {
	query := `
		UPDATE users
		SET access_token = $2, refresh_token = $3, id_token = $4, token_expires_at = $5
		WHERE external_id = $1
	`

	expiresAt := time.Now().Unix() + tokens.ExpiresIn
	tag, err := r.q.Exec(ctx, query, externalID,
		tokens.AccessToken, tokens.RefreshToken, tokens.IDToken, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// SetAdmin устанавливает флаг администратора
func (r *userRepository) SetAdmin(ctx context.Context, externalID int64, isAdmin bool) error {
	query := `UPDATE users SET is_admin = $2 WHERE external_id = $1`

	tag, err := r.q.Exec(ctx, query, externalID, isAdmin)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// ClearAccess очищает токены и флаг администратора одним запросом
func (r *userRepository) ClearAccess(ctx context.Context, externalID int64) error {
	query := `
		UPDATE users
		SET access_token = NULL, refresh_token = NULL, id_token = NULL,
			token_expires_at = NULL, is_admin = FALSE
		WHERE external_id = $1
	`

	tag, err := r.q.Exec(ctx, query, externalID)
	if err != nil {
		return fmt.Errorf("failed to clear access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}
