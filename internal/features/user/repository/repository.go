package repository

import (
	"context"
	"errors"

	"hubstaff-bot-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository persists chat identities and their Hubstaff tokens.
// Implementations are bound to a Querier, so the same code runs inside
// the per-update transaction scope and against the pool directly.
type UserRepository interface {
	GetByExternalID(ctx context.Context, externalID int64) (*models.User, error)
	// GetOrCreate looks up the user and creates the record on first contact.
	GetOrCreate(ctx context.Context, externalID int64, username string) (*models.User, error)
	// SaveTokens stores all four token fields in one statement.
	SaveTokens(ctx context.Context, externalID int64, tokens models.TokenSet) error
	SetAdmin(ctx context.Context, externalID int64, isAdmin bool) error
	// ClearAccess removes both tokens and the admin flag atomically:
	// is_admin must never survive a token wipe.
	ClearAccess(ctx context.Context, externalID int64) error
}
