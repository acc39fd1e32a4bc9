package repository

import (
	"context"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// AccountRepository resolves internal accounts from in-game names
type AccountRepository interface {
	// GetAccountByGameName matches case-insensitively and returns
	// domain.ErrAccountNotFound when no account uses the name.
	GetAccountByGameName(ctx context.Context, gameName string) (*domain.Account, error)

	// UpsertAccount creates or renames an account
	UpsertAccount(ctx context.Context, account *domain.Account) error
}
