package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// AccountRepository implements repository.AccountRepository
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetAccountByGameName looks an account up by in-game name, ignoring case
func (r *AccountRepository) GetAccountByGameName(ctx context.Context, gameName string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRow(ctx, `
		SELECT account_id::text, display_name, game_name, created_at
		FROM accounts WHERE LOWER(game_name) = LOWER($1)`, gameName).
		Scan(&a.ID, &a.DisplayName, &a.GameName, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// UpsertAccount creates an account keyed by game name, or renames an existing one by id
func (r *AccountRepository) UpsertAccount(ctx context.Context, account *domain.Account) error {
	if account.DisplayName == "" {
		account.DisplayName = account.GameName
	}

	if account.ID == "" {
		return r.db.QueryRow(ctx, `
			INSERT INTO accounts (display_name, game_name) VALUES ($1, $2)
			ON CONFLICT ((LOWER(game_name))) DO UPDATE
				SET display_name = EXCLUDED.display_name, game_name = EXCLUDED.game_name
			RETURNING account_id::text, created_at`,
			account.DisplayName, account.GameName).Scan(&account.ID, &account.CreatedAt)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET display_name = $2, game_name = $3 WHERE account_id = $1::uuid`,
		account.ID, account.DisplayName, account.GameName)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
