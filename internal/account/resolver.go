package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/repository"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 15 * time.Minute
	DefaultMissTTL   = time.Minute
)

// Resolver maps in-game player names to internal account ids
type Resolver struct {
	repo  repository.AccountRepository
	cache *accountCache
}

// NewResolver creates a resolver backed by repo with default cache settings
func NewResolver(repo repository.AccountRepository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: newAccountCache(DefaultCacheSize, DefaultCacheTTL, DefaultMissTTL),
	}
}

// ResolveAccountByName returns the account id for gameName or domain.ErrAccountNotFound
func (r *Resolver) ResolveAccountByName(ctx context.Context, gameName string) (string, error) {
	if strings.TrimSpace(gameName) == "" {
		return "", fmt.Errorf("%w: empty player name", domain.ErrInvalidInput)
	}

	if acct, known := r.cache.Get(gameName); known {
		if acct == nil {
			return "", domain.ErrAccountNotFound
		}
		return acct.ID, nil
	}

	acct, err := r.repo.GetAccountByGameName(ctx, gameName)
	if errors.Is(err, domain.ErrAccountNotFound) {
		r.cache.SetMiss(gameName)
		return "", domain.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve account %q: %w", gameName, err)
	}

	r.cache.Set(gameName, acct)
	logger.FromContext(ctx).Debug("Resolved account", "player_name", gameName, "account_id", acct.ID)
	return acct.ID, nil
}

// Register creates or updates an account and refreshes the cache for its game name
func (r *Resolver) Register(ctx context.Context, acct *domain.Account) error {
	if acct == nil || strings.TrimSpace(acct.GameName) == "" {
		return fmt.Errorf("%w: account requires a game name", domain.ErrInvalidInput)
	}
	if err := r.repo.UpsertAccount(ctx, acct); err != nil {
		return fmt.Errorf("failed to register account: %w", err)
	}
	r.cache.Invalidate(acct.GameName)
	return nil
}
