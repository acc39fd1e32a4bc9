package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/database/postgres"
	"github.com/osse101/BingoBot_Go/internal/eventlog"
)

// Repositories holds the Postgres implementations used by the application
type Repositories struct {
	Boards   *postgres.BoardRepository
	Progress *postgres.ProgressStore
	Dedup    *postgres.EventDedupRepository
	Accounts *postgres.AccountRepository
	EventLog eventlog.Repository
}

// InitializeRepositories creates all repository implementations on one pool
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Boards:   postgres.NewBoardRepository(dbPool),
		Progress: postgres.NewProgressStore(dbPool),
		Dedup:    postgres.NewEventDedupRepository(dbPool),
		Accounts: postgres.NewAccountRepository(dbPool),
		EventLog: postgres.NewEventLogRepository(dbPool),
	}
}
