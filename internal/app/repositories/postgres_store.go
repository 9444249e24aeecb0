package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/db"
)

// PostgresStore is the PostgreSQL backed Store
type PostgresStore struct {
	database *db.PostgresDB
	q        db.Querier
	sb       squirrel.StatementBuilderType
	inTx     bool
}

// NewPostgresStore creates a store on top of the connection pool
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		database: database,
		q:        database.Pool,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Students returns the student repository bound to this store's connection
func (s *PostgresStore) Students() StudentRepository {
	return &StudentRepositoryPG{q: s.q, sb: s.sb}
}

// Admins returns the admin repository
func (s *PostgresStore) Admins() AdminRepository {
	return &AdminRepositoryPG{q: s.q, sb: s.sb}
}

// Jobs returns the job repository
func (s *PostgresStore) Jobs() JobRepository {
	return &JobRepositoryPG{q: s.q, sb: s.sb}
}

// Printers returns the printer repository
func (s *PostgresStore) Printers() PrinterRepository {
	return &PrinterRepositoryPG{q: s.q, sb: s.sb}
}

// Transactions returns the ledger repository
func (s *PostgresStore) Transactions() TransactionRepository {
	return &TransactionRepositoryPG{q: s.q, sb: s.sb}
}

// WithTx runs fn inside a database transaction
func (s *PostgresStore) WithTx(ctx context.Context, fn TxFn) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &PostgresStore{database: s.database, q: tx, sb: s.sb, inTx: true})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

// money renders an amount for a NUMERIC parameter
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
