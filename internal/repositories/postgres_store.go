package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore implements Store over database/sql. The same struct serves
// both the pooled connection and transaction-scoped views; WithinTx swaps
// the executor for a *sql.Tx.
type PostgresStore struct {
	db *sql.DB
	ex SQLExecutor
}

// NewPostgresStore creates a Store backed by a Postgres connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, ex: db}
}

func (s *PostgresStore) Tickets() TicketRepository {
	return &ticketRepository{ex: s.ex}
}

func (s *PostgresStore) Stockpiles() StockpileRepository {
	return &stockpileRepository{ex: s.ex}
}

func (s *PostgresStore) StockMovements() StockMovementRepository {
	return &stockMovementRepository{ex: s.ex}
}

func (s *PostgresStore) Alerts() AlertRepository {
	return &alertRepository{ex: s.ex}
}

func (s *PostgresStore) Orders() OrderRepository {
	return &orderRepository{ex: s.ex}
}

// WithinTx runs fn inside a database transaction. Nested calls reuse the
// surrounding transaction rather than opening a second one.
func (s *PostgresStore) WithinTx(fn func(tx Store) error) error {
	if _, nested := s.ex.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, ex: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
