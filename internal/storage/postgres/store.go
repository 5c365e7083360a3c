// Package postgres implements the employee store on PostgreSQL using pgx v5.
// Each import batch is one transaction that COPYs employees, then addresses.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/employees/internal/core"
)

// Schema creates the employees and addresses tables if they are missing.
//
//go:embed schema.sql
var Schema string

// Config holds pool settings.
type Config struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// copyTx is the part of pgx.Tx a batch needs.
type copyTx interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is a core.Store backed by a pgx pool.
type Store struct {
	pool  *pgxpool.Pool
	begin func(ctx context.Context) (copyTx, error)
}

var _ core.Store = (*Store)(nil)

// Open parses cfg.URL, applies the pool limits and pings the database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxpool: ping: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	s := &Store{pool: pool}
	s.begin = func(ctx context.Context) (copyTx, error) {
		return pool.Begin(ctx)
	}
	return s
}

// EnsureSchema executes Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Begin opens the transaction for one batch.
func (s *Store) Begin(ctx context.Context) (core.BatchTx, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &batchTx{tx: tx}, nil
}

var employeeColumns = []string{
	"id", "import_id", "employee_old_id", "name_prefix", "first_name",
	"middle_initial", "last_name", "gender", "email", "date_of_birth",
	"time_of_birth", "age", "date_of_joining", "age_in_company",
	"phone_number", "username",
}

var addressColumns = []string{
	"employee_id", "import_id", "place_name", "country", "city", "zip", "region",
}

type batchTx struct {
	tx copyTx
}

func (b *batchTx) InsertEmployees(ctx context.Context, rows []core.EmployeeRecord) error {
	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		e := rows[i]
		return []any{
			e.ID, uuidValue(e.ImportID), e.ExternalID, e.NamePrefix, e.FirstName,
			e.MiddleInitial, e.LastName, int16(e.Gender), e.Email, e.DateOfBirth,
			e.TimeOfBirth, e.Age, e.DateOfJoining, e.TenureYears,
			e.PhoneNumber, e.Username,
		}, nil
	})
	n, err := b.tx.CopyFrom(ctx, pgx.Identifier{"employees"}, employeeColumns, src)
	if err != nil {
		return fmt.Errorf("copy employees: %w", err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy employees: wrote %d of %d rows", n, len(rows))
	}
	return nil
}

func (b *batchTx) InsertAddresses(ctx context.Context, rows []core.AddressRecord) error {
	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		a := rows[i]
		return []any{a.EmployeeID, uuidValue(a.ImportID), a.PlaceName, a.Country, a.City, a.Zip, a.Region}, nil
	})
	n, err := b.tx.CopyFrom(ctx, pgx.Identifier{"addresses"}, addressColumns, src)
	if err != nil {
		return fmt.Errorf("copy addresses: %w", err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy addresses: wrote %d of %d rows", n, len(rows))
	}
	return nil
}

func (b *batchTx) Commit(ctx context.Context) error {
	return b.tx.Commit(ctx)
}

// Rollback is a no-op on a transaction that already ended.
func (b *batchTx) Rollback(ctx context.Context) error {
	if err := b.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
