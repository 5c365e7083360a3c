// Package sqlite implements the employee store on SQLite using database/sql
// and the pure-Go modernc driver. SQLite has no bulk-load API like COPY, so
// each batch runs prepared INSERTs inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/employees/internal/core"
)

// Schema creates the employees and addresses tables if they are missing.
//
//go:embed schema.sql
var Schema string

const dateLayout = "2006-01-02"

// Store is a core.Store backed by a single SQLite connection.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens the database at dsn, enables foreign keys and creates the schema.
//
// dsn is a file path or a "file:" URI, for example "employees.db" or
// "file::memory:". A busy timeout and foreign keys are added unless dsn
// already sets pragmas.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// EnsureSchema executes Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens the transaction for one batch.
func (s *Store) Begin(ctx context.Context) (core.BatchTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &batchTx{tx: tx}, nil
}

const insertEmployee = `INSERT INTO employees (
    id, import_id, employee_old_id, name_prefix, first_name, middle_initial,
    last_name, gender, email, date_of_birth, time_of_birth, age,
    date_of_joining, age_in_company, phone_number, username
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertAddress = `INSERT INTO addresses (
    employee_id, import_id, place_name, country, city, zip, region
) VALUES (?, ?, ?, ?, ?, ?, ?)`

type batchTx struct {
	tx *sql.Tx
}

func (b *batchTx) InsertEmployees(ctx context.Context, rows []core.EmployeeRecord) error {
	stmt, err := b.tx.PrepareContext(ctx, insertEmployee)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert employees: %w", err)
	}
	defer stmt.Close()

	for _, e := range rows {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.ImportID.String(), e.ExternalID, e.NamePrefix, e.FirstName, e.MiddleInitial,
			e.LastName, int16(e.Gender), e.Email, dateArg(e.DateOfBirth), timeArg(e.TimeOfBirth), intArg(e.Age),
			dateArg(e.DateOfJoining), intArg(e.TenureYears), e.PhoneNumber, e.Username,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert employee %d: %w", e.ID, err)
		}
	}
	return nil
}

func (b *batchTx) InsertAddresses(ctx context.Context, rows []core.AddressRecord) error {
	stmt, err := b.tx.PrepareContext(ctx, insertAddress)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert addresses: %w", err)
	}
	defer stmt.Close()

	for _, a := range rows {
		_, err := stmt.ExecContext(ctx,
			a.EmployeeID, a.ImportID.String(), a.PlaceName, a.Country, a.City, a.Zip, a.Region,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert address for employee %d: %w", a.EmployeeID, err)
		}
	}
	return nil
}

func (b *batchTx) Commit(context.Context) error {
	return b.tx.Commit()
}

// Rollback is a no-op on a transaction that already ended.
func (b *batchTx) Rollback(context.Context) error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func dateArg(d pgtype.Date) any {
	if !d.Valid {
		return nil
	}
	return d.Time.Format(dateLayout)
}

func timeArg(t pgtype.Time) any {
	if s := core.TimeValue(t); s != nil {
		return *s
	}
	return nil
}

func intArg(i pgtype.Int4) any {
	if !i.Valid {
		return nil
	}
	return int64(i.Int32)
}
