package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/employees/internal/core"
)

type copyCall struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
}

// fakeTx records COPY calls instead of talking to a server.
type fakeTx struct {
	calls       []copyCall
	copyErr     error
	committed   bool
	rolledBack  bool
	rollbackErr error
}

func (f *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	call := copyCall{table: table, columns: columns}
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		call.rows = append(call.rows, vals)
	}
	f.calls = append(f.calls, call)
	return int64(len(call.rows)), src.Err()
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

func storeWith(tx *fakeTx) *Store {
	return &Store{begin: func(context.Context) (copyTx, error) { return tx, nil }}
}

func TestBatchTx_CopiesEmployeesThenAddresses(t *testing.T) {
	fake := &fakeTx{}
	s := storeWith(fake)
	importID := uuid.New()

	emp := core.EmployeeRecord{
		ID:          7,
		ImportID:    importID,
		ExternalID:  "198429",
		FirstName:   "Serafina",
		Gender:      core.GenderFemale,
		DateOfBirth: pgtype.Date{Time: time.Date(1982, 9, 21, 0, 0, 0, 0, time.UTC), Valid: true},
		Age:         pgtype.Int4{Int32: 34, Valid: true},
		PhoneNumber: "(212) 376-9125",
	}
	addr := core.AddressRecord{EmployeeID: 7, ImportID: importID, City: "Clymer", Zip: "14724"}

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertEmployees(ctx, []core.EmployeeRecord{emp}))
	require.NoError(t, tx.InsertAddresses(ctx, []core.AddressRecord{addr}))
	require.NoError(t, tx.Commit(ctx))

	require.Len(t, fake.calls, 2)
	assert.Equal(t, pgx.Identifier{"employees"}, fake.calls[0].table)
	assert.Equal(t, employeeColumns, fake.calls[0].columns)
	require.Len(t, fake.calls[0].rows, 1)
	row := fake.calls[0].rows[0]
	require.Len(t, row, len(employeeColumns))
	assert.Equal(t, int64(7), row[0])
	assert.Equal(t, pgtype.UUID{Bytes: importID, Valid: true}, row[1])
	assert.Equal(t, int16(2), row[7])
	assert.Equal(t, emp.DateOfBirth, row[9])
	assert.Equal(t, pgtype.Time{}, row[10])

	assert.Equal(t, pgx.Identifier{"addresses"}, fake.calls[1].table)
	assert.Equal(t, []any{int64(7), pgtype.UUID{Bytes: importID, Valid: true}, "", "", "Clymer", "14724", ""}, fake.calls[1].rows[0])
	assert.True(t, fake.committed)
}

func TestBatchTx_CopyErrorIsWrapped(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	s := storeWith(&fakeTx{copyErr: cause})

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	err = tx.InsertEmployees(context.Background(), []core.EmployeeRecord{{ID: 1}})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DB001", core.MapError(err).Code)
}

func TestBatchTx_RollbackIgnoresClosedTx(t *testing.T) {
	fake := &fakeTx{rollbackErr: pgx.ErrTxClosed}
	tx, err := storeWith(fake).Begin(context.Background())
	require.NoError(t, err)
	assert.NoError(t, tx.Rollback(context.Background()))
	assert.True(t, fake.rolledBack)

	fake.rollbackErr = errors.New("conn busy")
	assert.Error(t, tx.Rollback(context.Background()))
}

func TestStore_BeginError(t *testing.T) {
	s := &Store{begin: func(context.Context) (copyTx, error) { return nil, errors.New("dial tcp: connection refused") }}
	_, err := s.Begin(context.Background())
	require.Error(t, err)
	assert.Equal(t, "DB004", core.MapError(err).Code)
}

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS employees")
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS addresses")
}
