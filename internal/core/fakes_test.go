package core

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"
)

// mockWriter and mockTx are testify mocks of the storage seam.
type mockWriter struct{ mock.Mock }

func (m *mockWriter) Begin(ctx context.Context) (BatchTx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(BatchTx)
	return tx, args.Error(1)
}

type mockTx struct{ mock.Mock }

func (m *mockTx) InsertEmployees(ctx context.Context, rows []EmployeeRecord) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *mockTx) InsertAddresses(ctx context.Context, rows []AddressRecord) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *mockTx) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *mockTx) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

// committingTx returns a mockTx expecting a clean insert and commit.
func committingTx() *mockTx {
	tx := &mockTx{}
	tx.On("InsertEmployees", mock.Anything, mock.Anything).Return(nil).Once()
	tx.On("InsertAddresses", mock.Anything, mock.Anything).Return(nil).Once()
	tx.On("Commit", mock.Anything).Return(nil).Once()
	return tx
}

// memStore is an in-memory Store. Transactions buffer rows until Commit.
type memStore struct {
	mu        sync.Mutex
	employees map[int64]EmployeeRecord
	addresses map[int64]AddressRecord
	failBatch func(rows []EmployeeRecord) error
	begins    int
}

func newMemStore() *memStore {
	return &memStore{
		employees: make(map[int64]EmployeeRecord),
		addresses: make(map[int64]AddressRecord),
	}
}

func (s *memStore) Begin(context.Context) (BatchTx, error) {
	s.mu.Lock()
	s.begins++
	s.mu.Unlock()
	return &memTx{store: s}, nil
}

type memTx struct {
	store *memStore
	emps  []EmployeeRecord
	addrs []AddressRecord
}

func (tx *memTx) InsertEmployees(_ context.Context, rows []EmployeeRecord) error {
	if tx.store.failBatch != nil {
		if err := tx.store.failBatch(rows); err != nil {
			return err
		}
	}
	tx.emps = append(tx.emps, rows...)
	return nil
}

func (tx *memTx) InsertAddresses(_ context.Context, rows []AddressRecord) error {
	tx.addrs = append(tx.addrs, rows...)
	return nil
}

func (tx *memTx) Commit(context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, e := range tx.emps {
		tx.store.employees[e.ID] = e
	}
	for _, a := range tx.addrs {
		tx.store.addresses[a.EmployeeID] = a
	}
	return nil
}

func (tx *memTx) Rollback(context.Context) error {
	tx.emps, tx.addrs = nil, nil
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.employees)
}

func (s *memStore) toEmployee(e EmployeeRecord) Employee {
	out := Employee{
		ID:            e.ID,
		ExternalID:    e.ExternalID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Gender:        e.Gender,
		DateOfBirth:   DateValue(e.DateOfBirth),
		TimeOfBirth:   TimeValue(e.TimeOfBirth),
		Age:           Int4Value(e.Age),
		DateOfJoining: DateValue(e.DateOfJoining),
		TenureYears:   Int4Value(e.TenureYears),
		PhoneNumber:   e.PhoneNumber,
	}
	if a, ok := s.addresses[e.ID]; ok {
		out.Address = &Address{PlaceName: a.PlaceName, Country: a.Country, City: a.City, Zip: a.Zip, Region: a.Region}
	}
	return out
}

func (s *memStore) ListEmployees(_ context.Context, page, perPage int) ([]Employee, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.employees))
	for id := range s.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []Employee
	for i := (page - 1) * perPage; i < len(ids) && i < page*perPage; i++ {
		out = append(out, s.toEmployee(s.employees[ids[i]]))
	}
	return out, int64(len(ids)), nil
}

func (s *memStore) GetEmployee(_ context.Context, id int64) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	out := s.toEmployee(e)
	return &out, nil
}

func (s *memStore) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(s.employees, id)
	delete(s.addresses, id)
	return nil
}

func (s *memStore) Close() error { return nil }
