package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultChunkSize is the number of rows inserted per storage transaction.
const DefaultChunkSize = 300

// DefaultPerPage is the page size of the employee listing.
const DefaultPerPage = 25

// RawRow is one decoded CSV record. Fields are addressed by position.
type RawRow []string

// Gender is the normalized gender code stored for an employee.
type Gender int16

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// String returns the canonical single-letter code, or "" for GenderUnknown.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	default:
		return ""
	}
}

// EmployeeRecord is the employees row produced from one CSV line.
type EmployeeRecord struct {
	ID            int64 // correlation id, unique within one import run
	ImportID      uuid.UUID
	ExternalID    string
	NamePrefix    string
	FirstName     string
	MiddleInitial string
	LastName      string
	Gender        Gender
	Email         string
	DateOfBirth   pgtype.Date
	TimeOfBirth   pgtype.Time
	Age           pgtype.Int4
	DateOfJoining pgtype.Date
	TenureYears   pgtype.Int4
	PhoneNumber   string
	Username      string
}

// AddressRecord is the addresses row produced from the same CSV line as its employee.
type AddressRecord struct {
	EmployeeID int64
	ImportID   uuid.UUID
	PlaceName  string
	Country    string
	City       string
	Zip        string
	Region     string
}

// Pair holds the two records mapped from a single row.
type Pair struct {
	Employee EmployeeRecord
	Address  AddressRecord
}

// Batch is a bounded, ordered group of pairs written in one transaction.
type Batch struct {
	Seq   int // 1-based
	Pairs []Pair
}

// Len returns the number of rows in the batch.
func (b Batch) Len() int { return len(b.Pairs) }

// Employees returns the employee half of every pair, in order.
func (b Batch) Employees() []EmployeeRecord {
	out := make([]EmployeeRecord, len(b.Pairs))
	for i, p := range b.Pairs {
		out[i] = p.Employee
	}
	return out
}

// Addresses returns the address half of every pair, in order.
func (b Batch) Addresses() []AddressRecord {
	out := make([]AddressRecord, len(b.Pairs))
	for i, p := range b.Pairs {
		out[i] = p.Address
	}
	return out
}

// BatchTx is one storage transaction scoped to a single batch.
type BatchTx interface {
	InsertEmployees(ctx context.Context, rows []EmployeeRecord) error
	InsertAddresses(ctx context.Context, rows []AddressRecord) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BatchWriter opens batch transactions against the backing store.
type BatchWriter interface {
	Begin(ctx context.Context) (BatchTx, error)
}

// Address is the read model of an employee's address.
type Address struct {
	PlaceName string `json:"place_name"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Region    string `json:"region"`
}

// Employee is the read model returned by the employee endpoints.
type Employee struct {
	ID            int64      `json:"id"`
	ExternalID    string     `json:"employee_old_id"`
	NamePrefix    string     `json:"name_prefix"`
	FirstName     string     `json:"first_name"`
	MiddleInitial string     `json:"middle_initial"`
	LastName      string     `json:"last_name"`
	Gender        Gender     `json:"gender"`
	Email         string     `json:"email"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	TimeOfBirth   *string    `json:"time_of_birth"`
	Age           *int32     `json:"age"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	TenureYears   *int32     `json:"age_in_company"`
	PhoneNumber   string     `json:"phone_number"`
	Username      string     `json:"username"`
	Address       *Address   `json:"address,omitempty"`
}

// EmployeeStore serves the read and delete side of the employee resource.
type EmployeeStore interface {
	ListEmployees(ctx context.Context, page, perPage int) ([]Employee, int64, error)
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

// Store is a backend that can both ingest batches and serve employees.
type Store interface {
	BatchWriter
	EmployeeStore
	Close() error
}

// BatchStatus is the terminal state of one batch.
type BatchStatus string

const (
	BatchCommitted  BatchStatus = "committed"
	BatchRolledBack BatchStatus = "rolled_back"
)

// BatchResult records the outcome of one batch.
type BatchResult struct {
	Seq      int
	FirstID  int64
	Rows     int
	Status   BatchStatus
	Err      error
	Duration time.Duration
}

// BatchFailure is the client-facing summary of a failed batch.
type BatchFailure struct {
	Batch   int    `json:"batch"`
	FirstID int64  `json:"first_row"`
	Rows    int    `json:"rows"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// MaxReportedFailures caps the failure sample carried by an ImportReport.
const MaxReportedFailures = 5

// ImportReport summarizes one import run.
type ImportReport struct {
	ImportID         uuid.UUID      `json:"import_id"`
	Rows             int64          `json:"rows"`
	SkippedRows      int            `json:"skipped_rows"`
	BatchesAttempted int            `json:"batches_attempted"`
	BatchesCommitted int            `json:"batches_committed"`
	BatchesFailed    int            `json:"batches_failed"`
	RowsCommitted    int64          `json:"rows_committed"`
	BytesRead        int64          `json:"bytes_read"`
	Failures         []BatchFailure `json:"failures,omitempty"`
	Duration         time.Duration  `json:"-"`
	DurationMs       int64          `json:"duration_ms"`
}

// record folds one batch outcome into the report.
func (r *ImportReport) record(res BatchResult) {
	r.BatchesAttempted++
	if res.Status == BatchCommitted {
		r.BatchesCommitted++
		r.RowsCommitted += int64(res.Rows)
		return
	}
	r.BatchesFailed++
	if len(r.Failures) < MaxReportedFailures {
		msg := MapError(res.Err)
		r.Failures = append(r.Failures, BatchFailure{
			Batch:   res.Seq,
			FirstID: res.FirstID,
			Rows:    res.Rows,
			Code:    msg.Code,
			Message: msg.Message,
			Action:  msg.Action,
		})
	}
}
