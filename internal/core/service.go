package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ServiceConfig configures a Service. Zero values fall back to defaults.
type ServiceConfig struct {
	BatchSize     int
	MaxConcurrent int
	MaxWait       time.Duration
	ImportTimeout time.Duration
	SpillToDisk   bool
	SpillDir      string
	Observer      Observer
	Logger        *slog.Logger
}

// Service is the entry point for the employee resource and CSV imports.
type Service struct {
	store    Store
	importer *Importer
	limiter  *ImportLimiter
	timeout  time.Duration
	spill    bool
	spillDir string
}

// NewService wires an importer and limiter around store.
func NewService(store Store, cfg ServiceConfig) *Service {
	return &Service{
		store: store,
		importer: NewImporter(store, ImporterConfig{
			BatchSize: cfg.BatchSize,
			Observer:  cfg.Observer,
			Logger:    cfg.Logger,
		}),
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		timeout:  cfg.ImportTimeout,
		spill:    cfg.SpillToDisk,
		spillDir: cfg.SpillDir,
	}
}

// Import runs one CSV import from body.
//
// It waits for a limiter slot (ErrTooManyImports when none frees up), then
// runs detached from ctx cancellation until body is exhausted or fails. A
// client that disconnects mid-upload therefore surfaces as a read error on
// body, not as a cancelled import. A positive ImportTimeout bounds the run;
// zero means no limit.
func (s *Service) Import(ctx context.Context, body io.Reader) (*ImportReport, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}

	src := body
	if s.spill {
		sf, err := Spill(s.spillDir, body)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := sf.Close(); err != nil {
				slog.Warn("remove spill file", "path", sf.Path(), "error", err)
			}
		}()
		src = sf
	}

	return s.importer.Import(runCtx, src)
}

// PageMeta describes one page of the employee listing.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// EmployeePage is one page of employees.
type EmployeePage struct {
	Data []Employee `json:"data"`
	Meta PageMeta   `json:"meta"`
}

// ListEmployees returns the given 1-based page, DefaultPerPage rows per page.
// Pages below 1 are treated as page 1.
func (s *Service) ListEmployees(ctx context.Context, page int) (*EmployeePage, error) {
	if page < 1 {
		page = 1
	}

	rows, total, err := s.store.ListEmployees(ctx, page, DefaultPerPage)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if rows == nil {
		rows = []Employee{}
	}

	lastPage := int((total + DefaultPerPage - 1) / DefaultPerPage)
	if lastPage < 1 {
		lastPage = 1
	}

	return &EmployeePage{
		Data: rows,
		Meta: PageMeta{
			CurrentPage: page,
			PerPage:     DefaultPerPage,
			Total:       total,
			LastPage:    lastPage,
		},
	}, nil
}

// GetEmployee returns one employee or ErrEmployeeNotFound.
func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee and its address, or returns ErrEmployeeNotFound.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.store.DeleteEmployee(ctx, id)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
