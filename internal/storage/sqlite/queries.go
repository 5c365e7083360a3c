package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/employees/internal/core"
)

const selectEmployee = `
SELECT e.id, e.employee_old_id, e.name_prefix, e.first_name, e.middle_initial,
       e.last_name, e.gender, e.email, e.date_of_birth, e.time_of_birth, e.age,
       e.date_of_joining, e.age_in_company, e.phone_number, e.username,
       a.employee_id, a.place_name, a.country, a.city, a.zip, a.region
FROM employees e
LEFT JOIN addresses a ON a.id = (
    SELECT min(id) FROM addresses WHERE employee_id = e.id
)`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (core.Employee, error) {
	var (
		e         core.Employee
		gender    int16
		dob, doj  sql.NullString
		tob       sql.NullString
		age, ten  sql.NullInt32
		addrOwner sql.NullInt64
		place     sql.NullString
		country   sql.NullString
		city      sql.NullString
		zip       sql.NullString
		region    sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.ExternalID, &e.NamePrefix, &e.FirstName, &e.MiddleInitial,
		&e.LastName, &gender, &e.Email, &dob, &tob, &age,
		&doj, &ten, &e.PhoneNumber, &e.Username,
		&addrOwner, &place, &country, &city, &zip, &region,
	)
	if err != nil {
		return core.Employee{}, err
	}

	e.Gender = core.Gender(gender)
	e.DateOfBirth = parseDate(dob)
	e.DateOfJoining = parseDate(doj)
	if tob.Valid {
		e.TimeOfBirth = &tob.String
	}
	if age.Valid {
		e.Age = &age.Int32
	}
	if ten.Valid {
		e.TenureYears = &ten.Int32
	}
	if addrOwner.Valid {
		e.Address = &core.Address{
			PlaceName: place.String,
			Country:   country.String,
			City:      city.String,
			Zip:       zip.String,
			Region:    region.String,
		}
	}
	return e, nil
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// ListEmployees returns one page ordered by id plus the total row count.
func (s *Store) ListEmployees(ctx context.Context, page, perPage int) ([]core.Employee, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, selectEmployee+` ORDER BY e.id LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	out := make([]core.Employee, 0, perPage)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate employees: %w", err)
	}
	return out, total, nil
}

// GetEmployee returns the employee with the given id.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*core.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, selectEmployee+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &e, nil
}

// DeleteEmployee removes the employee and its addresses in one transaction.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM addresses WHERE employee_id = ?`, id); err != nil {
		return fmt.Errorf("delete addresses: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n == 0 {
		return core.ErrEmployeeNotFound
	}
	return tx.Commit()
}
