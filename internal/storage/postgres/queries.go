package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/employees/internal/core"
)

const selectEmployee = `
SELECT e.id, e.employee_old_id, e.name_prefix, e.first_name, e.middle_initial,
       e.last_name, e.gender, e.email, e.date_of_birth, e.time_of_birth, e.age,
       e.date_of_joining, e.age_in_company, e.phone_number, e.username,
       a.employee_id, a.place_name, a.country, a.city, a.zip, a.region
FROM employees e
LEFT JOIN LATERAL (
    SELECT employee_id, place_name, country, city, zip, region
    FROM addresses
    WHERE employee_id = e.id
    ORDER BY id
    LIMIT 1
) a ON true`

func uuidValue(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// scanEmployee reads one row of selectEmployee.
func scanEmployee(row pgx.Row) (core.Employee, error) {
	var (
		e         core.Employee
		gender    int16
		dob, doj  pgtype.Date
		tob       pgtype.Time
		age, ten  pgtype.Int4
		addrOwner pgtype.Int8
		place     pgtype.Text
		country   pgtype.Text
		city      pgtype.Text
		zip       pgtype.Text
		region    pgtype.Text
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
	e.DateOfBirth = core.DateValue(dob)
	e.TimeOfBirth = core.TimeValue(tob)
	e.Age = core.Int4Value(age)
	e.DateOfJoining = core.DateValue(doj)
	e.TenureYears = core.Int4Value(ten)
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

// ListEmployees returns one page ordered by id plus the total row count.
func (s *Store) ListEmployees(ctx context.Context, page, perPage int) ([]core.Employee, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	rows, err := s.pool.Query(ctx, selectEmployee+` ORDER BY e.id LIMIT $1 OFFSET $2`,
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
	e, err := scanEmployee(s.pool.QueryRow(ctx, selectEmployee+` WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &e, nil
}

// DeleteEmployee removes the employee and its addresses in one transaction.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE employee_id = $1`, id); err != nil {
		return fmt.Errorf("delete addresses: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrEmployeeNotFound
	}
	return tx.Commit(ctx)
}
