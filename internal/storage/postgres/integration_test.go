package postgres

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/employees/internal/core"
)

// openTestStore connects to TEST_DATABASE_URL, or skips when it is unset.
// The employees and addresses tables are recreated empty.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, Config{URL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.pool.Exec(ctx, `DROP TABLE IF EXISTS addresses; DROP TABLE IF EXISTS employees`)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

const integrationCSV = `Emp ID,Name Prefix,First Name,Middle Initial,Last Name,Gender,E Mail,Date of Birth,Time of Birth,Age in Yrs.,Date of Joining,Age in Company (Years),Phone No.,Place Name,County,City,Zip,Region,User Name
198429,Mrs.,Serafina,I,Bumgarner,F,serafina.bumgarner@exxonmobil.com,9/21/1982,01:53:14 AM,34.87,2/1/2008,9.49,212-376-9125,Clymer,Chautauqua,Clymer,14724,Northeast,sibumgarner
178566,Mrs.,Juliette,M,Rojo,F,juliette.rojo@yahoo.co.uk,5/8/1967,06:03:25 PM,50.28,6/4/2011,6.15,215-254-9594,Glen Mills,Delaware,Glen Mills,19342,Northeast,jmrojo
`

func TestIntegration_ImportAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	svc := core.NewService(s, core.ServiceConfig{})

	report, err := svc.Import(ctx, strings.NewReader(integrationCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, report.BatchesCommitted)

	emp, err := s.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "198429", emp.ExternalID)
	assert.Equal(t, core.GenderFemale, emp.Gender)
	assert.Equal(t, "01:53:14", *emp.TimeOfBirth)
	require.NotNil(t, emp.Address)
	assert.Equal(t, "Clymer", emp.Address.City)

	rows, total, err := s.ListEmployees(ctx, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	// Same ids again: every batch collides on the primary key.
	report, err = svc.Import(ctx, strings.NewReader(integrationCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, report.BatchesFailed)
	assert.Equal(t, "DB001", report.Failures[0].Code)

	require.NoError(t, s.DeleteEmployee(ctx, 1))
	_, err = s.GetEmployee(ctx, 1)
	assert.ErrorIs(t, err, core.ErrEmployeeNotFound)
	assert.ErrorIs(t, s.DeleteEmployee(ctx, 1), core.ErrEmployeeNotFound)
}
