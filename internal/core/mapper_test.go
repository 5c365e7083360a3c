package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRow_WellFormed(t *testing.T) {
	importID := uuid.New()
	p := MapRow(sampleRow(7), 42, importID)

	e := p.Employee
	assert.Equal(t, int64(42), e.ID)
	assert.Equal(t, importID, e.ImportID)
	assert.Equal(t, "100007", e.ExternalID)
	assert.Equal(t, "Mrs.", e.NamePrefix)
	assert.Equal(t, "Serafina", e.FirstName)
	assert.Equal(t, "I", e.MiddleInitial)
	assert.Equal(t, "Bumgarner", e.LastName)
	assert.Equal(t, GenderFemale, e.Gender)
	assert.Equal(t, "serafina.bumgarner7@exxonmobil.com", e.Email)
	require.True(t, e.DateOfBirth.Valid)
	assert.Equal(t, time.Date(1982, time.September, 21, 0, 0, 0, 0, time.UTC), e.DateOfBirth.Time)
	assert.Equal(t, "01:53:14", *TimeValue(e.TimeOfBirth))
	assert.Equal(t, int32(34), e.Age.Int32)
	require.True(t, e.DateOfJoining.Valid)
	assert.Equal(t, 2008, e.DateOfJoining.Time.Year())
	assert.Equal(t, int32(9), e.TenureYears.Int32)
	assert.Equal(t, "(212) 376-9125", e.PhoneNumber)
	assert.Equal(t, "sibumgarner", e.Username)

	a := p.Address
	assert.Equal(t, e.ID, a.EmployeeID)
	assert.Equal(t, importID, a.ImportID)
	assert.Equal(t, "Clymer", a.PlaceName)
	assert.Equal(t, "Chautauqua", a.Country)
	assert.Equal(t, "Clymer", a.City)
	assert.Equal(t, "14724", a.Zip)
	assert.Equal(t, "Northeast", a.Region)
}

func TestMapRow_BadDateBecomesNull(t *testing.T) {
	row := sampleRow(1)
	row[colDateOfBirth] = "31st of never"

	p := MapRow(row, 1, uuid.New())
	assert.False(t, p.Employee.DateOfBirth.Valid)
	assert.Nil(t, DateValue(p.Employee.DateOfBirth))

	assert.Equal(t, "Serafina", p.Employee.FirstName)
	assert.True(t, p.Employee.DateOfJoining.Valid)
	assert.Equal(t, "Clymer", p.Address.City)
}

func TestMapRow_UnknownGenderAndBadNumbers(t *testing.T) {
	row := sampleRow(1)
	row[colGender] = "?"
	row[colAge] = "n/a"
	row[colTimeOfBirth] = "teatime"

	e := MapRow(row, 1, uuid.New()).Employee
	assert.Equal(t, GenderUnknown, e.Gender)
	assert.False(t, e.Age.Valid)
	assert.Nil(t, Int4Value(e.Age))
	assert.False(t, e.TimeOfBirth.Valid)
}

func TestMapRow_ShortRow(t *testing.T) {
	p := MapRow(RawRow{"9", "Mr.", "Ada"}, 3, uuid.New())

	assert.Equal(t, "9", p.Employee.ExternalID)
	assert.Equal(t, "Ada", p.Employee.FirstName)
	assert.Empty(t, p.Employee.Username)
	assert.False(t, p.Employee.DateOfBirth.Valid)
	assert.Empty(t, p.Address.Region)
	assert.Equal(t, int64(3), p.Address.EmployeeID)
}

func TestMapRow_Pure(t *testing.T) {
	id := uuid.New()
	row := sampleRow(5)
	assert.Equal(t, MapRow(row, 5, id), MapRow(row, 5, id))
}
