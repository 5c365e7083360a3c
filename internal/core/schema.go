package core

import "fmt"

// FieldType represents the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldTime
	FieldInt
	FieldPhone
)

// FieldSpec describes one column of the import CSV.
type FieldSpec struct {
	Name  string    // header label in the published template
	Index int       // 0-based position in the row
	Type  FieldType // drives normalization in MapRow
}

// Column positions of the employee import CSV.
const (
	colExternalID = iota
	colNamePrefix
	colFirstName
	colMiddleInitial
	colLastName
	colGender
	colEmail
	colDateOfBirth
	colTimeOfBirth
	colAge
	colDateOfJoining
	colTenureYears
	colPhone
	colPlaceName
	colCountry
	colCity
	colZip
	colRegion
	colUsername

	columnCount
)

// EmployeeColumns is the column contract of the import CSV, in order.
var EmployeeColumns = []FieldSpec{
	{Name: "Emp ID", Index: colExternalID, Type: FieldText},
	{Name: "Name Prefix", Index: colNamePrefix, Type: FieldText},
	{Name: "First Name", Index: colFirstName, Type: FieldText},
	{Name: "Middle Initial", Index: colMiddleInitial, Type: FieldText},
	{Name: "Last Name", Index: colLastName, Type: FieldText},
	{Name: "Gender", Index: colGender, Type: FieldEnum},
	{Name: "E Mail", Index: colEmail, Type: FieldText},
	{Name: "Date of Birth", Index: colDateOfBirth, Type: FieldDate},
	{Name: "Time of Birth", Index: colTimeOfBirth, Type: FieldTime},
	{Name: "Age in Yrs.", Index: colAge, Type: FieldInt},
	{Name: "Date of Joining", Index: colDateOfJoining, Type: FieldDate},
	{Name: "Age in Company (Years)", Index: colTenureYears, Type: FieldInt},
	{Name: "Phone No.", Index: colPhone, Type: FieldPhone},
	{Name: "Place Name", Index: colPlaceName, Type: FieldText},
	{Name: "County", Index: colCountry, Type: FieldText},
	{Name: "City", Index: colCity, Type: FieldText},
	{Name: "Zip", Index: colZip, Type: FieldText},
	{Name: "Region", Index: colRegion, Type: FieldText},
	{Name: "User Name", Index: colUsername, Type: FieldText},
}

func init() {
	if err := validateColumns(EmployeeColumns); err != nil {
		panic(err)
	}
}

// validateColumns checks that specs cover positions 0..columnCount-1 exactly once, in order.
func validateColumns(specs []FieldSpec) error {
	if len(specs) != columnCount {
		return fmt.Errorf("schema: expected %d columns, got %d", columnCount, len(specs))
	}
	for i, spec := range specs {
		if spec.Index != i {
			return fmt.Errorf("schema: column %q at position %d has index %d", spec.Name, i, spec.Index)
		}
		if spec.Name == "" {
			return fmt.Errorf("schema: column %d has no name", i)
		}
	}
	return nil
}

// HeaderRow returns the template header labels in column order.
func HeaderRow() []string {
	out := make([]string, len(EmployeeColumns))
	for i, spec := range EmployeeColumns {
		out[i] = spec.Name
	}
	return out
}

// cell returns the trimmed value at idx, or "" when the row is short.
func cell(row RawRow, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return CleanCell(row[idx])
}
