package core

import "github.com/google/uuid"

// MapRow converts one CSV record into an employee and its address.
// It never fails: unparseable dates, times and numbers become NULL,
// unknown gender codes become GenderUnknown.
func MapRow(row RawRow, id int64, importID uuid.UUID) Pair {
	emp := EmployeeRecord{
		ID:            id,
		ImportID:      importID,
		ExternalID:    cell(row, colExternalID),
		NamePrefix:    cell(row, colNamePrefix),
		FirstName:     cell(row, colFirstName),
		MiddleInitial: cell(row, colMiddleInitial),
		LastName:      cell(row, colLastName),
		Gender:        ParseGender(cell(row, colGender)),
		Email:         cell(row, colEmail),
		DateOfBirth:   ToPgDate(cell(row, colDateOfBirth)),
		TimeOfBirth:   ToPgTime(cell(row, colTimeOfBirth)),
		Age:           ToPgInt4(cell(row, colAge)),
		DateOfJoining: ToPgDate(cell(row, colDateOfJoining)),
		TenureYears:   ToPgInt4(cell(row, colTenureYears)),
		PhoneNumber:   NormalizePhone(cell(row, colPhone)),
		Username:      cell(row, colUsername),
	}

	addr := AddressRecord{
		EmployeeID: id,
		ImportID:   importID,
		PlaceName:  cell(row, colPlaceName),
		Country:    cell(row, colCountry),
		City:       cell(row, colCity),
		Zip:        cell(row, colZip),
		Region:     cell(row, colRegion),
	}

	return Pair{Employee: emp, Address: addr}
}
