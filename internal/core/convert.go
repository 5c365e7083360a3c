package core

// convert.go turns raw CSV cells into typed column values.
//
// Every converter is total: malformed input yields an invalid (NULL) pgtype
// value or a sentinel, never an error, so one bad cell cannot drop a row.

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/unicode/norm"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future
// are moved to the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
	}
	timeLayouts = []string{
		"3:04:05 PM", "03:04:05 PM", "3:04:05PM",
		"15:04:05", "3:04 PM", "15:04",
	}
)

// CleanCell trims whitespace and unwraps the Excel text-formula form ="value".
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// ToPgDate converts a string to pgtype.Date.
// 4-digit year layouts are tried first; 2-digit years are resolved with TwoDigitYearPivot.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{}
}

// ToPgTime converts a time-of-day string to pgtype.Time.
func ToPgTime(s string) pgtype.Time {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return pgtype.Time{}
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second
		return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
	}

	return pgtype.Time{}
}

// ToPgInt4 converts an integer or decimal string to pgtype.Int4, truncating decimals.
func ToPgInt4(s string) pgtype.Int4 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return pgtype.Int4{}
	}

	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return pgtype.Int4{Int32: int32(i), Valid: true}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Int4{}
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(f), Valid: true}
}

// ParseGender maps the known gender codes to Gender; anything else is GenderUnknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// NormalizePhone formats North American numbers as "(212) 376-9125" or
// "+1 (212) 376-9125". Extensions ("x123", "ext. 123") are dropped.
// Input that does not reduce to 10 or 11 digits is returned trimmed.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// NFKC folds full-width digits and other compatibility forms to ASCII.
	base := strings.ToLower(norm.NFKC.String(s))
	if i := strings.Index(base, "ext"); i > 0 {
		base = base[:i]
	}
	if i := strings.IndexAny(base, "x#"); i > 0 {
		base = base[:i]
	}

	var digits strings.Builder
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case unicode.IsSpace(r), strings.ContainsRune("+-.()/", r):
		default:
			return s
		}
	}

	d := digits.String()
	switch {
	case len(d) == 10:
		return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) == 11 && d[0] == '1':
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	default:
		return s
	}
}

// DateValue returns a pointer to the date, or nil when NULL.
func DateValue(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// TimeValue renders a time-of-day as "15:04:05", or nil when NULL.
func TimeValue(t pgtype.Time) *string {
	if !t.Valid {
		return nil
	}
	s := time.Time{}.Add(time.Duration(t.Microseconds) * time.Microsecond).Format("15:04:05")
	return &s
}

// Int4Value returns a pointer to the integer, or nil when NULL.
func Int4Value(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	v := i.Int32
	return &v
}
