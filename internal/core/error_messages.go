package core

// error_messages.go maps technical failures to short client-facing messages
// with a stable code, used for the failure sample of an import report.
//
// # Error Codes Reference
//
// Database errors (DB001-DB099):
//
//	DB001 - Duplicate key: an employee with this id already exists
//	        SQLSTATE 23505, patterns "duplicate key", "unique constraint"
//	DB003 - Foreign key: address references a missing employee
//	        SQLSTATE 23503, patterns "foreign key constraint"
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//	DB008 - Not null: a required column was empty
//	        SQLSTATE 23502, patterns "not null constraint", "not-null constraint"
//	DB009 - Value too long for its column
//	        SQLSTATE 22001
//
// Import errors (IMP001-IMP099):
//
//	IMP001 - Input stream could not be read (ErrStreamRead)
//	IMP002 - Too many concurrent imports (ErrTooManyImports)
//	IMP003 - Import was cancelled
//	IMP004 - Import timed out
//
// Fallback:
//
//	ERR000 - Unknown error; check the server log for the batch
//
// Sentinels are matched first with errors.Is, then Postgres SQLSTATE codes,
// then case-insensitive substrings. The first match wins.

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgDuplicate = UserMessage{
		Message: "An employee with this id already exists",
		Action:  "Remove rows that were already imported",
		Code:    "DB001",
	}
	msgForeignKey = UserMessage{
		Message: "Address references a missing employee",
		Action:  "Retry the import",
		Code:    "DB003",
	}
	msgNotNull = UserMessage{
		Message: "A required column was empty",
		Action:  "Check the rows of this batch for missing values",
		Code:    "DB008",
	}
	msgTooLong = UserMessage{
		Message: "A value is too long for its column",
		Action:  "Shorten the offending values",
		Code:    "DB009",
	}
	msgStream = UserMessage{
		Message: "Failed to read input stream",
		Action:  "Check the file and upload it again",
		Code:    "IMP001",
	}
	msgBusy = UserMessage{
		Message: "Too many concurrent imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}
	msgCancelled = UserMessage{
		Message: "Import was cancelled",
		Action:  "Please try again",
		Code:    "IMP003",
	}
	msgDeadline = UserMessage{
		Message: "Import timed out",
		Action:  "Split the file into smaller uploads",
		Code:    "IMP004",
	}
)

var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrStreamRead, msgStream},
	{ErrTooManyImports, msgBusy},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgDeadline},
}

// sqlStateMessages maps Postgres SQLSTATE codes.
var sqlStateMessages = map[string]UserMessage{
	"23505": msgDuplicate,
	"23503": msgForeignKey,
	"23502": msgNotNull,
	"22001": msgTooLong,
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched with strings.Contains against the lowercased error.
// Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique constraint", msg: msgDuplicate},
	{pattern: "foreign key constraint", msg: msgForeignKey},
	{pattern: "not null constraint", msg: msgNotNull},
	{pattern: "not-null constraint", msg: msgNotNull},
	{pattern: "value too long", msg: msgTooLong},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}
