package web

// errors.go writes JSON responses for the API.
//
// Every error body is {"message": "..."}. The technical error is logged with
// the request id and the core.MapError code; clients only see the message.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
)

// Client-facing messages.
const (
	msgEmployeeNotFound   = "Employee not found"
	msgInvalidFileType    = "Invalid file type"
	msgUnsupportedEncode  = "Unsupported content encoding"
	msgStreamRead         = "Failed to read input stream"
	msgTooManyImports     = "Too many concurrent imports, please try again later"
	msgFileTooLarge       = "File too large"
	msgSomethingWentWrong = "Something went wrong. Please, try again"
	msgImported           = "CSV data imported successfully"
)

// MessageResponse is the body of every error and of plain confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError logs err with request context and writes message with status.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if err != nil {
		args = append(args, "error", err.Error(), "code", core.MapError(err).Code)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request rejected", args...)
	}
	writeMessage(w, status, message)
}

// writeMessage writes {"message": message}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeJSON encodes v as JSON with status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}
