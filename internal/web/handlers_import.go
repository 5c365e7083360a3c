package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
)

// ImportResponse is the body of a successful import. The message is fixed;
// the report says how many batches committed or failed.
type ImportResponse struct {
	Message string             `json:"message"`
	Report  *core.ImportReport `json:"report"`
}

// csvContentType is the only Content-Type the import accepts, compared verbatim.
const csvContentType = "text/csv"

// handleImport serves POST /employees/import.
//
// The body is the raw CSV, optionally compressed per Content-Encoding, and
// is streamed into the importer. Batch failures do not fail the request.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Rejected before any body byte is read.
	if r.Header.Get("Content-Type") != csvContentType {
		respondError(w, r, http.StatusBadRequest, msgInvalidFileType, nil)
		return
	}

	if limit := s.cfg.Upload.MaxFileSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	body, release, err := decodeBody(r.Header.Get("Content-Encoding"), r.Body)
	if errors.Is(err, errUnsupportedEncoding) {
		respondError(w, r, http.StatusBadRequest, msgUnsupportedEncode, err)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgStreamRead, err)
		return
	}
	defer release()

	report, err := s.service.Import(withRequestMetadata(r.Context(), r), body)
	if err != nil {
		s.respondImportError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import request completed",
		"import_id", report.ImportID,
		"rows", report.Rows,
		"batches_failed", report.BatchesFailed,
	)
	writeJSON(w, http.StatusOK, ImportResponse{Message: msgImported, Report: report})
}

func (s *Server) respondImportError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrTooManyImports):
		w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.Upload.MaxWaitTime.Seconds())))
		respondError(w, r, http.StatusTooManyRequests, msgTooManyImports, err)
	case errors.As(err, &tooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, msgFileTooLarge, err)
	case errors.Is(err, core.ErrStreamRead):
		respondError(w, r, http.StatusInternalServerError, msgStreamRead, err)
	default:
		respondError(w, r, http.StatusInternalServerError, msgSomethingWentWrong, err)
	}
}
