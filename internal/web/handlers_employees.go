package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
)

// EmployeeResponse wraps a single employee.
type EmployeeResponse struct {
	Data *core.Employee `json:"data"`
}

// handleListEmployees serves GET /employees?page=N.
// A missing or invalid page reads as page 1.
func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := s.service.ListEmployees(r.Context(), page)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgSomethingWentWrong, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetEmployee serves GET /employees/{id}.
func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgEmployeeNotFound)
		return
	}

	emp, err := s.service.GetEmployee(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		writeMessage(w, http.StatusNotFound, msgEmployeeNotFound)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, msgSomethingWentWrong, err)
	default:
		writeJSON(w, http.StatusOK, EmployeeResponse{Data: emp})
	}
}

// handleDeleteEmployee serves DELETE /employees/{id}.
func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgEmployeeNotFound)
		return
	}

	err := s.service.DeleteEmployee(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		writeMessage(w, http.StatusNotFound, msgEmployeeNotFound)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, msgSomethingWentWrong, err)
	default:
		logging.FromContext(r.Context()).Info("employee deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// employeeID parses the {id} route parameter. Non-numeric ids never match a row.
func employeeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
