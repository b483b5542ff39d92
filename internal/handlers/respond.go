// Package handlers implements the HTTP handlers behind the JSON API.
// All responses share one envelope: {success, data?, error?, errors?,
// pagination?}.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination describes one page of a listing. Pages is ceil(Total/Limit).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Error      string       `json:"error,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

func respond(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondData writes a successful envelope around the given payload.
func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, Response{Success: true, Data: data})
}

// respondPage writes a successful envelope with pagination metadata.
func respondPage(w http.ResponseWriter, data any, p Pagination) {
	respond(w, http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

// respondError writes a failure envelope with a single domain error message.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, Response{Success: false, Error: message})
}

// respondFieldErrors writes a 400 envelope carrying field-level detail.
func respondFieldErrors(w http.ResponseWriter, errs []FieldError) {
	respond(w, http.StatusBadRequest, Response{Success: false, Errors: errs})
}

// respondServerError logs the unexpected error and collapses it to a
// generic 500 so internal details never leak to clients.
func respondServerError(w http.ResponseWriter, err error) {
	slog.Error("handler error", "error", err)
	respondError(w, http.StatusInternalServerError, "Server Error")
}
