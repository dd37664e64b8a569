package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tixwell/internal/models"
)

// errorResponse is the uniform JSON error body
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrAttendeeNotFound),
		errors.Is(err, models.ErrEventNotFound):
		status = http.StatusNotFound

	case errors.Is(err, models.ErrTicketNotValid),
		errors.Is(err, models.ErrTicketAlreadyScanned),
		errors.Is(err, models.ErrTransferNotAllowed),
		errors.Is(err, models.ErrStateConflict):
		status = http.StatusConflict

	case errors.Is(err, models.ErrValidationFailed):
		status = http.StatusBadRequest

	case errors.Is(err, models.ErrSignatureInvalid):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
